// desk-pulse is a terminal dashboard for the machine you are sitting at.
//
// It polls local system metrics (CPU, memory, disk, containers) and developer
// services (Jira, Sentry, HTTP health endpoints, Spotify), reconciles every
// fetch outcome into a per-widget presentation state, and renders the result
// as a full-screen Bubbletea TUI or a one-shot plain-text snapshot.
//
// Usage:
//
//	desk-pulse [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: XDG search path)
//	-once             Collect one round, print a plain snapshot, and exit
//	-log-file string  Write logs to this file (overrides config)
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/desk-pulse/pkg/app"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/cpu"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/disk"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/docker"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/jira"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/ram"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/sentry"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/services"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/collectors/spotify"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/components"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/config"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/openurl"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/pulse"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/terminal"
	"gitlab.com/tinyland/lab/desk-pulse/pkg/widgets"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// onceTimeout bounds how long one-shot mode waits for slow backends before
// printing whatever state each widget reached.
const onceTimeout = 15 * time.Second

// snapshotRows is the per-widget body height in one-shot output.
const snapshotRows = 8

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		oncePass    = flag.Bool("once", false, "Collect one round, print a plain snapshot, and exit")
		logFile     = flag.String("log-file", "", "Write logs to this file (overrides config)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("desk-pulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logFile != "" {
		cfg.General.LogFile = *logFile
	}

	logger, closeLog, err := buildLogger(cfg, *verbose, *oncePass)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	store := pulse.NewStore()
	registry := collectors.NewRegistry()
	reconciler := pulse.NewReconciler(store, logger)
	hub := pulse.NewHub(store, registry, reconciler, logger)
	defer hub.Shutdown()

	var enabled []string
	for _, id := range cfg.Widgets.Enabled {
		c := buildCollector(id, cfg)
		if c == nil {
			logger.Warn("unknown widget in config", "widget", id)
			continue
		}
		if err := hub.Register(c, pulse.WithInterval(cfg.Interval(id, c.Interval()))); err != nil {
			logger.Error("failed to register widget", "widget", id, "error", err)
			os.Exit(1)
		}
		enabled = append(enabled, id)
	}
	if len(enabled) == 0 {
		fmt.Fprintln(os.Stderr, "no widgets enabled in config")
		os.Exit(1)
	}

	if *oncePass {
		if err := collectOnce(ctx, hub, enabled, logger); err != nil {
			logger.Error("snapshot failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(ctx, hub, enabled, logger); err != nil {
		logger.Error("TUI error", "error", err)
		os.Exit(1)
	}
}

// runTUI subscribes every enabled widget and hands the terminal to bubbletea
// until the user quits or the root context is cancelled.
func runTUI(ctx context.Context, hub *pulse.Hub, enabled []string, logger *slog.Logger) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("stdout is not a terminal (use -once for plain output)")
	}
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	sources := make([]app.StateSource, 0, len(enabled))
	views := make([]app.Widget, 0, len(enabled))
	for _, id := range enabled {
		sub, err := hub.Subscribe(id)
		if err != nil {
			return err
		}
		defer sub.Cancel()
		sources = append(sources, sub)
		views = append(views, buildWidget(id))
	}

	appCfg := app.DefaultConfig()
	appCfg.OpenURL = func(url string) { openurl.Open(logger, url) }
	model := app.New(appCfg, sources, views...)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// collectOnce waits for one reconciliation round per widget, bounded by
// onceTimeout, and prints a plain snapshot at the current terminal width.
func collectOnce(ctx context.Context, hub *pulse.Hub, enabled []string, logger *slog.Logger) error {
	// Widgets mark click zones at render time; disable the manager so the
	// marks pass content through untouched.
	zone.NewGlobal()
	zone.SetEnabled(false)

	ctx, cancel := context.WithTimeout(ctx, onceTimeout)
	defer cancel()

	subs := make([]*pulse.Subscription, 0, len(enabled))
	for _, id := range enabled {
		sub, err := hub.Subscribe(id)
		if err != nil {
			return err
		}
		defer sub.Cancel()
		subs = append(subs, sub)
	}

	width := terminal.GetSize().Cols
	var out strings.Builder
	for _, sub := range subs {
		st := waitSettled(ctx, sub)
		w := buildWidget(sub.WidgetID())
		w.Update(app.StateUpdateEvent{WidgetID: w.ID(), State: st})

		body := components.StripANSI(w.View(width-2, snapshotRows))
		out.WriteString(w.Title() + "\n")
		for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			out.WriteString("  " + line + "\n")
		}
		out.WriteString("\n")
	}

	if t, ok := hub.Store().LatestCheckTime(enabled...); ok {
		fmt.Fprintf(&out, "checked %s\n", t.Format("15:04:05"))
	}
	for id, healthy := range hub.Health() {
		if !healthy {
			logger.Debug("collector unhealthy", "widget", id)
		}
	}

	fmt.Print(out.String())
	return nil
}

// waitSettled blocks until the widget leaves the loading phase, its stream
// closes, or ctx expires, and returns the last state seen.
func waitSettled(ctx context.Context, sub *pulse.Subscription) pulse.WidgetState {
	st := sub.Current()
	for st.Phase == pulse.PhaseLoading {
		select {
		case next, ok := <-sub.Updates():
			if !ok {
				return st
			}
			st = next
		case <-ctx.Done():
			return st
		}
	}
	return st
}

// loadConfig resolves the configuration: an explicit path wins, otherwise
// the XDG search order applies.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// buildLogger routes logs by mode. One-shot mode logs to stderr; TUI mode
// logs to the configured file, or discards when none is set, so log lines
// never tear the alternate screen.
func buildLogger(cfg *config.Config, verbose, once bool) (*slog.Logger, func(), error) {
	level := parseLogLevel(cfg.General.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if once {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}
	if cfg.General.LogFile == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { f.Close() }, nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildCollector constructs the collector for a widget id with its settings
// applied, or nil for an id the dashboard does not know. External seams
// (process runners, HTTP clients) use their production defaults.
func buildCollector(id string, cfg *config.Config) collectors.Collector {
	switch id {
	case "cpu":
		return cpu.New(cpu.Config{
			SampleWindow: cfg.CPU.SampleWindow.Duration,
			TopN:         cfg.CPU.TopProcesses,
		})
	case "ram":
		return ram.New(ram.Config{TopN: cfg.RAM.TopProcesses})
	case "disk":
		return disk.New(disk.Config{MonitoredMounts: cfg.Disk.Mounts})
	case "docker":
		return docker.New(docker.Config{}, nil)
	case "spotify":
		return spotify.New(spotify.Config{}, nil)
	case "services":
		targets := make([]services.Target, 0, len(cfg.Services.Targets))
		for _, t := range cfg.Services.Targets {
			targets = append(targets, services.Target{Name: t.Name, URL: t.URL})
		}
		return services.New(services.Config{Targets: targets}, nil)
	case "jira":
		return jira.New(jira.Config{
			BaseURL:    cfg.Jira.BaseURL,
			Email:      cfg.Jira.Email,
			APIToken:   cfg.Jira.APIToken,
			JQL:        cfg.Jira.JQL,
			MaxResults: cfg.Jira.MaxResults,
		}, nil)
	case "sentry":
		return sentry.New(sentry.Config{
			Organization: cfg.Sentry.Organization,
			ProjectID:    cfg.Sentry.ProjectID,
			AuthToken:    cfg.Sentry.AuthToken,
			Limit:        cfg.Sentry.Limit,
		}, nil)
	default:
		return nil
	}
}

// buildWidget maps a widget id to its view implementation.
func buildWidget(id string) app.Widget {
	switch id {
	case "cpu":
		return widgets.NewCPUWidget()
	case "ram":
		return widgets.NewRAMWidget()
	case "disk":
		return widgets.NewDiskWidget()
	case "docker":
		return widgets.NewDockerWidget()
	case "spotify":
		return widgets.NewSpotifyWidget()
	case "services":
		return widgets.NewServicesWidget()
	case "jira":
		return widgets.NewJiraWidget()
	case "sentry":
		return widgets.NewSentryWidget()
	default:
		return app.NewPlaceholder(id, id)
	}
}
