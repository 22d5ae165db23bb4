// Package openurl hands links to the operating system's URL handler. The
// dashboard treats a browser that fails to launch as a shrug, not an error,
// so Open logs failures and swallows them.
package openurl

import (
	"log/slog"
	"os/exec"
	"runtime"
)

// openCommand returns the launcher invocation for a URL on the given OS.
func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Open launches url with the platform handler and waits for the launcher to
// return. Empty URLs are ignored.
func Open(logger *slog.Logger, url string) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if url == "" {
		return
	}

	name, args := openCommand(runtime.GOOS, url)
	if err := exec.Command(name, args...).Run(); err != nil {
		logger.Warn("failed to open url", "url", url, "error", err)
	}
}
