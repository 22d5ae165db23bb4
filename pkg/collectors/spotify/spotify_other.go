//go:build !darwin

package spotify

import (
	"context"
	"errors"
)

func (c *Collector) collect(ctx context.Context) (interface{}, error) {
	return nil, errors.New("Spotify integration is only supported on macOS")
}
