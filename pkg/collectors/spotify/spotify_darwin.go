//go:build darwin

package spotify

import "context"

func (c *Collector) collect(ctx context.Context) (interface{}, error) {
	now, err := c.fetchNowPlaying(ctx)
	if err != nil {
		return nil, err
	}
	return now, nil
}
