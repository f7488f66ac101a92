package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is anything that can re-run its current load.
type Refresher interface {
	Refresh()
}

// StartRefresher launches a background goroutine that calls target.Refresh
// at a fixed cadence. It returns immediately; a non-positive interval
// disables periodic refresh.
func StartRefresher(ctx context.Context, target Refresher, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 || target == nil {
		return
	}
	log.Debug().Dur("interval", interval).Msg("periodic refresh enabled")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				target.Refresh()
			}
		}
	}()
}
