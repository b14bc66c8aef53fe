package refresher

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/transitdb/transitdb/pkg/transit"
)

const DefaultInterval = 15 * time.Minute

// Downloader refreshes one city's partition from its upstream sources.
type Downloader interface {
	City() transit.City
	RefreshIfNeeded(ctx context.Context) error
}

// Manager runs every city's refresh on a fixed schedule. Cities refresh
// concurrently and independently, one failing city never blocks the rest.
type Manager struct {
	Downloaders []Downloader
	Interval    time.Duration
}

func NewManager(downloaders []Downloader) *Manager {
	return &Manager{
		Downloaders: downloaders,
		Interval:    DefaultInterval,
	}
}

// Run refreshes once immediately and then on every interval tick until the
// context is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	m.RefreshAll(ctx)

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.RefreshAll(ctx)
		}
	}
}

func (m *Manager) RefreshAll(ctx context.Context) {
	refreshPool := pool.New().WithContext(ctx)

	for _, downloader := range m.Downloaders {
		refreshPool.Go(func(ctx context.Context) error {
			startTime := time.Now()

			if err := downloader.RefreshIfNeeded(ctx); err != nil {
				log.Error().
					Err(err).
					Str("city", string(downloader.City())).
					Msg("City refresh failed")
				return nil
			}

			log.Info().
				Str("city", string(downloader.City())).
				Str("duration", time.Since(startTime).String()).
				Msg("City refresh done")
			return nil
		})
	}

	refreshPool.Wait()
}
