package services

import (
	"context"
	"time"

	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/metrics"
)

// StorySweeper periodically deletes expired stories until its context is cancelled.
type StorySweeper struct {
	stories  *StoryService
	interval time.Duration
}

func NewStorySweeper(stories *StoryService, interval time.Duration) *StorySweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StorySweeper{stories: stories, interval: interval}
}

// Run blocks, sweeping once immediately and then on every tick
func (w *StorySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *StorySweeper) sweep(ctx context.Context) {
	n, err := w.stories.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("story sweep failed")
		}
		return
	}
	if n > 0 {
		metrics.StoriesSwept.Add(float64(n))
		logging.Info().Int64("deleted", n).Msg("swept expired stories")
	}
}
