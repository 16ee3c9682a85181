package simevents

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/trustlens/internal/adapters/eventstore"
	"github.com/okian/trustlens/pkg/logger"
)

// appendBatchSize bounds one store write.
const appendBatchSize = 5000

// Run generates the synthetic stream and writes it through the store.
func Run(ctx context.Context, cfg *Config, store eventstore.Store) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simevents")

	log.Info(ctx, "generating synthetic events",
		logger.Int("days", cfg.Days),
		logger.Int("users", cfg.Users),
		logger.Any("seed", cfg.Seed),
	)

	events := Generate(cfg, stats)

	for start := 0; start < len(events); start += appendBatchSize {
		end := start + appendBatchSize
		if end > len(events) {
			end = len(events)
		}
		if err := store.Append(ctx, events[start:end]); err != nil {
			return stats, fmt.Errorf("append events: %w", err)
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "generation complete",
		logger.Int("events", stats.EventsGenerated),
		logger.Int("purchases", stats.PurchaseEvents),
		logger.Int("duplicates", stats.DuplicateEvents),
		logger.Int("invalidAmounts", stats.InvalidAmounts),
		logger.Any("elapsed", stats.Duration),
	)
	return stats, nil
}
