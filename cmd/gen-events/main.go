package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/trustlens/internal/adapters/eventstore"
	"github.com/okian/trustlens/internal/simevents"
	"github.com/okian/trustlens/pkg/logger"
)

// Default generation constants.
const (
	defaultSeed    = 7
	defaultDays    = 35
	defaultUsers   = 3000
	defaultTimeout = 5 * time.Minute
)

func main() {
	var (
		dbPath = flag.String("db", "trustlens.db", "SQLite event store to write into")
		seed   = flag.Int64("seed", defaultSeed, "PRNG seed; same seed, same events")
		start  = flag.String("start", "2025-11-01", "First simulated day (YYYY-MM-DD, UTC)")
		days   = flag.Int("days", defaultDays, "Number of simulated days")
		users  = flag.Int("users", defaultUsers, "Number of simulated users")
		clean  = flag.Bool("clean", false, "Generate a clean stream without injected failures")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	startDay, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		log.Error(ctx, "invalid -start date", logger.Error(err))
		os.Exit(1)
	}

	cfg := simevents.DefaultConfig()
	cfg.Seed = *seed
	cfg.Start = startDay
	cfg.Days = *days
	cfg.Users = *users
	if *clean {
		cfg.OutageDays = nil
		cfg.SchemaDriftDay = -1
		cfg.BotSpikeDay = -1
		cfg.DuplicateDay = -1
		cfg.InvalidDay = -1
		cfg.TimezoneDay = -1
	}

	store, err := eventstore.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Error(ctx, "failed to open event store", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if _, err := simevents.Run(ctx, cfg, store); err != nil {
		log.Error(ctx, "generation failed", logger.Error(err))
		os.Exit(1)
	}
}
