package simevents

import "time"

// Config holds configuration for the synthetic event generator. Day indices
// are offsets from Start; a negative index disables that failure mode.
type Config struct {
	Seed  int64     // PRNG seed; identical seeds yield identical events
	Start time.Time // first simulated day, UTC midnight
	Days  int       // length of the simulated window
	Users int       // size of the simulated user base

	OutageDays     []int // days losing ~85% of purchase-like events
	SchemaDriftDay int   // from here on, purchase is renamed in_app_purchase
	BotSpikeDay    int   // burst of session_start events
	DuplicateDay   int   // a sample of the day's events is re-ingested
	InvalidDay     int   // some purchase amounts become negative/zero/huge
	TimezoneDay    int   // events shifted +1h, bleeding into the next day
}

// DefaultConfig mirrors the canonical 35-day scenario.
func DefaultConfig() *Config {
	return &Config{
		Seed:           7,
		Start:          time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		Days:           35,
		Users:          3000,
		OutageDays:     []int{14, 15},
		SchemaDriftDay: 18,
		BotSpikeDay:    22,
		DuplicateDay:   9,
		InvalidDay:     25,
		TimezoneDay:    27,
	}
}

// Stats summarizes one generation run.
type Stats struct {
	EventsGenerated int
	PurchaseEvents  int
	DuplicateEvents int
	InvalidAmounts  int
	StartTime       time.Time
	Duration        time.Duration
}
