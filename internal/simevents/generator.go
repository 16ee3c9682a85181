package simevents

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/trustlens/internal/domain/model"
)

// Simulation shape constants, tuned to look like a mid-size mobile title.
const (
	minLifeDays        = 3
	maxLifeDays        = 28
	minuteRange        = 1440
	baseSessionRate    = 1.0
	activitySessions   = 6.0
	basePurchaseProb   = 0.015
	propensityWeight   = 0.08
	activityWeight     = 0.02
	amountLogMean      = 1.2
	amountLogSigma     = 0.7
	levelCompleteMax   = 3
	levelCompleteBase  = 0.25
	levelCompleteSlope = 0.35
)

// Failure injection constants.
const (
	outageDropRate   = 0.85
	botUserShare     = 0.18
	botMinSessions   = 10
	botMaxSessions   = 40
	duplicateShare   = 0.08
	invalidShare     = 0.30
	invalidHugeScale = 10_000
)

type user struct {
	id         string
	joinDay    int
	lifeDays   int
	activity   float64 // session propensity in (0,1)
	propensity float64 // purchase propensity, small
}

// Generate produces the full synthetic event stream, failures included.
// Deterministic for a fixed config: the PRNG is seeded and uuids are drawn
// from it rather than from crypto/rand.
func Generate(cfg *Config, stats *Stats) []model.Event {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seed is the point

	users := makeUsers(cfg, rng)
	events := baseTraffic(cfg, rng, users, stats)
	events = injectFailures(cfg, rng, events, stats)
	stats.EventsGenerated = len(events)
	return events
}

func makeUsers(cfg *Config, rng *rand.Rand) []user {
	users := make([]user, cfg.Users)
	for i := range users {
		// Squaring biases joins toward the start of the window, like a
		// launch-heavy acquisition curve.
		join := int(math.Floor(rng.Float64() * rng.Float64() * float64(cfg.Days)))
		users[i] = user{
			id:         newID(rng),
			joinDay:    join,
			lifeDays:   minLifeDays + rng.Intn(maxLifeDays-minLifeDays),
			activity:   rng.Float64() * rng.Float64(), // skewed low
			propensity: rng.Float64() * rng.Float64() * rng.Float64(),
		}
	}
	return users
}

func baseTraffic(cfg *Config, rng *rand.Rand, users []user, stats *Stats) []model.Event {
	var events []model.Event
	for _, u := range users {
		lastDay := u.joinDay + u.lifeDays
		if lastDay > cfg.Days {
			lastDay = cfg.Days
		}
		for d := u.joinDay; d < lastDay; d++ {
			dayStart := cfg.Start.AddDate(0, 0, d)
			sessions := poisson(rng, baseSessionRate+activitySessions*u.activity)
			for s := 0; s < sessions; s++ {
				ts := dayStart.Add(time.Duration(rng.Intn(minuteRange)) * time.Minute)
				events = append(events, model.Event{
					UserID: u.id, TS: ts, Type: model.SessionStart, IngestionID: newID(rng),
				})
				completes := binomial(rng, levelCompleteMax, levelCompleteBase+levelCompleteSlope*u.activity)
				for c := 0; c < completes; c++ {
					ts2 := ts.Add(time.Duration(1+rng.Intn(24)) * time.Minute)
					events = append(events, model.Event{
						UserID: u.id, TS: ts2, Type: model.LevelComplete, IngestionID: newID(rng),
					})
				}
			}
			if rng.Float64() < basePurchaseProb+propensityWeight*u.propensity+activityWeight*u.activity {
				amount := math.Round(math.Exp(amountLogMean+amountLogSigma*rng.NormFloat64())*100) / 100
				ts := dayStart.Add(time.Duration(rng.Intn(minuteRange)) * time.Minute)
				events = append(events, model.Event{
					UserID: u.id, TS: ts, Type: model.Purchase,
					Amount: amount, HasAmount: true, IngestionID: newID(rng),
				})
				stats.PurchaseEvents++
			}
		}
	}
	return events
}

// injectFailures layers the known failure modes over healthy traffic, in
// the same order the real incidents compounded.
func injectFailures(cfg *Config, rng *rand.Rand, events []model.Event, stats *Stats) []model.Event {
	// 1) Purchase outage: drop most purchase-like events on outage days.
	for _, d := range cfg.OutageDays {
		if d < 0 {
			continue
		}
		dayStart, dayEnd := cfg.dayBounds(d)
		kept := events[:0]
		for _, e := range events {
			drop := e.Type.PurchaseLike() &&
				!e.TS.Before(dayStart) && e.TS.Before(dayEnd) &&
				rng.Float64() < outageDropRate
			if !drop {
				kept = append(kept, e)
			}
		}
		events = kept
	}

	// 2) Schema drift: purchase renamed in_app_purchase from the drift day on.
	if cfg.SchemaDriftDay >= 0 {
		driftStart, _ := cfg.dayBounds(cfg.SchemaDriftDay)
		for i := range events {
			if events[i].Type == model.Purchase && !events[i].TS.Before(driftStart) {
				events[i].Type = model.InAppPurchase
			}
		}
	}

	// 3) Bot spike: a burst of session_start events from a slice of users.
	if cfg.BotSpikeDay >= 0 {
		spikeStart, _ := cfg.dayBounds(cfg.BotSpikeDay)
		botCount := int(float64(cfg.Users) * botUserShare)
		for b := 0; b < botCount; b++ {
			uid := newID(rng)
			sessions := botMinSessions + rng.Intn(botMaxSessions-botMinSessions)
			for s := 0; s < sessions; s++ {
				ts := spikeStart.Add(time.Duration(rng.Intn(minuteRange)) * time.Minute)
				events = append(events, model.Event{
					UserID: uid, TS: ts, Type: model.SessionStart, IngestionID: newID(rng),
				})
			}
		}
	}

	// 4) Invalid amounts: flip some purchase amounts negative, zero or huge.
	if cfg.InvalidDay >= 0 {
		dayStart, dayEnd := cfg.dayBounds(cfg.InvalidDay)
		for i := range events {
			e := &events[i]
			if !e.Type.PurchaseLike() || e.TS.Before(dayStart) || !e.TS.Before(dayEnd) {
				continue
			}
			if rng.Float64() >= invalidShare {
				continue
			}
			switch rng.Intn(3) {
			case 0:
				e.Amount = -e.Amount
			case 1:
				e.Amount = 0
			default:
				e.Amount *= invalidHugeScale
			}
			stats.InvalidAmounts++
		}
	}

	// 5) Timezone shift: one day's events land an hour late, some bleeding
	// into the next UTC day.
	if cfg.TimezoneDay >= 0 {
		dayStart, dayEnd := cfg.dayBounds(cfg.TimezoneDay)
		for i := range events {
			if !events[i].TS.Before(dayStart) && events[i].TS.Before(dayEnd) {
				events[i].TS = events[i].TS.Add(time.Hour)
			}
		}
	}

	// 6) Duplicates: re-ingest a sample of one day's events with their
	// original ingestion ids intact.
	if cfg.DuplicateDay >= 0 {
		dayStart, dayEnd := cfg.dayBounds(cfg.DuplicateDay)
		for _, e := range events {
			if !e.TS.Before(dayStart) && e.TS.Before(dayEnd) && rng.Float64() < duplicateShare {
				events = append(events, e)
				stats.DuplicateEvents++
			}
		}
	}

	return events
}

func (c *Config) dayBounds(d int) (start, end time.Time) {
	start = c.Start.AddDate(0, 0, d)
	return start, start.AddDate(0, 0, 1)
}

// newID draws a uuid from the seeded PRNG so runs stay reproducible.
func newID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// rand.Rand.Read never fails; keep the signature honest anyway.
		return uuid.New().String()
	}
	return id.String()
}

// poisson samples via Knuth's method; fine for the small lambdas used here.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func binomial(rng *rand.Rand, n int, p float64) int {
	hits := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			hits++
		}
	}
	return hits
}
