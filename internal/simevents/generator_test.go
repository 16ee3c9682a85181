package simevents_test

import (
	"reflect"
	"testing"

	"github.com/okian/trustlens/internal/domain/model"
	simevents "github.com/okian/trustlens/internal/simevents"
	. "github.com/smartystreets/goconvey/convey"
)

func generate(cfg *simevents.Config) ([]model.Event, simevents.Stats) {
	var stats simevents.Stats
	return simevents.Generate(cfg, &stats), stats
}

func TestGenerate(t *testing.T) {
	Convey("Given the default simulation config", t, func() {
		cfg := simevents.DefaultConfig()

		Convey("When generated twice with the same seed", func() {
			first, _ := generate(cfg)
			second, _ := generate(cfg)

			Convey("Then the streams are identical", func() {
				So(len(first), ShouldEqual, len(second))
				So(reflect.DeepEqual(first, second), ShouldBeTrue)
			})
		})

		Convey("When generated with a different seed", func() {
			other := *cfg
			other.Seed = cfg.Seed + 1
			first, _ := generate(cfg)
			second, _ := generate(&other)

			So(reflect.DeepEqual(first, second), ShouldBeFalse)
		})

		Convey("When failures are injected", func() {
			events, stats := generate(cfg)

			Convey("Then the drift day carries no canonical purchase events", func() {
				driftStart := cfg.Start.AddDate(0, 0, cfg.SchemaDriftDay)
				for _, e := range events {
					if !e.TS.Before(driftStart) {
						So(e.Type, ShouldNotEqual, model.Purchase)
					}
				}
			})

			Convey("Then duplicates keep their original ingestion ids", func() {
				So(stats.DuplicateEvents, ShouldBeGreaterThan, 0)

				seen := make(map[string]int)
				for _, e := range events {
					seen[e.IngestionID]++
				}
				dup := 0
				for _, n := range seen {
					if n > 1 {
						dup += n - 1
					}
				}
				So(dup, ShouldEqual, stats.DuplicateEvents)
			})

			Convey("Then some amounts were corrupted on the invalid day", func() {
				So(stats.InvalidAmounts, ShouldBeGreaterThan, 0)
			})

			Convey("Then outage days carry far fewer purchases than neighbours", func() {
				perDay := make(map[int]int)
				for _, e := range events {
					if e.Type.PurchaseLike() {
						perDay[int(e.TS.Sub(cfg.Start).Hours()/24)]++
					}
				}
				outage := cfg.OutageDays[0]
				So(perDay[outage], ShouldBeLessThan, perDay[outage-2])
			})
		})

		Convey("When every failure is disabled", func() {
			clean := *cfg
			clean.OutageDays = nil
			clean.SchemaDriftDay = -1
			clean.BotSpikeDay = -1
			clean.DuplicateDay = -1
			clean.InvalidDay = -1
			clean.TimezoneDay = -1

			events, stats := generate(&clean)

			Convey("Then the stream is healthy traffic only", func() {
				So(stats.DuplicateEvents, ShouldEqual, 0)
				So(stats.InvalidAmounts, ShouldEqual, 0)
				for _, e := range events {
					So(e.Type, ShouldNotEqual, model.InAppPurchase)
				}
			})
		})
	})
}
