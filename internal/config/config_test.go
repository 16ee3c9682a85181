package config_test

import (
	"context"
	"testing"

	config "github.com/okian/trustlens/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then it validates cleanly", func() {
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("When trust weights stop summing to 1", func() {
			cfg.TrustWeights["completeness"] = 0.9

			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("When a weight references an unknown signal", func() {
			delete(cfg.TrustWeights, "validity")
			cfg.TrustWeights["freshness"] = 0.15

			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("When the completeness threshold leaves (0,1]", func() {
			cfg.CompletenessThreshold = 1.5

			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("When the duplicate key names an unknown field", func() {
			cfg.DuplicateKey = []string{"user_id", "shoe_size"}

			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("When the duplicate key is empty", func() {
			cfg.DuplicateKey = nil

			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("When the window is not positive", func() {
			cfg.WindowDays = 0

			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("TRUSTLENS_WINDOW_DAYS", "14")
		t.Setenv("TRUSTLENS_DB_PATH", "/tmp/events.db")

		Convey("When the config is loaded", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then env wins over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.WindowDays, ShouldEqual, 14)
				So(cfg.DBPath, ShouldEqual, "/tmp/events.db")
				So(cfg.TrustAlertThreshold, ShouldEqual, 70)
			})
		})
	})

	Convey("Given an invalid environment override", t, func() {
		t.Setenv("TRUSTLENS_WINDOW_DAYS", "-3")

		Convey("When the config is loaded", func() {
			_, err := config.Load(context.Background())

			Convey("Then the run refuses to start", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
