package scoring_test

import (
	"testing"

	scoring "github.com/okian/trustlens/internal/domain/scoring"
	"github.com/okian/trustlens/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func allSignalsAt(score float64) map[types.Signal]types.SignalResult {
	signals := make(map[types.Signal]types.SignalResult)
	for _, s := range types.AllSignals() {
		signals[s] = types.SignalResult{Score: score}
	}
	return signals
}

func TestScorer_Score(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		scorer, err := scoring.New(nil)
		So(err, ShouldBeNil)

		Convey("When every signal is perfect", func() {
			trust, reasons, err := scorer.Score(allSignalsAt(1))

			Convey("Then trust is exactly 100 with no reasons", func() {
				So(err, ShouldBeNil)
				So(trust, ShouldEqual, 100)
				So(reasons, ShouldBeEmpty)
			})
		})

		Convey("When every signal is zero", func() {
			trust, _, err := scorer.Score(allSignalsAt(0))

			Convey("Then trust is exactly 0", func() {
				So(err, ShouldBeNil)
				So(trust, ShouldEqual, 0)
			})
		})

		Convey("When sweeping one signal across [0,1]", func() {
			Convey("Then trust never decreases as the signal improves", func() {
				for _, signal := range types.AllSignals() {
					prev := -1.0
					for step := 0; step <= 20; step++ {
						signals := allSignalsAt(0.5)
						signals[signal] = types.SignalResult{Score: float64(step) / 20}
						trust, _, err := scorer.Score(signals)
						So(err, ShouldBeNil)
						So(trust, ShouldBeGreaterThanOrEqualTo, prev)
						So(trust, ShouldBeBetweenOrEqual, 0, 100)
						prev = trust
					}
				}
			})
		})

		Convey("When an outage, duplicates and invalid amounts hit one day", func() {
			signals := allSignalsAt(1)
			signals[types.SignalCompleteness] = types.SignalResult{Score: 0.05, Triggered: true, Reason: types.ReasonPurchaseOutage}
			signals[types.SignalUniqueness] = types.SignalResult{Score: 0.2, Triggered: true, Reason: types.ReasonDuplicates}
			signals[types.SignalValidity] = types.SignalResult{Score: 0.4, Triggered: true, Reason: types.ReasonInvalidAmounts}

			trust, reasons, err := scorer.Score(signals)

			Convey("Then trust lands at 46.5 with reasons worst-first", func() {
				So(err, ShouldBeNil)
				So(trust, ShouldAlmostEqual, 46.5, 1e-9)
				So(reasons, ShouldResemble, []types.Reason{
					types.ReasonPurchaseOutage,
					types.ReasonDuplicates,
					types.ReasonInvalidAmounts,
				})
			})
		})

		Convey("When only duplicates and invalid amounts trigger", func() {
			signals := allSignalsAt(1)
			signals[types.SignalUniqueness] = types.SignalResult{Score: 0.2, Triggered: true, Reason: types.ReasonDuplicates}
			signals[types.SignalValidity] = types.SignalResult{Score: 0.26, Triggered: true, Reason: types.ReasonInvalidAmounts}

			trust, reasons, err := scorer.Score(signals)

			Convey("Then trust lands at 72.9", func() {
				So(err, ShouldBeNil)
				So(trust, ShouldAlmostEqual, 72.9, 1e-9)
				So(reasons, ShouldResemble, []types.Reason{
					types.ReasonDuplicates,
					types.ReasonInvalidAmounts,
				})
			})
		})

		Convey("When two triggered signals tie on score", func() {
			signals := allSignalsAt(1)
			signals[types.SignalVolumeAnomaly] = types.SignalResult{Score: 0.5, Triggered: true, Reason: types.ReasonTrafficSpike}
			signals[types.SignalSchemaConsistency] = types.SignalResult{Score: 0.5, Triggered: true, Reason: types.ReasonSchemaDrift}

			_, reasons, err := scorer.Score(signals)

			Convey("Then the fixed signal order breaks the tie", func() {
				So(err, ShouldBeNil)
				So(reasons, ShouldResemble, []types.Reason{
					types.ReasonSchemaDrift,
					types.ReasonTrafficSpike,
				})
			})
		})

		Convey("When a signal is missing from the mapping", func() {
			signals := allSignalsAt(1)
			delete(signals, types.SignalValidity)

			_, _, err := scorer.Score(signals)

			Convey("Then it fails fast instead of defaulting", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "validity")
			})
		})
	})
}

func TestWeights_Validate(t *testing.T) {
	Convey("Given weight maps", t, func() {
		Convey("When the defaults are validated", func() {
			So(scoring.DefaultWeights().Validate(), ShouldBeNil)
		})

		Convey("When a signal is missing", func() {
			w := scoring.DefaultWeights()
			delete(w, types.SignalUniqueness)

			So(w.Validate(), ShouldNotBeNil)
		})

		Convey("When the weights do not sum to 1", func() {
			w := scoring.DefaultWeights()
			w[types.SignalCompleteness] = 0.5

			So(w.Validate(), ShouldNotBeNil)
		})

		Convey("When an unknown signal carries weight", func() {
			w := scoring.DefaultWeights()
			w[types.Signal("freshness")] = 0

			So(w.Validate(), ShouldNotBeNil)
		})

		Convey("When a weight is negative", func() {
			w := scoring.DefaultWeights()
			w[types.SignalCompleteness] = -0.1
			w[types.SignalValidity] = 0.55

			So(w.Validate(), ShouldNotBeNil)
		})

		Convey("When constructing a scorer from bad weights", func() {
			_, err := scoring.New(scoring.Weights{types.SignalCompleteness: 1})

			Convey("Then construction fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
