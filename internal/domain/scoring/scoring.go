// Package scoring combines the per-day quality signals into one weighted
// trust score and the ordered list of triggered reasons.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/trustlens/internal/domain/types"
)

// Scale of the final trust score.
const maxTrust = 100

// weightSumTolerance absorbs float accumulation when checking that weights
// sum to one.
const weightSumTolerance = 1e-9

// Weights maps each signal to its share of the trust score. A valid map
// covers every signal exactly once and sums to 1.
type Weights map[types.Signal]float64

// DefaultWeights assigns the configured priorities: completeness highest
// (it most directly corrupts core KPIs), schema and uniqueness moderate,
// volume and validity the remainder.
func DefaultWeights() Weights {
	return Weights{
		types.SignalCompleteness:      0.30,
		types.SignalSchemaConsistency: 0.20,
		types.SignalUniqueness:        0.20,
		types.SignalVolumeAnomaly:     0.15,
		types.SignalValidity:          0.15,
	}
}

// Validate checks the weight map covers the closed signal set and sums to 1.
// A wrong weight-to-signal mapping could mask real risk, so violations are
// fatal at load time, never silently defaulted.
func (w Weights) Validate() error {
	sum := 0.0
	for _, signal := range types.AllSignals() {
		weight, ok := w[signal]
		if !ok {
			return fmt.Errorf("%w: no weight for signal %q", ErrBadWeights, signal)
		}
		if weight < 0 {
			return fmt.Errorf("%w: negative weight %v for signal %q", ErrBadWeights, weight, signal)
		}
		sum += weight
	}
	if len(w) != len(types.AllSignals()) {
		for signal := range w {
			if signal.Priority() >= len(types.AllSignals()) {
				return fmt.Errorf("%w: unknown signal %q", ErrBadWeights, signal)
			}
		}
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrBadWeights, sum)
	}
	return nil
}

// Scorer computes trust scores from validated weights. It is stateless per
// invocation; construction is the only place weights are checked.
type Scorer struct {
	weights Weights
}

// New builds a Scorer, failing fast on an invalid weight map.
func New(w Weights) (*Scorer, error) {
	if w == nil {
		w = DefaultWeights()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	copied := make(Weights, len(w))
	for signal, weight := range w {
		copied[signal] = weight
	}
	return &Scorer{weights: copied}, nil
}

// Score returns the weighted trust score in [0,100] and the triggered
// reasons ordered worst offender first. A signal missing from the mapping is
// a programming error and returns ErrMissingSignal rather than a neutral
// default.
func (s *Scorer) Score(signals map[types.Signal]types.SignalResult) (float64, []types.Reason, error) {
	trust := 0.0
	triggered := make([]types.Signal, 0, len(s.weights))
	for _, signal := range types.AllSignals() {
		result, ok := signals[signal]
		if !ok {
			return 0, nil, fmt.Errorf("%w: %q", ErrMissingSignal, signal)
		}
		trust += s.weights[signal] * result.Score
		if result.Triggered {
			triggered = append(triggered, signal)
		}
	}

	// Ascending score so the worst offender leads; ties fall back to the
	// fixed signal order to keep output deterministic.
	sort.SliceStable(triggered, func(i, j int) bool {
		si, sj := signals[triggered[i]].Score, signals[triggered[j]].Score
		if si != sj {
			return si < sj
		}
		return triggered[i].Priority() < triggered[j].Priority()
	})
	reasons := make([]types.Reason, len(triggered))
	for i, signal := range triggered {
		reasons[i] = signals[signal].Reason
	}

	return trust * maxTrust, reasons, nil
}
