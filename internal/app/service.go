// Package app wires the event store, quality extractor, KPI aggregator and
// trust scorer into the per-day pipeline.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/trustlens/internal/adapters/eventstore"
	"github.com/okian/trustlens/internal/domain/kpi"
	"github.com/okian/trustlens/internal/domain/model"
	"github.com/okian/trustlens/internal/domain/quality"
	"github.com/okian/trustlens/internal/domain/report"
	"github.com/okian/trustlens/internal/domain/scoring"
	"github.com/okian/trustlens/internal/domain/types"
	"github.com/okian/trustlens/pkg/logger"
	"github.com/okian/trustlens/pkg/metrics"
)

// Default pipeline configuration constants.
const (
	defaultWindowDays     = 7
	defaultAlertThreshold = 70
	dayStep               = 24 * time.Hour
)

// Service runs the scoring pipeline over every day in the store.
type Service struct {
	store     eventstore.Store
	extractor *quality.Extractor
	weights   scoring.Weights
	scorer    *scoring.Scorer

	windowDays     int
	alertThreshold float64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithExtractor sets a custom quality extractor.
func WithExtractor(x *quality.Extractor) Option {
	return func(s *Service) {
		if x != nil {
			s.extractor = x
		}
	}
}

// WithWeights sets the trust weights; they are validated at construction.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		if w != nil {
			s.weights = w
		}
	}
}

// WithWindowDays sets the trailing baseline window size.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithAlertThreshold sets the trust score below which a day is logged and
// counted as low-trust.
func WithAlertThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= 100 {
			s.alertThreshold = threshold
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Weight validation happens here, before any day
// is read: a bad weighting invalidates every day's score, so the run must
// never start with one.
func New(store eventstore.Store, opts ...Option) (*Service, error) {
	s := &Service{
		store:          store,
		windowDays:     defaultWindowDays,
		alertThreshold: defaultAlertThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = quality.NewExtractor()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}
	scorer, err := scoring.New(s.weights)
	if err != nil {
		return nil, err
	}
	s.scorer = scorer
	return s, nil
}

// Run scores every calendar day from the first to the last day present in
// the store, inclusive. Days with no data are scored, not skipped: an empty
// bucket is a severe completeness signal. The result is deterministic for
// an unchanged store.
func (s *Service) Run(ctx context.Context) (report.Table, error) {
	start := time.Now()

	days, err := s.store.Days(ctx)
	if err != nil {
		return report.Table{}, fmt.Errorf("list days: %w", err)
	}
	if len(days) == 0 {
		s.logger.Warn(ctx, "event store holds no days; nothing to score")
		return report.New(nil), nil
	}
	first, last := days[0], days[len(days)-1]
	s.logger.Info(ctx, "scoring window",
		logger.String("first", first.Format(time.DateOnly)),
		logger.String("last", last.Format(time.DateOnly)),
		logger.Int("windowDays", s.windowDays),
	)

	base := quality.NewBaseline(s.windowDays)
	var rows []types.DayReport

	bucket, err := s.store.Bucket(ctx, first)
	if err != nil {
		return report.Table{}, fmt.Errorf("read bucket %s: %w", first.Format(time.DateOnly), err)
	}
	for d := first; !d.After(last); d = d.Add(dayStep) {
		// Prefetch the next day once; it doubles as the retention input
		// and the next iteration's current bucket.
		var next *model.DayBucket
		if d.Before(last) {
			nb, err := s.store.Bucket(ctx, d.Add(dayStep))
			if err != nil {
				return report.Table{}, fmt.Errorf("read bucket %s: %w", d.Add(dayStep).Format(time.DateOnly), err)
			}
			next = &nb
		}

		row, stats, err := s.scoreDay(ctx, bucket, next, base)
		if err != nil {
			return report.Table{}, err
		}
		rows = append(rows, row)

		if err := base.Observe(stats); err != nil {
			return report.Table{}, fmt.Errorf("advance baseline: %w", err)
		}
		if next != nil {
			bucket = *next
		}
	}

	metrics.RecordRunDuration(time.Since(start).Seconds())
	s.logger.Info(ctx, "run complete",
		logger.Int("days", len(rows)),
		logger.Any("elapsed", time.Since(start)),
	)
	return report.New(rows), nil
}

// scoreDay computes one report row. Problems local to the day degrade its
// signals; only a broken scorer contract aborts.
func (s *Service) scoreDay(ctx context.Context, bucket model.DayBucket, next *model.DayBucket, base *quality.Baseline) (types.DayReport, quality.DayStats, error) {
	amountCap := s.extractor.AmountCap(base)
	signals := s.extractor.Extract(bucket, base)
	k := kpi.Aggregate(bucket, next, amountCap)

	trust, reasons, err := s.scorer.Score(signals)
	if err != nil {
		return types.DayReport{}, quality.DayStats{}, fmt.Errorf("score %s: %w", bucket.Date.Format(time.DateOnly), err)
	}

	metrics.RecordEventsRead(len(bucket.Events))
	metrics.RecordMalformed(bucket.Malformed)
	metrics.RecordDayScored(trust)
	for _, reason := range reasons {
		metrics.RecordSignalTriggered(string(reason))
	}
	if trust < s.alertThreshold {
		metrics.RecordLowTrustDay()
		s.logger.Warn(ctx, "low trust day",
			logger.String("date", bucket.Date.Format(time.DateOnly)),
			logger.Float64("trust", trust),
			logger.Any("reasons", reasons),
		)
	}

	row := types.DayReport{
		Date:    bucket.Date,
		Trust:   trust,
		Reasons: reasons,
		KPI:     k,
		Signals: signals,
	}
	return row, quality.Stats(bucket, amountCap), nil
}
