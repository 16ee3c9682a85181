// Package config defines pipeline configuration and loading hooks.
//
// Conventions:
// - Provide New() with defaults, Load(ctx) layering file and env on top.
// - Validation happens once, at load time. A configuration that could
//   produce a silently-wrong trust score refuses to start the run.
package config

import (
	"fmt"

	"github.com/okian/trustlens/internal/domain/quality"
	"github.com/okian/trustlens/internal/domain/scoring"
	"github.com/okian/trustlens/internal/domain/types"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the SQLite event store file.
	DBPath string `koanf:"db_path"`

	// EventsCSV optionally imports a CSV of raw events before the run.
	EventsCSV string `koanf:"events_csv"`

	// WindowDays sizes the trailing baseline window.
	WindowDays int `koanf:"window_days"`

	// ReportDays is N for the lowest/highest-trust report views.
	ReportDays int `koanf:"report_days"`

	// Quality check thresholds.
	CompletenessThreshold float64 `koanf:"completeness_threshold"`
	VolumeMultiplier      float64 `koanf:"volume_anomaly_multiplier"`
	OutlierMultiplier     float64 `koanf:"validity_outlier_multiplier"`
	DriftThreshold        float64 `koanf:"schema_drift_deviation_threshold"`

	// DuplicateKey lists the event fields that constitute a duplicate.
	DuplicateKey []string `koanf:"duplicate_key"`

	// TrustWeights maps signal name to weight; must sum to 1.
	TrustWeights map[string]float64 `koanf:"trust_weights"`

	// TrustAlertThreshold marks days whose score warrants investigation
	// before acting on KPI movement.
	TrustAlertThreshold float64 `koanf:"trust_alert_threshold"`

	// MetricsAddr optionally serves Prometheus metrics during the run.
	MetricsAddr string `koanf:"metrics_addr"`

	// Render targets; empty disables the corresponding output.
	OutCSV  string `koanf:"out_csv"`
	OutMemo string `koanf:"out_memo"`
}

// New creates a Config with defaults.
func New() *Config {
	weights := scoring.DefaultWeights()
	trustWeights := make(map[string]float64, len(weights))
	for signal, weight := range weights {
		trustWeights[string(signal)] = weight
	}
	dupKey := quality.DefaultDuplicateKey()
	dup := make([]string, len(dupKey))
	for i, f := range dupKey {
		dup[i] = string(f)
	}
	return &Config{
		LogLevel:              "info",
		DBPath:                "trustlens.db",
		WindowDays:            7,
		ReportDays:            5,
		CompletenessThreshold: 0.5,
		VolumeMultiplier:      3.0,
		OutlierMultiplier:     100.0,
		DriftThreshold:        0.25,
		DuplicateKey:          dup,
		TrustWeights:          trustWeights,
		TrustAlertThreshold:   70,
		OutCSV:                "daily_trust.csv",
		OutMemo:               "decision_memo.md",
	}
}

// Weights converts the configured trust weights to the scoring type.
func (c *Config) Weights() scoring.Weights {
	w := make(scoring.Weights, len(c.TrustWeights))
	for name, weight := range c.TrustWeights {
		w[types.Signal(name)] = weight
	}
	return w
}

// DupFields converts the configured duplicate key to quality fields.
func (c *Config) DupFields() []quality.DupField {
	fields := make([]quality.DupField, len(c.DuplicateKey))
	for i, name := range c.DuplicateKey {
		fields[i] = quality.DupField(name)
	}
	return fields
}

// Validate applies the fail-fast policy: any violation here invalidates
// every day's score, so the run must not start.
func (c *Config) Validate() error {
	if c.DBPath == "" && c.EventsCSV == "" {
		return fmt.Errorf("%w: no event source (db_path or events_csv)", ErrInvalidConfig)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("%w: window_days must be positive, got %d", ErrInvalidConfig, c.WindowDays)
	}
	if c.ReportDays < 0 {
		return fmt.Errorf("%w: report_days must not be negative, got %d", ErrInvalidConfig, c.ReportDays)
	}
	if c.CompletenessThreshold <= 0 || c.CompletenessThreshold > 1 {
		return fmt.Errorf("%w: completeness_threshold %v outside (0,1]", ErrInvalidConfig, c.CompletenessThreshold)
	}
	if c.VolumeMultiplier < 1 {
		return fmt.Errorf("%w: volume_anomaly_multiplier %v below 1", ErrInvalidConfig, c.VolumeMultiplier)
	}
	if c.OutlierMultiplier <= 1 {
		return fmt.Errorf("%w: validity_outlier_multiplier %v must exceed 1", ErrInvalidConfig, c.OutlierMultiplier)
	}
	if c.DriftThreshold <= 0 || c.DriftThreshold >= 1 {
		return fmt.Errorf("%w: schema_drift_deviation_threshold %v outside (0,1)", ErrInvalidConfig, c.DriftThreshold)
	}
	known := map[string]struct{}{
		string(quality.DupUserID):      {},
		string(quality.DupEventType):   {},
		string(quality.DupTimestamp):   {},
		string(quality.DupIngestionID): {},
		string(quality.DupAmount):      {},
	}
	if len(c.DuplicateKey) == 0 {
		return fmt.Errorf("%w: duplicate_key must not be empty", ErrInvalidConfig)
	}
	for _, f := range c.DuplicateKey {
		if _, ok := known[f]; !ok {
			return fmt.Errorf("%w: unknown duplicate_key field %q", ErrInvalidConfig, f)
		}
	}
	if err := c.Weights().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
