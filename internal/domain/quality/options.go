package quality

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithCompletenessThreshold sets the score below which the completeness
// check raises possible_purchase_outage.
func WithCompletenessThreshold(threshold float64) Option {
	return func(x *Extractor) {
		if threshold > 0 && threshold <= 1 {
			x.completenessFloor = threshold
		}
	}
}

// WithVolumeMultiplier sets how many times the trailing session baseline the
// observed volume may reach before it counts as a spike.
func WithVolumeMultiplier(multiplier float64) Option {
	return func(x *Extractor) {
		if multiplier >= 1 {
			x.volumeMultiplier = multiplier
		}
	}
}

// WithOutlierMultiplier sets the validity amount cap as a multiple of the
// trailing median purchase amount.
func WithOutlierMultiplier(multiplier float64) Option {
	return func(x *Extractor) {
		if multiplier > 1 {
			x.outlierMultiplier = multiplier
		}
	}
}

// WithDriftThreshold sets the canonical-share deviation beyond which
// schema_drift_detected is raised.
func WithDriftThreshold(deviation float64) Option {
	return func(x *Extractor) {
		if deviation > 0 && deviation < 1 {
			x.driftDeviation = deviation
		}
	}
}

// WithDuplicateKey sets which event fields constitute the duplicate
// grouping key. Unknown field names are ignored by the key builder.
func WithDuplicateKey(fields []DupField) Option {
	return func(x *Extractor) {
		if len(fields) > 0 {
			x.dupKey = append([]DupField(nil), fields...)
		}
	}
}
