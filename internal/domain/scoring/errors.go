package scoring

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrBadWeights    = errors.New("invalid trust weights")
	ErrMissingSignal = errors.New("signal missing from mapping")
)
