package quality

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOutOfOrder = errors.New("baseline observed out of chronological order")
)
