package eventstore

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrOpenStore = errors.New("open event store failed")
	ErrBadHeader = errors.New("unexpected csv header")
)
