package credits

import "errors"

var (
	// ErrUnknownFeature indicates a feature with no price table entry.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrInvalidAmount indicates a non-positive grant amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)
