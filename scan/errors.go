package scan

import "errors"

var (
	// ErrReaderRequired is returned when a ledger reader is not provided.
	ErrReaderRequired = errors.New("ledger reader required")

	// ErrClockRequired is returned when a nil clock is supplied.
	ErrClockRequired = errors.New("clock required")

	// ErrInvalidCeiling is returned for an estimate ceiling below 1.
	ErrInvalidCeiling = errors.New("estimate ceiling must be positive")

	// ErrEstimationFailed indicates the counter fallback could not search the key space.
	ErrEstimationFailed = errors.New("counter estimation failed")
)
