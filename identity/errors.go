package identity

import "errors"

var (
	// ErrEmptyAPIKey is returned when no API key is supplied.
	ErrEmptyAPIKey = errors.New("api key required")

	// ErrUnknownAPIKey is returned when an API key is not registered.
	ErrUnknownAPIKey = errors.New("unknown api key")

	// ErrDuplicateAPIKey is returned when a key is registered twice.
	ErrDuplicateAPIKey = errors.New("duplicate api key")

	// ErrIncompleteIdentity is returned when an entry lacks a user name or MSP ID.
	ErrIncompleteIdentity = errors.New("identity requires user name and msp id")

	// ErrPermissionDenied is returned when a caller lacks the privilege for an operation.
	ErrPermissionDenied = errors.New("permission denied")
)
