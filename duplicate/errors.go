package duplicate

import "errors"

var (
	// ErrEnumeratorRequired is returned when a record enumerator is not provided.
	ErrEnumeratorRequired = errors.New("record enumerator required")

	// ErrEmployeeNameRequired is returned when a request carries no employee full name.
	ErrEmployeeNameRequired = errors.New("employee name is required for duplicate checking")

	// ErrEmployerIDRequired is returned when a request carries no employer ID.
	ErrEmployerIDRequired = errors.New("employer id is required for duplicate checking")

	// ErrInvalidWorkers is returned when the batch worker count is not positive.
	ErrInvalidWorkers = errors.New("batch workers must be positive")
)
