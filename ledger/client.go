package ledger

import "context"

// Ledger function names.
const (
	FnGetRecord          = "getRecord"
	FnGetEmployeeCounter = "getEmployeeCounter"
	FnGetRecordHistory   = "getRecordHistory"
	FnGetSystemInfo      = "getSystemInfo"
	FnCreateRecord       = "createRecord"
	FnUpdateRecord       = "updateRecord"
)

// Client executes ledger functions.
// Implementations must be safe for concurrent use.
type Client interface {
	// Evaluate runs a read-only function and returns its serialized result.
	// A missing record is reported as an error wrapping ErrNotFound.
	Evaluate(ctx context.Context, fn string, args ...string) ([]byte, error)

	// Submit runs a state-changing function and returns its serialized result.
	Submit(ctx context.Context, fn string, args ...string) ([]byte, error)
}
