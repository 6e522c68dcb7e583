package ledger

import "github.com/poiesic/empverify/core"

// Status classifies the outcome of a single record lookup.
type Status int

const (
	// Found means the record exists and decoded cleanly.
	Found Status = iota + 1
	// NotFound means no record is stored under the key.
	NotFound
	// DecodeError means a payload exists but is not a usable record.
	DecodeError
	// Failed means the ledger call itself failed.
	Failed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case DecodeError:
		return "decode_error"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lookup is the result of fetching one employee ID.
// Record is set only for Found; Err is set for DecodeError and Failed.
type Lookup struct {
	EmployeeID string
	Status     Status
	Record     *core.EmploymentRecord
	Err        error
}
