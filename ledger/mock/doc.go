// Package mock provides a test double for ledger.Client.
//
// MockClient serves getRecord and getEmployeeCounter from in-memory maps and
// records every call, so tests can assert exactly which keys a scan visited.
//
// # Usage in Tests
//
//	// Default behavior backed by maps
//	client := mock.NewMockClient()
//	client.SetCounter(2024, 3)
//	client.PutRecord(&core.EmploymentRecord{EmployeeID: "EMP-2024-000001"})
//
//	// Custom behavior injection
//	client.EvaluateFunc = func(ctx context.Context, fn string, args ...string) ([]byte, error) {
//	    return nil, ledger.ErrUnavailable
//	}
//
//	// Inspect calls
//	n := client.CallCount(ledger.FnGetRecord)
//
// # Default Behavior
//
//   - getRecord returns the stored payload or ErrNotFound
//   - getEmployeeCounter returns the stored counter or ErrNotFound
//   - createRecord and updateRecord store the submitted record
package mock
