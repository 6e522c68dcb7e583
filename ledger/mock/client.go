package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/ledger"
)

// Call is one recorded invocation.
type Call struct {
	Fn   string
	Args []string
}

// MockClient is a test double for ledger.Client.
// It allows custom behavior injection via function fields.
type MockClient struct {
	// EvaluateFunc is called by Evaluate if set.
	// If nil, uses the in-memory maps.
	EvaluateFunc func(ctx context.Context, fn string, args ...string) ([]byte, error)

	// SubmitFunc is called by Submit if set.
	// If nil, stores submitted records in the in-memory maps.
	SubmitFunc func(ctx context.Context, fn string, args ...string) ([]byte, error)

	// CreateYear is the year createRecord assigns new IDs in.
	CreateYear int

	mu       sync.Mutex
	records  map[string][]byte
	counters map[int]int
	calls    []Call
}

var _ ledger.Client = (*MockClient)(nil)

// NewMockClient creates an empty mock ledger.
// Note: Returns concrete type to allow test setup and assertions.
func NewMockClient() *MockClient {
	return &MockClient{
		CreateYear: 2024,
		records:    make(map[string][]byte),
		counters:   make(map[int]int),
	}
}

// PutRecord stores a record under its EmployeeID.
func (m *MockClient) PutRecord(record *core.EmploymentRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	m.PutRaw(record.EmployeeID, data)
}

// PutRaw stores an arbitrary payload under employeeID.
func (m *MockClient) PutRaw(employeeID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[employeeID] = data
}

// SetCounter sets the counter for year.
func (m *MockClient) SetCounter(year, counter int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[year] = counter
}

// Evaluate serves reads.
func (m *MockClient) Evaluate(ctx context.Context, fn string, args ...string) ([]byte, error) {
	m.record(fn, args)

	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, fn, args...)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch fn {
	case ledger.FnGetRecord:
		if len(args) != 1 {
			return nil, ledger.ErrInvalidArguments
		}
		data, ok := m.records[args[0]]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, args[0])
		}
		return data, nil
	case ledger.FnGetEmployeeCounter:
		if len(args) != 1 {
			return nil, ledger.ErrInvalidArguments
		}
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, ledger.ErrInvalidArguments
		}
		counter, ok := m.counters[year]
		if !ok {
			return nil, fmt.Errorf("%w: counter %d", ledger.ErrNotFound, year)
		}
		return ledger.MarshalCounter(&core.YearCounter{
			Year:           year,
			CurrentCounter: counter,
			NextEmployeeID: core.FormatEmployeeID(year, counter+1),
		})
	default:
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownFunction, fn)
	}
}

// Submit serves writes.
func (m *MockClient) Submit(ctx context.Context, fn string, args ...string) ([]byte, error) {
	m.record(fn, args)

	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, fn, args...)
	}

	if fn != ledger.FnCreateRecord && fn != ledger.FnUpdateRecord {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownFunction, fn)
	}
	if len(args) != 1 {
		return nil, ledger.ErrInvalidArguments
	}

	var record core.EmploymentRecord
	if err := json.Unmarshal([]byte(args[0]), &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrInvalidArguments, err)
	}

	m.mu.Lock()
	if fn == ledger.FnCreateRecord {
		year := m.CreateYear
		m.counters[year]++
		record.EmployeeID = core.FormatEmployeeID(year, m.counters[year])
	}
	data, _ := json.Marshal(&record)
	m.records[record.EmployeeID] = data
	m.mu.Unlock()

	return json.Marshal(&ledger.CreateResult{Success: true, EmployeeID: record.EmployeeID})
}

// Calls returns a copy of every recorded call.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of calls made to fn.
func (m *MockClient) CallCount(fn string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Fn == fn {
			n++
		}
	}
	return n
}

// Reset clears recorded calls and injected behavior.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.EvaluateFunc = nil
	m.SubmitFunc = nil
}

func (m *MockClient) record(fn string, args []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Fn: fn, Args: append([]string(nil), args...)})
}
