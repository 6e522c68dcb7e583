package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/ledger"
	"github.com/poiesic/empverify/ledger/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock2024() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func record(year, seq int, name string) *core.EmploymentRecord {
	return &core.EmploymentRecord{
		EmployeeID:   core.FormatEmployeeID(year, seq),
		EmployeeName: &core.NameInfo{FullName: name},
		EmployerID:   "ACME",
	}
}

func newEnumerator(t *testing.T, client ledger.Client, opts ...Option) *Enumerator {
	t.Helper()
	reader, err := ledger.NewReader(client)
	require.NoError(t, err)
	e, err := NewEnumerator(reader, append([]Option{WithClock(clock2024)}, opts...)...)
	require.NoError(t, err)
	return e
}

func ids(seq func(func(*core.EmploymentRecord) bool)) []string {
	var out []string
	for r := range seq {
		out = append(out, r.EmployeeID)
	}
	return out
}

type recordingObserver struct {
	lookups []ledger.Status
	scans   []Stats
}

func (r *recordingObserver) Lookup(_ int, status ledger.Status) { r.lookups = append(r.lookups, status) }
func (r *recordingObserver) ScanComplete(stats Stats)            { r.scans = append(r.scans, stats) }

func TestNewEnumerator(t *testing.T) {
	_, err := NewEnumerator(nil)
	assert.ErrorIs(t, err, ErrReaderRequired)

	reader, err := ledger.NewReader(mock.NewMockClient())
	require.NoError(t, err)

	_, err = NewEnumerator(reader, WithClock(nil))
	assert.ErrorIs(t, err, ErrClockRequired)

	_, err = NewEnumerator(reader, WithEstimateCeiling(0))
	assert.ErrorIs(t, err, ErrInvalidCeiling)
}

func TestRecords_VisitsExactlyCounterKeys(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 3)
	client.PutRecord(record(2024, 1, "John Smith"))
	client.PutRecord(record(2024, 3, "Jane Doe"))

	e := newEnumerator(t, client)
	got := ids(e.Records(context.Background(), 2024))

	assert.Equal(t, []string{"EMP-2024-000001", "EMP-2024-000003"}, got)
	assert.Equal(t, 3, client.CallCount(ledger.FnGetRecord))
	assert.Equal(t, 1, client.CallCount(ledger.FnGetEmployeeCounter))
}

func TestRecords_ZeroCounter(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 0)

	e := newEnumerator(t, client)
	assert.Empty(t, ids(e.Records(context.Background(), 2024)))
	assert.Equal(t, 0, client.CallCount(ledger.FnGetRecord))
}

func TestRecords_SkipsUndecodablePayloads(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 4)
	client.PutRecord(record(2024, 1, "John Smith"))
	client.PutRaw("EMP-2024-000002", []byte("{garbage"))
	// stored under a key of another namespace
	client.PutRaw("EMP-2024-000003", []byte(`{"employee_id":"EMP-2023-000003"}`))
	client.PutRecord(record(2024, 4, "Jane Doe"))

	observer := &recordingObserver{}
	e := newEnumerator(t, client, WithObserver(observer))
	got := ids(e.Records(context.Background(), 2024))

	assert.Equal(t, []string{"EMP-2024-000001", "EMP-2024-000004"}, got)
	require.Len(t, observer.scans, 1)
	assert.Equal(t, 2, observer.scans[0].Found)
	assert.Equal(t, 2, observer.scans[0].Undecodable)
	assert.Equal(t, 4, observer.scans[0].Lookups())
}

func TestRecords_SkipsFailedLookups(t *testing.T) {
	client := mock.NewMockClient()
	client.EvaluateFunc = func(_ context.Context, fn string, args ...string) ([]byte, error) {
		switch {
		case fn == ledger.FnGetEmployeeCounter:
			return []byte(`{"year":2024,"current_counter":2}`), nil
		case args[0] == "EMP-2024-000001":
			return nil, ledger.ErrUnavailable
		default:
			return ledger.MarshalRecord(record(2024, 2, "Jane Doe"))
		}
	}

	e := newEnumerator(t, client)
	assert.Equal(t, []string{"EMP-2024-000002"}, ids(e.Records(context.Background(), 2024)))
}

func TestRecords_CounterFailureFallsBackToEstimate(t *testing.T) {
	client := mock.NewMockClient()
	for seq := 1; seq <= 5; seq++ {
		client.PutRecord(record(2024, seq, "Employee"))
	}

	observer := &recordingObserver{}
	e := newEnumerator(t, client, WithObserver(observer))
	got := ids(e.Records(context.Background(), 2024))

	assert.Len(t, got, 5)
	require.Len(t, observer.scans, 1)
	assert.True(t, observer.scans[0].Estimated)
	assert.Equal(t, 5, observer.scans[0].Upper)
}

func TestUpperBound_EstimateWithCeiling(t *testing.T) {
	client := mock.NewMockClient()
	for seq := 1; seq <= 20; seq++ {
		client.PutRecord(record(2024, seq, "Employee"))
	}

	e := newEnumerator(t, client, WithEstimateCeiling(8))
	upper, estimated, err := e.UpperBound(context.Background(), 2024)
	require.NoError(t, err)
	assert.True(t, estimated)
	assert.Equal(t, 8, upper)
}

func TestRecords_CounterAndEstimateFailYieldNothing(t *testing.T) {
	client := mock.NewMockClient()
	client.EvaluateFunc = func(context.Context, string, ...string) ([]byte, error) {
		return nil, ledger.ErrUnavailable
	}

	observer := &recordingObserver{}
	e := newEnumerator(t, client, WithObserver(observer))
	assert.Empty(t, ids(e.Records(context.Background(), 2024)))

	require.Len(t, observer.scans, 1)
	assert.True(t, observer.scans[0].Unreadable)

	_, _, err := e.UpperBound(context.Background(), 2024)
	assert.ErrorIs(t, err, ErrEstimationFailed)
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
}

func TestRecords_StopsOnCancellation(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 10)
	for seq := 1; seq <= 10; seq++ {
		client.PutRecord(record(2024, seq, "Employee"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newEnumerator(t, client)

	var got []string
	for r := range e.Records(ctx, 2024) {
		got = append(got, r.EmployeeID)
		if len(got) == 2 {
			cancel()
		}
	}

	assert.Len(t, got, 2)
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
	assert.Equal(t, 2, client.CallCount(ledger.FnGetRecord))
}

func TestRecords_EarlyBreakStopsLookups(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 10)
	for seq := 1; seq <= 10; seq++ {
		client.PutRecord(record(2024, seq, "Employee"))
	}

	e := newEnumerator(t, client)
	for range e.Records(context.Background(), 2024) {
		break
	}
	assert.Equal(t, 1, client.CallCount(ledger.FnGetRecord))
}

func TestRecords_Restartable(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 2)
	client.PutRecord(record(2024, 1, "John Smith"))
	client.PutRecord(record(2024, 2, "Jane Doe"))

	e := newEnumerator(t, client)
	seq := e.Records(context.Background(), 2024)
	first := ids(seq)

	// a record created between iterations is seen by the next one
	client.SetCounter(2024, 3)
	client.PutRecord(record(2024, 3, "Kofi Mensah"))
	second := ids(seq)

	assert.Equal(t, []string{"EMP-2024-000001", "EMP-2024-000002"}, first)
	assert.Equal(t, []string{"EMP-2024-000001", "EMP-2024-000002", "EMP-2024-000003"}, second)
	assert.Equal(t, 2, client.CallCount(ledger.FnGetEmployeeCounter))
}

func TestWindow_CurrentYearThenPrevious(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 1)
	client.SetCounter(2023, 2)
	client.PutRecord(record(2024, 1, "John Smith"))
	client.PutRecord(record(2023, 1, "Jane Doe"))
	client.PutRecord(record(2023, 2, "Kofi Mensah"))

	e := newEnumerator(t, client)
	assert.Equal(t, []int{2024, 2023}, e.SearchWindow())

	got := ids(e.Window(context.Background(), e.SearchWindow()...))
	assert.Equal(t, []string{"EMP-2024-000001", "EMP-2023-000001", "EMP-2023-000002"}, got)
}

func TestWindow_StopsAfterCancelBetweenYears(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 1)
	client.SetCounter(2023, 1)
	client.PutRecord(record(2024, 1, "John Smith"))
	client.PutRecord(record(2023, 1, "Jane Doe"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := newEnumerator(t, client)

	var got []string
	for r := range e.Window(ctx, 2024, 2023) {
		got = append(got, r.EmployeeID)
		cancel()
	}
	assert.Equal(t, []string{"EMP-2024-000001"}, got)
	assert.Equal(t, 1, client.CallCount(ledger.FnGetEmployeeCounter))
}

func TestVisit_ReturnsStats(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 3)
	client.PutRecord(record(2024, 1, "John Smith"))
	client.PutRaw("EMP-2024-000002", []byte(`not json`))

	e := newEnumerator(t, client)
	var seen []string
	stats := e.Visit(context.Background(), 2024, func(r *core.EmploymentRecord) bool {
		seen = append(seen, r.EmployeeID)
		return true
	})

	assert.Equal(t, []string{"EMP-2024-000001"}, seen)
	assert.Equal(t, 2024, stats.Year)
	assert.Equal(t, 3, stats.Upper)
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.Undecodable)
	assert.Equal(t, 1, stats.Missing)
	assert.False(t, stats.Unreadable)
}
