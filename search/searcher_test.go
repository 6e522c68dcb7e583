package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/ledger"
	"github.com/poiesic/empverify/ledger/mock"
	"github.com/poiesic/empverify/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock2024() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

// fixture stores three ACME employees in 2024 and one in 2023.
func fixture() *mock.MockClient {
	client := mock.NewMockClient()
	client.SetCounter(2024, 3)
	client.SetCounter(2023, 1)

	client.PutRecord(&core.EmploymentRecord{
		EmployeeID:            "EMP-2024-000001",
		EmployeeName:          &core.NameInfo{FullName: "John Smith", NationalID: "GHA-430120870-5"},
		EmployerID:            "ACME",
		EmployerName:          "Acme Corporation",
		JobTitle:              "Software Engineer",
		Tenure:                &core.Tenure{StartDate: "2020-01-15", EndDate: "2022-12-30", DurationMonths: ptr(35)},
		PerformanceRating:     ptr(8.5),
		DepartureReason:       &core.Choice{Value: "resignation"},
		EligibleForRehire:     ptr(true),
		VerificationTimestamp: ptr("2024-01-15T10:30:00"),
		Metadata: &core.Metadata{
			Department:          "Engineering",
			Location:            "Accra",
			ImmediateSupervisor: &core.NameInfo{FullName: "Ama Mensah"},
		},
	})
	client.PutRecord(&core.EmploymentRecord{
		EmployeeID:   "EMP-2024-000002",
		EmployeeName: &core.NameInfo{FullName: "Jon Smith", NationalID: "GHA-111222333-4"},
		EmployerID:   "ACME",
		EmployerName: "Acme Corporation",
		JobTitle:     "Accountant",
		Tenure:       &core.Tenure{StartDate: "2019-05-01"},
		Metadata:     &core.Metadata{Department: "Finance"},
	})
	client.PutRecord(&core.EmploymentRecord{
		EmployeeID:   "EMP-2024-000003",
		EmployeeName: &core.NameInfo{FullName: "Jane Doe"},
		EmployerID:   "ACME",
		EmployerName: "Acme Corporation",
		JobTitle:     "Designer",
	})
	client.PutRecord(&core.EmploymentRecord{
		EmployeeID:   "EMP-2023-000001",
		EmployeeName: &core.NameInfo{FullName: "Kofi Smith"},
		EmployerID:   "GLOBEX",
		EmployerName: "Globex",
		JobTitle:     "Analyst",
	})
	return client
}

func newSearcher(t *testing.T, client ledger.Client, opts ...Option) *Searcher {
	t.Helper()
	reader, err := ledger.NewReader(client)
	require.NoError(t, err)
	enumerator, err := scan.NewEnumerator(reader, scan.WithClock(clock2024))
	require.NoError(t, err)
	s, err := NewSearcher(enumerator, opts...)
	require.NoError(t, err)
	return s
}

func search(t *testing.T, s *Searcher, c Criteria) *Response {
	t.Helper()
	resp, err := s.Search(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func resultIDs(resp *Response) []string {
	ids := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.EmployeeID
	}
	return ids
}

func TestNewSearcher(t *testing.T) {
	_, err := NewSearcher(nil)
	assert.ErrorIs(t, err, ErrEnumeratorRequired)
}

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     Strategy
	}{
		{"national id and employer", Criteria{NationalID: "X", EmployerID: "ACME"}, StrategyExactID},
		{"exact id outranks name and employer", Criteria{NationalID: "X", EmployerID: "ACME", EmployeeName: "John", EmploymentStartDate: "2020-01-01"}, StrategyExactID},
		{"composite key", Criteria{EmployeeName: "John", EmployerID: "ACME", EmploymentStartDate: "2020-01-01"}, StrategyCompositeKey},
		{"name and employer", Criteria{EmployeeName: "John", EmployerID: "ACME"}, StrategyNameAndEmployer},
		{"national id without employer", Criteria{NationalID: "X", EmployeeName: "John"}, StrategyNameOnly},
		{"name only", Criteria{EmployeeName: "John"}, StrategyNameOnly},
		{"employer only", Criteria{EmployerID: "ACME"}, StrategyEmployerOnly},
		{"nothing usable", Criteria{JobTitle: "Engineer"}, StrategyNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.criteria.Normalized()))
		})
	}
}

func TestCriteriaNormalized(t *testing.T) {
	c := Criteria{EmployeeName: "  John Smith ", SearchType: "FUZZY"}.Normalized()
	assert.Equal(t, "John Smith", c.EmployeeName)
	assert.Equal(t, MatchFuzzy, c.SearchType)
	assert.Equal(t, DefaultMaxResults, c.MaxResults)
	assert.True(t, c.Similar())

	c = Criteria{SearchType: "bogus", IncludeSimilar: ptr(false), MaxResults: 3}.Normalized()
	assert.Equal(t, MatchPartial, c.SearchType)
	assert.False(t, c.Similar())
	assert.Equal(t, 3, c.MaxResults)
}

func TestSearch_NameAndEmployerExact(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "John Smith", EmployerID: "ACME", SearchType: MatchExact})

	assert.Equal(t, StrategyNameAndEmployer, resp.Strategy)
	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))
	assert.Equal(t, MatchExact, resp.SearchTypeUsed)
	assert.False(t, resp.DisambiguationNeeded)
	assert.Nil(t, resp.Results[0].Disambiguation)
	assert.Equal(t, 1.0, resp.Results[0].MatchScore)
	assert.Equal(t, "****70-5", resp.Results[0].NationalIDPartial)
}

func TestSearch_ExactBucketPreferredOverFuzzy(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "john smith", EmployerID: "acme", SearchType: MatchFuzzy})

	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))
	assert.Equal(t, MatchExact, resp.Results[0].MatchType)
}

func TestSearch_NameAndEmployerFuzzy(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Jon Smyth", EmployerID: "ACME", SearchType: MatchFuzzy, IncludeSimilar: ptr(true)})

	require.Equal(t, []string{"EMP-2024-000001", "EMP-2024-000002"}, resultIDs(resp))
	for _, r := range resp.Results {
		assert.Equal(t, MatchFuzzy, r.MatchType)
		assert.GreaterOrEqual(t, r.MatchScore, 0.70)
	}
	assert.InDelta(t, 1-1.0/9, resp.Results[1].MatchScore, 1e-9)
	assert.Equal(t, MatchFuzzy, resp.SearchTypeUsed)
	assert.True(t, resp.DisambiguationNeeded)
	assert.ElementsMatch(t, []string{"John Smith", "Jon Smith"}, resp.Suggestions)
	assert.Contains(t, resp.SearchTips, "Fuzzy matching used - results may not be exact")
}

func TestSearch_FuzzyBucketRequiresFuzzySearchType(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Jon Smyth", EmployerID: "ACME"})

	assert.Zero(t, resp.TotalResults)
	assert.Empty(t, resp.Results)
	assert.Contains(t, resp.SearchTips, "Try using partial name matches")
	assert.Contains(t, resp.SearchTips, "Try using partial matching or check name spelling")
}

func TestSearch_FuzzyBucketRequiresIncludeSimilar(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Jon Smyth", EmployerID: "ACME", SearchType: MatchFuzzy, IncludeSimilar: ptr(false)})
	assert.Zero(t, resp.TotalResults)
}

func TestSearch_NameAndEmployerPartial(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Smith", EmployerID: "ACME"})

	assert.Equal(t, []string{"EMP-2024-000001", "EMP-2024-000002"}, resultIDs(resp))
	assert.True(t, resp.DisambiguationNeeded)
	assert.Contains(t, resp.SearchTips, "Multiple matches found - use employment dates to narrow down")
	assert.False(t, resp.HasMoreResults)

	for _, r := range resp.Results {
		assert.Equal(t, 0.8, r.MatchScore)
		require.NotNil(t, r.Disambiguation)
	}

	d := resp.Results[0].Disambiguation
	assert.Equal(t, "2020-01-15 to 2022-12-30", d.EmploymentPeriod)
	assert.Equal(t, "Engineering", d.Department)
	assert.Equal(t, "Ama Mensah", d.SupervisorName)
	assert.Equal(t, "resignation", d.DepartureReason)
	assert.Equal(t, "Accra", d.Location)
	assert.Equal(t, 35, *d.TenureMonths)
	assert.Equal(t, StatusVerified, d.VerificationStatus)

	d = resp.Results[1].Disambiguation
	assert.Equal(t, "2019-05-01 to Present", d.EmploymentPeriod)
	assert.Equal(t, StatusUnverified, d.VerificationStatus)
}

func TestSearch_PartialBucketSkippedForExactSearchType(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Smith", EmployerID: "ACME", SearchType: MatchExact})
	assert.Zero(t, resp.TotalResults)
}

func TestSearch_NameAndEmployerTruncatesInKeyOrder(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Smith", EmployerID: "ACME", MaxResults: 1})

	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))
	assert.True(t, resp.HasMoreResults)
}

func TestSearch_NameAndEmployerFilters(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Smith", EmployerID: "ACME", JobTitle: "account"})
	assert.Equal(t, []string{"EMP-2024-000002"}, resultIDs(resp))
	assert.Equal(t, map[string]string{"job_title": "account"}, resp.FiltersApplied)

	resp = search(t, s, Criteria{EmployeeName: "Smith", EmployerID: "ACME", Department: "engineering"})
	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))

	resp = search(t, s, Criteria{EmployeeName: "Smith", EmployerID: "ACME", DateRangeStart: "2023-01-01"})
	assert.Equal(t, []string{"EMP-2024-000002"}, resultIDs(resp))
}

func TestSearch_ExactID(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{NationalID: "gha-430120870-5", EmployerID: "acme", EmployeeName: "Jane Doe"})

	assert.Equal(t, StrategyExactID, resp.Strategy)
	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))

	resp = search(t, s, Criteria{NationalID: "GHA-000000000-0", EmployerID: "ACME"})
	assert.Zero(t, resp.TotalResults)
	assert.Contains(t, resp.SearchTips, "Try checking National ID format or employer ID")
}

func TestSearch_CompositeKey(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "John Smith", EmployerID: "ACME", EmploymentStartDate: "2020-01-01"})
	assert.Equal(t, StrategyCompositeKey, resp.Strategy)
	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))

	resp = search(t, s, Criteria{EmployeeName: "John Smith", EmployerID: "ACME", EmploymentStartDate: "2020-01-01", EmploymentEndDate: "2022-12-01"})
	assert.Equal(t, 1, resp.TotalResults)

	resp = search(t, s, Criteria{EmployeeName: "John Smith", EmployerID: "ACME", EmploymentStartDate: "2021-01-01"})
	assert.Zero(t, resp.TotalResults)
	assert.Contains(t, resp.SearchTips, "Try relaxing date criteria or check spelling")

	// the ledger record has no end date to compare against
	resp = search(t, s, Criteria{EmployeeName: "Jon Smith", EmployerID: "ACME", EmploymentStartDate: "2019-05-01", EmploymentEndDate: "2023-01-01"})
	assert.Zero(t, resp.TotalResults)

	// a record without tenure never matches
	resp = search(t, s, Criteria{EmployeeName: "Jane Doe", EmployerID: "ACME", EmploymentStartDate: "2019-05-01"})
	assert.Zero(t, resp.TotalResults)
}

func TestSearch_NameOnlyRanksBeforeTruncating(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "smith"})

	assert.Equal(t, StrategyNameOnly, resp.Strategy)
	// "jon smith" is closer to "smith" than "john smith" or "kofi smith"
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "EMP-2024-000002", resp.Results[0].EmployeeID)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].MatchScore, resp.Results[i].MatchScore)
		assert.Equal(t, MatchPartial, resp.Results[i].MatchType)
	}
	assert.Contains(t, resp.SearchTips, "Consider adding employer filter for more precise results")

	resp = search(t, s, Criteria{EmployeeName: "smith", MaxResults: 1})
	assert.Equal(t, []string{"EMP-2024-000002"}, resultIDs(resp))
	assert.True(t, resp.HasMoreResults)
}

func TestSearch_NameOnlyExactAndFuzzy(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: "Jane Doe", SearchType: MatchExact})
	assert.Equal(t, []string{"EMP-2024-000003"}, resultIDs(resp))
	assert.Equal(t, MatchExact, resp.SearchTypeUsed)

	resp = search(t, s, Criteria{EmployeeName: "Jane Do", SearchType: MatchFuzzy})
	require.Equal(t, []string{"EMP-2024-000003"}, resultIDs(resp))
	// a substring is reported at its best tier
	assert.Equal(t, MatchPartial, resp.Results[0].MatchType)
}

func TestSearch_EmployerOnly(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployerID: "acme"})

	assert.Equal(t, StrategyEmployerOnly, resp.Strategy)
	assert.Equal(t, []string{"EMP-2024-000001", "EMP-2024-000002", "EMP-2024-000003"}, resultIDs(resp))
	assert.Equal(t, MatchExact, resp.SearchTypeUsed)
	assert.Contains(t, resp.SearchTips, "All employees for this employer - add name filter to narrow results")

	resp = search(t, s, Criteria{EmployerID: "ACME", MaxResults: 2})
	assert.Len(t, resp.Results, 2)
	assert.True(t, resp.HasMoreResults)
}

func TestSearch_ScansPreviousYear(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployerID: "GLOBEX"})
	assert.Equal(t, []string{"EMP-2023-000001"}, resultIDs(resp))
}

func TestSearch_NoCriteria(t *testing.T) {
	client := fixture()
	s := newSearcher(t, client)

	resp := search(t, s, Criteria{Department: "Engineering"})

	assert.Equal(t, StrategyNone, resp.Strategy)
	assert.Zero(t, resp.TotalResults)
	assert.Contains(t, resp.SearchTips, "Please provide at least employee name or employer ID")
	assert.Equal(t, 0, client.CallCount(ledger.FnGetRecord))
}

func TestSearch_EchoesQuery(t *testing.T) {
	s := newSearcher(t, fixture())

	resp := search(t, s, Criteria{EmployeeName: " John Smith ", EmployerID: "ACME"})
	require.NotNil(t, resp.SearchQuery)
	assert.Equal(t, " John Smith ", resp.SearchQuery.EmployeeName)
	assert.Empty(t, resp.SearchQuery.SearchType)
	assert.Zero(t, resp.SearchQuery.MaxResults)
	assert.Nil(t, resp.SearchQuery.IncludeSimilar)
	assert.GreaterOrEqual(t, resp.ExecutionTimeMs, int64(0))
}

func TestSearch_Idempotent(t *testing.T) {
	s := newSearcher(t, fixture())
	c := Criteria{EmployeeName: "Jon Smyth", EmployerID: "ACME", SearchType: MatchFuzzy}

	first := search(t, s, c)
	second := search(t, s, c)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Suggestions, second.Suggestions)
}

func TestSearch_LedgerDownYieldsNoResults(t *testing.T) {
	client := mock.NewMockClient()
	client.EvaluateFunc = func(context.Context, string, ...string) ([]byte, error) {
		return nil, ledger.ErrUnavailable
	}
	s := newSearcher(t, client)

	resp := search(t, s, Criteria{EmployeeName: "John Smith", EmployerID: "ACME"})
	assert.Zero(t, resp.TotalResults)
}

func TestSearch_Cancelled(t *testing.T) {
	s := newSearcher(t, fixture())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, Criteria{EmployerID: "ACME"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestVerify(t *testing.T) {
	s := newSearcher(t, fixture())

	resp, err := s.Verify(context.Background(), "John Smith", "ACME")
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))
	assert.Equal(t, "ACME", resp.SearchQuery.EmployerID)
	assert.Equal(t, VerificationMaxResults, resp.SearchQuery.MaxResults)

	c := VerificationCriteria("John Smith", "Acme Corporation")
	assert.Empty(t, c.EmployerID)
	assert.Equal(t, "Acme Corporation", c.EmployerName)
	assert.Equal(t, MatchExact, c.SearchType)
}

type recordingMonitor struct {
	started    bool
	strategy   Strategy
	candidates int
	finished   *Response
}

func (m *recordingMonitor) Start(Criteria)                     { m.started = true }
func (m *recordingMonitor) StrategySelected(s Strategy)        { m.strategy = s }
func (m *recordingMonitor) Candidate(*core.EmploymentRecord)   { m.candidates++ }
func (m *recordingMonitor) Finish(resp *Response)              { m.finished = resp }

func TestSearchWithMonitor(t *testing.T) {
	s := newSearcher(t, fixture())
	monitor := &recordingMonitor{}

	resp, err := s.SearchWithMonitor(context.Background(), Criteria{EmployerID: "ACME"}, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, StrategyEmployerOnly, monitor.strategy)
	assert.Equal(t, 4, monitor.candidates)
	assert.Same(t, resp, monitor.finished)
}

func TestMaskNationalID(t *testing.T) {
	assert.Equal(t, "", maskNationalID(""))
	assert.Equal(t, "****", maskNationalID("123"))
	assert.Equal(t, "****1234", maskNationalID("GHA-1234"))
	assert.Equal(t, "****日本日本", maskNationalID("日本日本"))
	assert.Equal(t, "****本日本語", maskNationalID("日本日本語"))
}

func TestEmploymentPeriod(t *testing.T) {
	assert.Equal(t, "Unknown period", employmentPeriod("", ""))
	assert.Equal(t, "Unknown to 2020-01-01", employmentPeriod("", "2020-01-01"))
	assert.Equal(t, "2020-01-01 to Present", employmentPeriod("2020-01-01", ""))
}

func TestSearch_DefaultMaxResults(t *testing.T) {
	reader, err := ledger.NewReader(fixture())
	require.NoError(t, err)
	enumerator, err := scan.NewEnumerator(reader, scan.WithClock(clock2024))
	require.NoError(t, err)

	_, err = NewSearcher(enumerator, WithDefaultMaxResults(0))
	assert.ErrorIs(t, err, ErrInvalidMaxResults)

	s, err := NewSearcher(enumerator, WithDefaultMaxResults(2))
	require.NoError(t, err)

	resp := search(t, s, Criteria{EmployerID: "ACME"})
	assert.Len(t, resp.Results, 2)
	assert.True(t, resp.HasMoreResults)
	assert.Zero(t, resp.SearchQuery.MaxResults)

	resp = search(t, s, Criteria{EmployerID: "ACME", MaxResults: 5})
	assert.Len(t, resp.Results, 3)
}

func TestSearch_PartialIsSubstringOnly(t *testing.T) {
	record := &core.EmploymentRecord{EmployeeName: &core.NameInfo{FullName: "John Smith"}}
	for _, query := range []string{"smith john", "dr. john", "smith, john"} {
		assert.False(t, matchesName(record, query, MatchPartial), query)
	}
	assert.True(t, matchesName(record, "john", MatchPartial))
	assert.True(t, matchesName(record, "mr john smith", MatchPartial))

	s := newSearcher(t, fixture())
	for _, name := range []string{"Smith John", "Dr. John"} {
		resp := search(t, s, Criteria{EmployeeName: name, EmployerID: "ACME", SearchType: MatchPartial})
		assert.Empty(t, resultIDs(resp), name)
	}
}

func TestSearch_FuzzyMatchesAccentedName(t *testing.T) {
	client := mock.NewMockClient()
	client.SetCounter(2024, 1)
	client.SetCounter(2023, 0)
	client.PutRecord(&core.EmploymentRecord{
		EmployeeID:   "EMP-2024-000001",
		EmployeeName: &core.NameInfo{FullName: "José"},
		EmployerID:   "ACME",
		EmployerName: "Acme Corporation",
		JobTitle:     "Analyst",
	})
	s := newSearcher(t, client)

	resp := search(t, s, Criteria{EmployeeName: "Jose", EmployerID: "ACME", SearchType: MatchFuzzy})
	assert.Equal(t, []string{"EMP-2024-000001"}, resultIDs(resp))
	assert.InDelta(t, 0.75, resp.Results[0].MatchScore, 1e-9)
}
