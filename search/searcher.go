package search

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/scan"
)

// Searcher answers attribute queries by scanning the search window.
type Searcher struct {
	enumerator *scan.Enumerator
	monitor    SearchMonitor
	maxResults int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMonitor sets the monitor used when a search does not bring its own.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithDefaultMaxResults sets the result limit of criteria that do not set one.
// Default is DefaultMaxResults.
func WithDefaultMaxResults(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return ErrInvalidMaxResults
		}
		s.maxResults = n
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(enumerator *scan.Enumerator, opts ...Option) (*Searcher, error) {
	if enumerator == nil {
		return nil, ErrEnumeratorRequired
	}

	s := &Searcher{
		enumerator: enumerator,
		monitor:    &noopMonitor{},
		maxResults: DefaultMaxResults,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs criteria against the current and previous year.
// Unusable criteria and unreadable years produce an empty response, not an error;
// the error is non-nil only when ctx ends before the scan completes.
func (s *Searcher) Search(ctx context.Context, criteria Criteria) (*Response, error) {
	return s.SearchWithMonitor(ctx, criteria, nil)
}

// SearchWithMonitor is Search with a per-call monitor.
func (s *Searcher) SearchWithMonitor(ctx context.Context, criteria Criteria, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = s.monitor
	}
	start := time.Now()
	query := criteria
	if criteria.MaxResults <= 0 {
		criteria.MaxResults = s.maxResults
	}
	c := criteria.Normalized()
	monitor.Start(c)

	strategy := SelectStrategy(c)
	monitor.StrategySelected(strategy)
	s.logger.Debug("searching", "strategy", strategy, "name", c.EmployeeName, "employerID", c.EmployerID)

	var exec execution
	if run := executorFor(strategy); run != nil {
		exec = run(s.records(ctx, monitor), c)
	}
	if err := ctx.Err(); err != nil {
		s.logger.Warn("search interrupted", "strategy", strategy, "err", err)
		return nil, err
	}

	resp := assemble(exec.matches, strategy, c.EmployeeName)
	resp.SearchQuery = &query
	resp.FiltersApplied = c.FiltersApplied()
	resp.HasMoreResults = exec.truncated()
	resp.ExecutionTimeMs = time.Since(start).Milliseconds()

	s.logger.Info("search completed", "strategy", strategy, "results", resp.TotalResults, "elapsedMs", resp.ExecutionTimeMs)
	monitor.Finish(resp)
	return resp, nil
}

// Verify checks an employment claim with an exact, narrow query.
func (s *Searcher) Verify(ctx context.Context, employeeName, employer string) (*Response, error) {
	return s.Search(ctx, VerificationCriteria(employeeName, employer))
}

// records returns the search window, reporting each record to monitor.
func (s *Searcher) records(ctx context.Context, monitor SearchMonitor) iter.Seq[*core.EmploymentRecord] {
	window := s.enumerator.Window(ctx, s.enumerator.SearchWindow()...)
	return func(yield func(*core.EmploymentRecord) bool) {
		for record := range window {
			monitor.Candidate(record)
			if !yield(record) {
				return
			}
		}
	}
}
