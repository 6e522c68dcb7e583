package search

import (
	"iter"
	"slices"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/similarity"
)

// Partial name matches within an employer carry a fixed score.
const partialScore = 0.8

// execution is the raw output of an executor.
type execution struct {
	matches []*Result
	// total is the number of matches before truncation.
	total int
}

func (e execution) truncated() bool {
	return e.total > len(e.matches)
}

type executor func(records iter.Seq[*core.EmploymentRecord], c Criteria) execution

func executorFor(s Strategy) executor {
	switch s {
	case StrategyExactID:
		return executeExactID
	case StrategyCompositeKey:
		return executeCompositeKey
	case StrategyNameAndEmployer:
		return executeNameAndEmployer
	case StrategyNameOnly:
		return executeNameOnly
	case StrategyEmployerOnly:
		return executeEmployerOnly
	default:
		return nil
	}
}

// executeExactID keeps records whose national ID and employer both match.
func executeExactID(records iter.Seq[*core.EmploymentRecord], c Criteria) execution {
	var matches []*Result
	for record := range records {
		if matchesNationalID(record, c.NationalID) && matchesEmployer(record, c.EmployerID) {
			matches = append(matches, newResult(record, MatchExact, 1.0))
		}
	}
	return execution{matches: matches, total: len(matches)}
}

// executeCompositeKey keeps exact name and employer matches employed in the requested months.
func executeCompositeKey(records iter.Seq[*core.EmploymentRecord], c Criteria) execution {
	query := similarity.Normalize(c.EmployeeName)
	var matches []*Result
	for record := range records {
		if !matchesName(record, query, MatchExact) || !matchesEmployer(record, c.EmployerID) {
			continue
		}
		if !matchesEmploymentDates(record, c.EmploymentStartDate, c.EmploymentEndDate) {
			continue
		}
		matches = append(matches, newResult(record, MatchExact, 1.0))
	}
	return execution{matches: matches, total: len(matches)}
}

// executeNameAndEmployer buckets an employer's records by name tier and returns
// the best bucket the search type allows, in key order, cut at MaxResults.
func executeNameAndEmployer(records iter.Seq[*core.EmploymentRecord], c Criteria) execution {
	query := similarity.Normalize(c.EmployeeName)
	var exact, partial, fuzzy []*Result

	for record := range records {
		if !matchesEmployer(record, c.EmployerID) {
			continue
		}
		switch {
		case matchesName(record, query, MatchExact):
			exact = append(exact, newResult(record, MatchExact, 1.0))
		case matchesName(record, query, MatchPartial):
			partial = append(partial, newResult(record, MatchPartial, partialScore))
		case c.Similar() && matchesName(record, query, MatchFuzzy):
			score := similarity.Score(recordName(record), query)
			fuzzy = append(fuzzy, newResult(record, MatchFuzzy, score))
		}
	}

	var selected []*Result
	switch {
	case len(exact) > 0:
		selected = exact
	case len(partial) > 0 && c.SearchType != MatchExact:
		selected = partial
	case len(fuzzy) > 0 && c.SearchType == MatchFuzzy:
		selected = fuzzy
	}

	filtered := filterResults(selected, c)
	return execution{matches: truncate(filtered, c.MaxResults), total: len(filtered)}
}

// executeNameOnly ranks every name match by similarity before cutting at MaxResults.
func executeNameOnly(records iter.Seq[*core.EmploymentRecord], c Criteria) execution {
	query := similarity.Normalize(c.EmployeeName)
	var matches []*Result
	for record := range records {
		if !matchesName(record, query, c.SearchType) || !matchesFilters(record, c) {
			continue
		}
		score := similarity.Score(recordName(record), query)
		matches = append(matches, newResult(record, nameMatchType(record, query), score))
	}

	slices.SortStableFunc(matches, func(a, b *Result) int {
		switch {
		case a.MatchScore > b.MatchScore:
			return -1
		case a.MatchScore < b.MatchScore:
			return 1
		default:
			return 0
		}
	})
	return execution{matches: truncate(matches, c.MaxResults), total: len(matches)}
}

// executeEmployerOnly returns an employer's records in key order, unranked.
func executeEmployerOnly(records iter.Seq[*core.EmploymentRecord], c Criteria) execution {
	var matches []*Result
	for record := range records {
		if matchesEmployer(record, c.EmployerID) && matchesFilters(record, c) {
			matches = append(matches, newResult(record, MatchExact, 1.0))
		}
	}
	return execution{matches: truncate(matches, c.MaxResults), total: len(matches)}
}

func filterResults(results []*Result, c Criteria) []*Result {
	var kept []*Result
	for _, r := range results {
		if matchesFilters(r.record, c) {
			kept = append(kept, r)
		}
	}
	return kept
}

func truncate(results []*Result, limit int) []*Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
