package search

import (
	"strings"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/similarity"
)

// recordName returns the normalized full name of a record.
func recordName(record *core.EmploymentRecord) string {
	return similarity.Normalize(record.FullName())
}

// matchesName compares a record's name to a normalized query at the given tier.
// A record without a name never matches.
func matchesName(record *core.EmploymentRecord, query string, tier MatchType) bool {
	name := recordName(record)
	if name == "" || query == "" {
		return false
	}
	switch tier {
	case MatchExact:
		return name == query
	case MatchFuzzy:
		return similarity.Score(name, query) >= similarity.SearchThreshold
	default:
		return strings.Contains(name, query) || strings.Contains(query, name)
	}
}

// nameMatchType returns the best tier at which the record's name matches query.
func nameMatchType(record *core.EmploymentRecord, query string) MatchType {
	switch {
	case matchesName(record, query, MatchExact):
		return MatchExact
	case matchesName(record, query, MatchPartial):
		return MatchPartial
	default:
		return MatchFuzzy
	}
}

func matchesEmployer(record *core.EmploymentRecord, employerID string) bool {
	return record.EmployerID != "" && employerID != "" && strings.EqualFold(record.EmployerID, employerID)
}

func matchesNationalID(record *core.EmploymentRecord, nationalID string) bool {
	id := record.NationalID()
	return id != "" && nationalID != "" && strings.EqualFold(id, nationalID)
}

// matchesEmploymentDates checks the YYYY-MM portion of each requested bound.
// A record without tenure never matches; a bound the record cannot satisfy fails it.
func matchesEmploymentDates(record *core.EmploymentRecord, start, end string) bool {
	if record.Tenure == nil {
		return false
	}
	if start != "" && !strings.HasPrefix(record.Tenure.StartDate, monthPrefix(start)) {
		return false
	}
	if end != "" && !strings.HasPrefix(record.Tenure.EndDate, monthPrefix(end)) {
		return false
	}
	return true
}

// monthPrefix returns the YYYY-MM portion of a date.
func monthPrefix(date string) string {
	if len(date) > 7 {
		return date[:7]
	}
	return date
}

// matchesFilters applies the secondary filters of c.
func matchesFilters(record *core.EmploymentRecord, c Criteria) bool {
	if !containsFold(record.JobTitle, c.JobTitle) {
		return false
	}
	if !containsFold(record.Department(), c.Department) {
		return false
	}
	if !containsFold(record.EmployerName, c.EmployerName) {
		return false
	}
	return overlapsRange(record, c.DateRangeStart, c.DateRangeEnd)
}

// containsFold reports whether s contains substr ignoring case. An empty substr always matches.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return s != "" && strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// overlapsRange reports whether the record's tenure intersects [from, to].
// Dates compare lexically as YYYY-MM-DD. Missing record dates are open-ended.
func overlapsRange(record *core.EmploymentRecord, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	start, end := record.StartDate(), record.EndDate()
	if from != "" && end != "" && end < from {
		return false
	}
	if to != "" && start != "" && start > to {
		return false
	}
	return true
}
