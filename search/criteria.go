package search

import (
	"strings"
)

// MatchType is the tier at which a record's name matched a query.
// It doubles as the requested search type.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchFuzzy   MatchType = "fuzzy"
)

const (
	// DefaultMaxResults is used when a query does not set max_results.
	DefaultMaxResults = 10

	// VerificationMaxResults bounds employment verification lookups.
	VerificationMaxResults = 5
)

// Criteria is a sparse search query.
type Criteria struct {
	EmployeeName        string    `json:"employee_name,omitempty"`
	EmployerID          string    `json:"employer_id,omitempty"`
	EmployerName        string    `json:"employer_name,omitempty"`
	NationalID          string    `json:"national_id,omitempty"`
	JobTitle            string    `json:"job_title,omitempty"`
	EmploymentStartDate string    `json:"employment_start_date,omitempty"`
	EmploymentEndDate   string    `json:"employment_end_date,omitempty"`
	DateRangeStart      string    `json:"date_range_start,omitempty"`
	DateRangeEnd        string    `json:"date_range_end,omitempty"`
	Department          string    `json:"department,omitempty"`
	SearchType          MatchType `json:"search_type,omitempty"`
	MaxResults          int       `json:"max_results,omitempty"`
	IncludeSimilar      *bool     `json:"include_similar,omitempty"`
}

// Normalized returns a copy with fields trimmed and defaults applied.
// Unknown search types become partial.
func (c Criteria) Normalized() Criteria {
	n := c
	n.EmployeeName = strings.TrimSpace(c.EmployeeName)
	n.EmployerID = strings.TrimSpace(c.EmployerID)
	n.EmployerName = strings.TrimSpace(c.EmployerName)
	n.NationalID = strings.TrimSpace(c.NationalID)
	n.JobTitle = strings.TrimSpace(c.JobTitle)
	n.EmploymentStartDate = strings.TrimSpace(c.EmploymentStartDate)
	n.EmploymentEndDate = strings.TrimSpace(c.EmploymentEndDate)
	n.DateRangeStart = strings.TrimSpace(c.DateRangeStart)
	n.DateRangeEnd = strings.TrimSpace(c.DateRangeEnd)
	n.Department = strings.TrimSpace(c.Department)

	switch MatchType(strings.ToLower(strings.TrimSpace(string(c.SearchType)))) {
	case MatchExact:
		n.SearchType = MatchExact
	case MatchFuzzy:
		n.SearchType = MatchFuzzy
	default:
		n.SearchType = MatchPartial
	}
	if n.MaxResults <= 0 {
		n.MaxResults = DefaultMaxResults
	}
	if n.IncludeSimilar == nil {
		include := true
		n.IncludeSimilar = &include
	}
	return n
}

// Similar reports whether fuzzy matches may be considered. Defaults to true.
func (c Criteria) Similar() bool {
	return c.IncludeSimilar == nil || *c.IncludeSimilar
}

// FiltersApplied returns the secondary filters the query sets.
func (c Criteria) FiltersApplied() map[string]string {
	filters := make(map[string]string)
	add := func(key, value string) {
		if value != "" {
			filters[key] = value
		}
	}
	add("job_title", c.JobTitle)
	add("department", c.Department)
	add("employer_name", c.EmployerName)
	add("date_range_start", c.DateRangeStart)
	add("date_range_end", c.DateRangeEnd)
	if len(filters) == 0 {
		return nil
	}
	return filters
}

// VerificationCriteria builds the exact query used to verify an employment claim.
// Short upper-case employer strings are taken as employer IDs, anything else as a name.
func VerificationCriteria(employeeName, employer string) Criteria {
	c := Criteria{
		EmployeeName: employeeName,
		SearchType:   MatchExact,
		MaxResults:   VerificationMaxResults,
	}
	employer = strings.TrimSpace(employer)
	if len(employer) <= 10 && employer == strings.ToUpper(employer) {
		c.EmployerID = employer
	} else {
		c.EmployerName = employer
	}
	return c
}
