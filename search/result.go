// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"slices"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/similarity"
)

// Verification states reported in disambiguation summaries.
const (
	StatusVerified   = "verified"
	StatusUnverified = "unverified"
)

var (
	noResultsTips = []string{
		"Try using partial name matches",
		"Check employer name spelling",
		"Expand date range if searching by employment period",
		"Use composite key search for exact matches",
	}
	multipleResultsTips = []string{
		"Multiple matches found - use employment dates to narrow down",
		"Consider department or job title filters",
		"Use composite key search for exact identification",
	}
	fuzzyResultsTips = []string{
		"Fuzzy matching used - results may not be exact",
		"Check suggestions for alternative spellings",
		"Use exact search for more precise results",
	}
)

// Result is one matching record as presented to a caller.
// The full national ID is never exposed.
type Result struct {
	EmployeeID          string          `json:"employee_id"`
	EmployeeName        string          `json:"employee_name,omitempty"`
	EmployerID          string          `json:"employer_id,omitempty"`
	EmployerName        string          `json:"employer_name,omitempty"`
	JobTitle            string          `json:"job_title,omitempty"`
	EmploymentStartDate string          `json:"employment_start_date,omitempty"`
	EmploymentEndDate   string          `json:"employment_end_date,omitempty"`
	Department          string          `json:"department,omitempty"`
	MatchScore          float64         `json:"match_score"`
	MatchType           MatchType       `json:"match_type"`
	Disambiguation      *Disambiguation `json:"disambiguation_info,omitempty"`
	NationalIDPartial   string          `json:"national_id_partial,omitempty"`
	EligibleForRehire   *bool           `json:"eligible_for_rehire,omitempty"`

	record *core.EmploymentRecord
}

// Record returns the ledger record behind the result.
func (r *Result) Record() *core.EmploymentRecord {
	return r.record
}

// Disambiguation holds the fields that tell similar matches apart.
type Disambiguation struct {
	EmploymentPeriod   string   `json:"employment_period"`
	JobTitle           string   `json:"job_title,omitempty"`
	Department         string   `json:"department,omitempty"`
	TenureMonths       *int     `json:"tenure_months,omitempty"`
	DepartureReason    string   `json:"departure_reason,omitempty"`
	PerformanceRating  *float64 `json:"performance_rating,omitempty"`
	Location           string   `json:"location,omitempty"`
	SupervisorName     string   `json:"supervisor_name,omitempty"`
	RehireEligible     *bool    `json:"rehire_eligible,omitempty"`
	VerificationStatus string   `json:"verification_status"`
}

// Response is the outcome of a search.
type Response struct {
	TotalResults         int               `json:"total_results"`
	Results              []*Result         `json:"results"`
	SearchQuery          *Criteria         `json:"search_query,omitempty"`
	Strategy             Strategy          `json:"strategy,omitempty"`
	SearchTypeUsed       MatchType         `json:"search_type_used,omitempty"`
	ExecutionTimeMs      int64             `json:"execution_time_ms"`
	Suggestions          []string          `json:"suggestions,omitempty"`
	DisambiguationNeeded bool              `json:"disambiguation_needed"`
	SearchTips           []string          `json:"search_tips,omitempty"`
	FiltersApplied       map[string]string `json:"filters_applied,omitempty"`
	HasMoreResults       bool              `json:"has_more_results"`
}

func (r *Response) addTip(tip string) {
	if tip != "" {
		r.SearchTips = append(r.SearchTips, tip)
	}
}

func newResult(record *core.EmploymentRecord, matchType MatchType, score float64) *Result {
	return &Result{
		EmployeeID:          record.EmployeeID,
		EmployeeName:        record.FullName(),
		EmployerID:          record.EmployerID,
		EmployerName:        record.EmployerName,
		JobTitle:            record.JobTitle,
		EmploymentStartDate: record.StartDate(),
		EmploymentEndDate:   record.EndDate(),
		Department:          record.Department(),
		MatchScore:          score,
		MatchType:           matchType,
		NationalIDPartial:   maskNationalID(record.NationalID()),
		EligibleForRehire:   record.EligibleForRehire,
		record:              record,
	}
}

// maskNationalID keeps the last four characters of an ID.
func maskNationalID(id string) string {
	runes := []rune(id)
	switch {
	case len(runes) == 0:
		return ""
	case len(runes) < 4:
		return "****"
	default:
		return "****" + string(runes[len(runes)-4:])
	}
}

func newDisambiguation(record *core.EmploymentRecord) *Disambiguation {
	d := &Disambiguation{
		EmploymentPeriod:   employmentPeriod(record.StartDate(), record.EndDate()),
		JobTitle:           record.JobTitle,
		Department:         record.Department(),
		PerformanceRating:  record.PerformanceRating,
		RehireEligible:     record.EligibleForRehire,
		VerificationStatus: StatusUnverified,
	}
	if record.Tenure != nil {
		d.TenureMonths = record.Tenure.DurationMonths
	}
	if record.DepartureReason != nil {
		d.DepartureReason = record.DepartureReason.Value
	}
	if md := record.Metadata; md != nil {
		d.Location = md.Location
		if md.ImmediateSupervisor != nil {
			d.SupervisorName = md.ImmediateSupervisor.FullName
		}
	}
	if record.VerificationTimestamp != nil {
		d.VerificationStatus = StatusVerified
	}
	return d
}

func employmentPeriod(start, end string) string {
	if start == "" && end == "" {
		return "Unknown period"
	}
	if start == "" {
		start = "Unknown"
	}
	if end == "" {
		end = "Present"
	}
	return start + " to " + end
}

// assemble classifies matches into a response.
// Zero matches get guidance, one is reported as exact, and two or more
// carry disambiguation summaries.
func assemble(matches []*Result, strategy Strategy, query string) *Response {
	resp := &Response{
		TotalResults: len(matches),
		Results:      matches,
		Strategy:     strategy,
	}

	switch len(matches) {
	case 0:
		resp.Results = []*Result{}
		resp.SearchTips = slices.Clone(noResultsTips)
		resp.addTip(strategy.noResultsTip())
		return resp
	case 1:
		resp.SearchTypeUsed = MatchExact
		resp.addTip(strategy.resultsTip())
		return resp
	}

	resp.DisambiguationNeeded = true
	for _, m := range matches {
		m.Disambiguation = newDisambiguation(m.record)
	}

	tier := sharedTier(matches)
	if tier == MatchFuzzy {
		resp.SearchTypeUsed = MatchFuzzy
		resp.Suggestions = suggestions(matches, query)
		resp.SearchTips = slices.Clone(fuzzyResultsTips)
	} else {
		resp.SearchTypeUsed = tier
		resp.SearchTips = slices.Clone(multipleResultsTips)
	}
	resp.addTip(strategy.resultsTip())
	return resp
}

// sharedTier returns the tier common to every match, or partial when they differ.
func sharedTier(matches []*Result) MatchType {
	tier := matches[0].MatchType
	for _, m := range matches[1:] {
		if m.MatchType != tier {
			return MatchPartial
		}
	}
	return tier
}

// suggestions lists the distinct candidate names, those that sound like the
// query first.
func suggestions(matches []*Result, query string) []string {
	seen := make(map[string]bool)
	var alike, others []string
	for _, m := range matches {
		name := m.EmployeeName
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if similarity.SoundsAlike(name, query) {
			alike = append(alike, name)
		} else {
			others = append(others, name)
		}
	}
	return append(alike, others...)
}
