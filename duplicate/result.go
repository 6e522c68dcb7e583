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


package duplicate

import (
	"strings"

	"github.com/poiesic/empverify/core"
)

// Check levels.
const (
	LevelStrict   = "strict"
	LevelModerate = "moderate"
	LevelLoose    = "loose"
)

// MatchCriteria names the rule that produced a result.
type MatchCriteria string

const (
	MatchNone              MatchCriteria = "none"
	MatchExactNameEmployer MatchCriteria = "exact_name_employer_match"
	MatchSimilarName       MatchCriteria = "similar_name_match"
)

// Confidence grades a duplicate result.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Config holds the application-wide duplicate prevention switches.
type Config struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	StrictMode        bool `yaml:"strict_mode" json:"strict_mode"`
	CheckSimilarNames bool `yaml:"check_similar_names" json:"check_similar_names"`
}

// DefaultConfig enables prevention in strict mode with similar-name checks.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		StrictMode:        true,
		CheckSimilarNames: true,
	}
}

// Request asks whether an employee already has a record with an employer.
// ExcludeEmployeeID is set on updates so a record never duplicates itself.
type Request struct {
	EmployeeName      *core.NameInfo `json:"employee_name"`
	EmployerID        string         `json:"employer_id"`
	CheckLevel        string         `json:"check_level,omitempty"`
	ExcludeEmployeeID string         `json:"exclude_employee_id,omitempty"`
}

// Validate reports a missing name or employer.
func (r Request) Validate() error {
	if r.EmployeeName == nil || strings.TrimSpace(r.EmployeeName.FullName) == "" {
		return ErrEmployeeNameRequired
	}
	if strings.TrimSpace(r.EmployerID) == "" {
		return ErrEmployerIDRequired
	}
	return nil
}

// Result is the outcome of one duplicate check.
type Result struct {
	IsDuplicate         bool          `json:"is_duplicate"`
	Message             string        `json:"message"`
	ExistingEmployeeIDs []string      `json:"existing_employee_ids"`
	MatchCriteria       MatchCriteria `json:"match_criteria"`
	ConfidenceLevel     Confidence    `json:"confidence_level"`
}

// Exact reports whether the result is an exact name and employer match.
func (r *Result) Exact() bool {
	return r != nil && r.IsDuplicate && r.MatchCriteria == MatchExactNameEmployer
}

func noDuplicate() *Result {
	return &Result{
		Message:             "No duplicate records found",
		ExistingEmployeeIDs: []string{},
		MatchCriteria:       MatchNone,
		ConfidenceLevel:     ConfidenceNone,
	}
}

func exactMatch(ids []string) *Result {
	return &Result{
		IsDuplicate:         true,
		Message:             "Exact match found - employee already exists for this employer",
		ExistingEmployeeIDs: ids,
		MatchCriteria:       MatchExactNameEmployer,
		ConfidenceLevel:     ConfidenceHigh,
	}
}

func similarMatch(ids []string) *Result {
	return &Result{
		IsDuplicate:         true,
		Message:             "Similar record found - potential duplicate",
		ExistingEmployeeIDs: ids,
		MatchCriteria:       MatchSimilarName,
		ConfidenceLevel:     ConfidenceMedium,
	}
}
