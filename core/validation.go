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


package core

import (
	"fmt"
	"strings"
	"time"
)

// Layouts of dates and timestamps as the ledger stores them.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04:05"
)

// ValidateRecord validates an EmploymentRecord prior to submission.
//
// Validation rules:
//   - EmployeeName.FullName must not be blank
//   - EmployerID, EmployerName and JobTitle must not be blank
//   - PerformanceRating, when set, must be within 0..10
//   - Tenure dates, when set, must be YYYY-MM-DD and ordered
//
// NOT validated (assigned by the ledger):
//   - EmployeeID
//   - VerificationTimestamp
func ValidateRecord(record *EmploymentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if strings.TrimSpace(record.FullName()) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyEmployeeName)
	}

	if strings.TrimSpace(record.EmployerID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyEmployerID)
	}

	if strings.TrimSpace(record.EmployerName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyEmployerName)
	}

	if strings.TrimSpace(record.JobTitle) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyJobTitle)
	}

	if err := ValidateRating(record.PerformanceRating); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if err := ValidateTenure(record.Tenure); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return nil
}

// ValidateRating checks an optional performance rating.
func ValidateRating(rating *float64) error {
	if rating == nil {
		return nil
	}
	if *rating < 0 || *rating > 10 {
		return ErrInvalidRating
	}
	return nil
}

// ValidateTenure checks an optional tenure.
func ValidateTenure(tenure *Tenure) error {
	if tenure == nil {
		return nil
	}

	var start, end time.Time
	var err error
	if tenure.StartDate != "" {
		if start, err = time.Parse(DateLayout, tenure.StartDate); err != nil {
			return fmt.Errorf("%w: start_date %q", ErrInvalidDate, tenure.StartDate)
		}
	}
	if tenure.EndDate != "" {
		if end, err = time.Parse(DateLayout, tenure.EndDate); err != nil {
			return fmt.Errorf("%w: end_date %q", ErrInvalidDate, tenure.EndDate)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return ErrInvalidTenure
	}
	return nil
}
