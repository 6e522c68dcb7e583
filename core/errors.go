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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates an EmploymentRecord failed validation.
	ErrInvalidRecord = errors.New("invalid employment record")

	// ErrInvalidEmployeeID indicates an employee ID is not of the form EMP-YYYY-NNNNNN.
	ErrInvalidEmployeeID = errors.New("invalid employee id")

	// ErrEmptyEmployeeName indicates the employee full name is missing.
	ErrEmptyEmployeeName = errors.New("employee full name is required")

	// ErrEmptyEmployerID indicates the employer ID is missing.
	ErrEmptyEmployerID = errors.New("employer id is required")

	// ErrEmptyEmployerName indicates the employer name is missing.
	ErrEmptyEmployerName = errors.New("employer name is required")

	// ErrEmptyJobTitle indicates the job title is missing.
	ErrEmptyJobTitle = errors.New("job title is required")

	// ErrInvalidRating indicates a performance rating outside 0..10.
	ErrInvalidRating = errors.New("performance rating must be between 0 and 10")

	// ErrInvalidDate indicates a tenure date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

	// ErrInvalidTenure indicates a tenure whose end precedes its start.
	ErrInvalidTenure = errors.New("tenure end date precedes start date")
)
