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

// NameInfo identifies a person on an employment record.
// It is used for employees, verifiers and supervisors alike.
type NameInfo struct {
	ID         string `json:"id,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

// Tenure is the employment period. Dates are kept as the ledger stores them (YYYY-MM-DD).
type Tenure struct {
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	DurationMonths *int   `json:"duration_months,omitempty"`
}

// Choice is an enumerated value together with the options it was chosen from.
type Choice struct {
	Value          string   `json:"value,omitempty"`
	AllowedOptions []string `json:"allowed_options,omitempty"`
}

// Document is a reference to a file held in external storage.
// Only the reference travels with the record; content never does.
type Document struct {
	Bucket                string    `json:"s3_bucket,omitempty"`
	Key                   string    `json:"s3_key,omitempty"`
	URL                   string    `json:"s3_url,omitempty"`
	DocumentType          string    `json:"document_type,omitempty"`
	AccessLevel           string    `json:"access_level,omitempty"`
	UploadTimestamp       string    `json:"upload_timestamp,omitempty"`
	VerificationTimestamp string    `json:"verification_timestamp,omitempty"`
	FileHash              string    `json:"file_hash,omitempty"`
	FileSizeBytes         int64     `json:"file_size_bytes,omitempty"`
	ExpiryDate            string    `json:"expiry_date,omitempty"`
	ReviewPeriod          string    `json:"review_period,omitempty"`
	RelatedIncidentID     string    `json:"related_incident_id,omitempty"`
	Reviewer              *NameInfo `json:"reviewer,omitempty"`
	IssuedBy              *NameInfo `json:"issued_by,omitempty"`
	Interviewer           *NameInfo `json:"interviewer,omitempty"`
	AuthorizingOfficer    *NameInfo `json:"authorizing_officer,omitempty"`
}

// Documents groups the document references attached to a record.
type Documents struct {
	EmploymentContract    *Document   `json:"employment_contract,omitempty"`
	ResignationLetter     *Document   `json:"resignation_letter,omitempty"`
	TerminationLetter     *Document   `json:"termination_letter,omitempty"`
	PerformanceReviews    []*Document `json:"performance_reviews,omitempty"`
	DisciplinaryDocuments []*Document `json:"disciplinary_documents,omitempty"`
	ExitInterview         *Document   `json:"exit_interview,omitempty"`
	IDVerification        *Document   `json:"id_verification,omitempty"`
	CustomDocuments       []*Document `json:"custom_documents,omitempty"`
}

// Metadata holds free-form details about the employment.
type Metadata struct {
	Department          string            `json:"department,omitempty"`
	ImmediateSupervisor *NameInfo         `json:"immediate_supervisor,omitempty"`
	EmploymentType      *Choice           `json:"employment_type,omitempty"`
	Location            string            `json:"location,omitempty"`
	SkillsVerified      []string          `json:"skills_verified,omitempty"`
	Achievements        []string          `json:"achievements,omitempty"`
	DisciplinaryRecords []string          `json:"disciplinary_records,omitempty"`
	AdditionalFields    map[string]string `json:"additional_fields,omitempty"`
}

// EmploymentRecord is a single employment stored on the ledger under its EmployeeID.
type EmploymentRecord struct {
	EmployeeID            string     `json:"employee_id"`
	EmployeeName          *NameInfo  `json:"employee_name,omitempty"`
	EmployerID            string     `json:"employer_id,omitempty"`
	EmployerName          string     `json:"employer_name,omitempty"`
	JobTitle              string     `json:"job_title,omitempty"`
	Tenure                *Tenure    `json:"tenure,omitempty"`
	PerformanceRating     *float64   `json:"performance_rating,omitempty"`
	DepartureReason       *Choice    `json:"departure_reason,omitempty"`
	EligibleForRehire     *bool      `json:"eligible_for_rehire,omitempty"`
	VerificationTimestamp *string    `json:"verification_timestamp,omitempty"`
	VerifierID            string     `json:"verifier_id,omitempty"`
	VerifierName          *NameInfo  `json:"verifier_name,omitempty"`
	Documents             *Documents `json:"documents,omitempty"`
	Metadata              *Metadata  `json:"metadata,omitempty"`
}

// FullName returns the employee's full name, or "" when absent.
func (r *EmploymentRecord) FullName() string {
	if r == nil || r.EmployeeName == nil {
		return ""
	}
	return r.EmployeeName.FullName
}

// NationalID returns the employee's national identifier, or "" when absent.
func (r *EmploymentRecord) NationalID() string {
	if r == nil || r.EmployeeName == nil {
		return ""
	}
	return r.EmployeeName.NationalID
}

// Department prefers the metadata department over the one on the name.
func (r *EmploymentRecord) Department() string {
	if r == nil {
		return ""
	}
	if r.Metadata != nil && r.Metadata.Department != "" {
		return r.Metadata.Department
	}
	if r.EmployeeName != nil {
		return r.EmployeeName.Department
	}
	return ""
}

// StartDate returns the tenure start date, or "" when absent.
func (r *EmploymentRecord) StartDate() string {
	if r == nil || r.Tenure == nil {
		return ""
	}
	return r.Tenure.StartDate
}

// EndDate returns the tenure end date, or "" when absent.
func (r *EmploymentRecord) EndDate() string {
	if r == nil || r.Tenure == nil {
		return ""
	}
	return r.Tenure.EndDate
}

// YearCounter is the ledger's per-year sequence upper bound.
type YearCounter struct {
	Year           int    `json:"year"`
	CurrentCounter int    `json:"current_counter"`
	NextEmployeeID string `json:"next_employee_id"`
}

// HistoryEntry is one committed version of a record.
type HistoryEntry struct {
	TxID      string            `json:"tx_id"`
	Timestamp string            `json:"timestamp"`
	IsDelete  bool              `json:"is_delete"`
	Value     *EmploymentRecord `json:"value,omitempty"`
}

// Caller describes the identity a request is executed as.
type Caller struct {
	UserID      string `json:"user_id"`
	MSPID       string `json:"msp_id"`
	AccessLevel string `json:"access_level"`
}
