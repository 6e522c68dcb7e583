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


package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/empverify/core"
)

// CreateResult is the payload returned by createRecord and updateRecord.
type CreateResult struct {
	Success               bool     `json:"success"`
	Message               string   `json:"message,omitempty"`
	EmployeeID            string   `json:"employee_id"`
	VerificationTimestamp string   `json:"verification_timestamp,omitempty"`
	ValidationWarnings    []string `json:"validation_warnings,omitempty"`
	AccessLevel           string   `json:"access_level,omitempty"`
}

// History is the payload returned by getRecordHistory.
type History struct {
	EmployeeID  string              `json:"employee_id"`
	AccessLevel string              `json:"access_level,omitempty"`
	History     []core.HistoryEntry `json:"history"`
}

// SystemInfo is the payload returned by getSystemInfo.
type SystemInfo struct {
	Message          string            `json:"message"`
	Features         map[string]bool   `json:"features,omitempty"`
	Collections      map[string]string `json:"collections,omitempty"`
	AccessLevels     map[string]string `json:"access_levels,omitempty"`
	EmployeeIDFormat string            `json:"employee_id_format"`
	Caller           *core.Caller      `json:"caller,omitempty"`
}

// counterPayload mirrors core.YearCounter with required fields detectable.
type counterPayload struct {
	Year           *int   `json:"year"`
	CurrentCounter *int   `json:"current_counter"`
	NextEmployeeID string `json:"next_employee_id"`
}

// MarshalRecord serializes an EmploymentRecord to JSON.
func MarshalRecord(record *core.EmploymentRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: record is nil", ErrSerializationFailed)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalRecord deserializes an EmploymentRecord.
// A payload without an employee_id is rejected.
func UnmarshalRecord(data []byte) (*core.EmploymentRecord, error) {
	var record core.EmploymentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if record.EmployeeID == "" {
		return nil, fmt.Errorf("%w: missing employee_id", ErrSerializationFailed)
	}
	return &record, nil
}

// MarshalCounter serializes a YearCounter to JSON.
func MarshalCounter(counter *core.YearCounter) ([]byte, error) {
	data, err := json.Marshal(counter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalCounter deserializes a YearCounter.
// current_counter is required and must not be negative.
func UnmarshalCounter(data []byte) (*core.YearCounter, error) {
	var payload counterPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if payload.CurrentCounter == nil {
		return nil, fmt.Errorf("%w: missing current_counter", ErrSerializationFailed)
	}
	if *payload.CurrentCounter < 0 {
		return nil, fmt.Errorf("%w: negative current_counter %d", ErrSerializationFailed, *payload.CurrentCounter)
	}
	counter := &core.YearCounter{
		CurrentCounter: *payload.CurrentCounter,
		NextEmployeeID: payload.NextEmployeeID,
	}
	if payload.Year != nil {
		counter.Year = *payload.Year
	}
	return counter, nil
}

// UnmarshalCreateResult deserializes a createRecord or updateRecord result.
func UnmarshalCreateResult(data []byte) (*CreateResult, error) {
	var result CreateResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &result, nil
}

// UnmarshalHistory deserializes a getRecordHistory result.
func UnmarshalHistory(data []byte) (*History, error) {
	var history History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &history, nil
}

// UnmarshalSystemInfo deserializes a getSystemInfo result.
func UnmarshalSystemInfo(data []byte) (*SystemInfo, error) {
	var info SystemInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &info, nil
}
