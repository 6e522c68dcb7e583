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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/poiesic/empverify/core"
)

// Reader wraps a Client with typed read operations.
type Reader struct {
	client Client
	logger *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader) error

// WithReaderLogger sets a custom logger.
// Default is slog.Default().
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewReader creates a Reader over client.
func NewReader(client Client, opts ...ReaderOption) (*Reader, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	r := &Reader{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Client returns the underlying ledger client.
func (r *Reader) Client() Client {
	return r.client
}

// Lookup fetches one record and classifies the outcome.
// A payload whose employee_id differs from the requested key is a DecodeError.
func (r *Reader) Lookup(ctx context.Context, employeeID string) Lookup {
	result := Lookup{EmployeeID: employeeID}

	data, err := r.client.Evaluate(ctx, FnGetRecord, employeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			result.Status = NotFound
			return result
		}
		result.Status = Failed
		result.Err = err
		return result
	}

	record, err := UnmarshalRecord(data)
	if err != nil {
		r.logger.Warn("skipping undecodable record", "employeeID", employeeID, "err", err)
		result.Status = DecodeError
		result.Err = err
		return result
	}
	if record.EmployeeID != employeeID {
		err = fmt.Errorf("%w: payload employee_id %q", ErrSerializationFailed, record.EmployeeID)
		r.logger.Warn("skipping record stored under foreign key", "employeeID", employeeID, "err", err)
		result.Status = DecodeError
		result.Err = err
		return result
	}

	result.Status = Found
	result.Record = record
	return result
}

// Record fetches one record.
// Returns an error wrapping ErrNotFound when the key is empty.
func (r *Reader) Record(ctx context.Context, employeeID string) (*core.EmploymentRecord, error) {
	lookup := r.Lookup(ctx, employeeID)
	switch lookup.Status {
	case Found:
		return lookup.Record, nil
	case NotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, employeeID)
	default:
		return nil, lookup.Err
	}
}

// Exists reports whether a record is stored under employeeID without decoding it.
// Errors other than not-found are returned.
func (r *Reader) Exists(ctx context.Context, employeeID string) (bool, error) {
	_, err := r.client.Evaluate(ctx, FnGetRecord, employeeID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Counter reads the employee counter for year.
func (r *Reader) Counter(ctx context.Context, year int) (*core.YearCounter, error) {
	data, err := r.client.Evaluate(ctx, FnGetEmployeeCounter, strconv.Itoa(year))
	if err != nil {
		return nil, err
	}
	counter, err := UnmarshalCounter(data)
	if err != nil {
		return nil, err
	}
	if counter.Year == 0 {
		counter.Year = year
	}
	return counter, nil
}

// History reads every committed version of a record.
func (r *Reader) History(ctx context.Context, employeeID string) (*History, error) {
	data, err := r.client.Evaluate(ctx, FnGetRecordHistory, employeeID)
	if err != nil {
		return nil, err
	}
	return UnmarshalHistory(data)
}

// SystemInfo reads the ledger's self description.
func (r *Reader) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	data, err := r.client.Evaluate(ctx, FnGetSystemInfo)
	if err != nil {
		return nil, err
	}
	return UnmarshalSystemInfo(data)
}
