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


// Package badger implements ledger.Client on an embedded BadgerDB.
//
// Records are stored under their employee ID and each year keeps a dense
// counter, so the store offers the same point-lookup surface as a remote
// ledger and nothing more.
package badger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/identity"
	"github.com/poiesic/empverify/ledger"
)

const maxConflictRetries = 5

// Ledger serves ledger functions from a Backend.
type Ledger struct {
	backend     *Backend
	ownsBackend bool
	histSeq     *badger.Sequence
	logger      *slog.Logger
	clock       func() time.Time
}

var _ ledger.Client = (*Ledger)(nil)

// Option configures a Ledger.
type Option func(*Ledger) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithClock sets the time source used for ID years and timestamps.
// Default is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) error {
		if clock == nil {
			return errors.New("clock must not be nil")
		}
		l.clock = clock
		return nil
	}
}

// NewLedger creates a Ledger on an open backend.
// The caller keeps ownership of the backend.
func NewLedger(backend *Backend, opts ...Option) (*Ledger, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	l := &Ledger{
		backend: backend,
		logger:  slog.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	seq, err := backend.GetSequence(historyIDSeq)
	if err != nil {
		return nil, err
	}
	l.histSeq = seq
	return l, nil
}

// Open opens a Badger database at path and serves a Ledger from it.
// Closing the Ledger closes the database.
func Open(path string, inMemory bool, opts ...Option) (*Ledger, error) {
	l := &Ledger{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	backend, err := OpenBackend(path, inMemory, l.logger)
	if err != nil {
		return nil, err
	}
	ledg, err := NewLedger(backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	ledg.ownsBackend = true
	return ledg, nil
}

// Close releases the history sequence, and the backend when the Ledger opened it.
func (l *Ledger) Close() error {
	err := l.histSeq.Release()
	if l.ownsBackend {
		err = errors.Join(err, l.backend.Close())
	}
	return err
}

// Evaluate serves getRecord, getEmployeeCounter, getRecordHistory and getSystemInfo.
func (l *Ledger) Evaluate(ctx context.Context, fn string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.backend.IsClosed() {
		return nil, fmt.Errorf("%w: ledger closed", ledger.ErrUnavailable)
	}
	if caller, ok := identity.FromContext(ctx); ok && !caller.CanRead() {
		return nil, fmt.Errorf("%w: %s may not call %s", identity.ErrPermissionDenied, caller.UserName, fn)
	}

	switch fn {
	case ledger.FnGetRecord:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes an employee id", ledger.ErrInvalidArguments, fn)
		}
		return l.getRecord(args[0])
	case ledger.FnGetEmployeeCounter:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes a year", ledger.ErrInvalidArguments, fn)
		}
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: year %q", ledger.ErrInvalidArguments, args[0])
		}
		return l.getCounter(year)
	case ledger.FnGetRecordHistory:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes an employee id", ledger.ErrInvalidArguments, fn)
		}
		return l.getHistory(ctx, args[0])
	case ledger.FnGetSystemInfo:
		return l.getSystemInfo(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownFunction, fn)
	}
}

// Submit serves createRecord and updateRecord.
func (l *Ledger) Submit(ctx context.Context, fn string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.backend.IsClosed() {
		return nil, fmt.Errorf("%w: ledger closed", ledger.ErrUnavailable)
	}
	caller, hasCaller := identity.FromContext(ctx)
	if hasCaller && !caller.CanWrite() {
		return nil, fmt.Errorf("%w: %s may not call %s", identity.ErrPermissionDenied, caller.UserName, fn)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s takes a record", ledger.ErrInvalidArguments, fn)
	}

	var record core.EmploymentRecord
	if err := json.Unmarshal([]byte(args[0]), &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrInvalidArguments, err)
	}

	var (
		result *ledger.CreateResult
		err    error
	)
	switch fn {
	case ledger.FnCreateRecord:
		result, err = l.createRecord(&record)
	case ledger.FnUpdateRecord:
		result, err = l.updateRecord(&record)
	default:
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownFunction, fn)
	}
	if err != nil {
		return nil, err
	}
	if hasCaller {
		result.AccessLevel = caller.AccessLevel()
	}
	return json.Marshal(result)
}

func (l *Ledger) getRecord(employeeID string) ([]byte, error) {
	var data []byte
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRecordKey(employeeID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, employeeID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrUnavailable, err)
	}
	return data, nil
}

func (l *Ledger) getCounter(year int) ([]byte, error) {
	var n uint64
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		n, err = readCounter(tx, year)
		return err
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrUnavailable, err)
	}
	return ledger.MarshalCounter(&core.YearCounter{
		Year:           year,
		CurrentCounter: int(n),
		NextEmployeeID: core.FormatEmployeeID(year, int(n)+1),
	})
}

func (l *Ledger) getHistory(ctx context.Context, employeeID string) ([]byte, error) {
	history := ledger.History{EmployeeID: employeeID, History: []core.HistoryEntry{}}
	if caller, ok := identity.FromContext(ctx); ok {
		history.AccessLevel = caller.AccessLevel()
	}

	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialHistoryKey(employeeID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry core.HistoryEntry
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			history.History = append(history.History, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrUnavailable, err)
	}
	if len(history.History) == 0 {
		return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, employeeID)
	}
	return json.Marshal(&history)
}

func (l *Ledger) getSystemInfo(ctx context.Context) ([]byte, error) {
	info := ledger.SystemInfo{
		Message: "Employment verification ledger",
		Features: map[string]bool{
			"duplicate_prevention": true,
			"record_history":       true,
			"role_based_access":    true,
			"document_references":  true,
		},
		AccessLevels: map[string]string{
			identity.AccessFull:     "employer administrator",
			identity.AccessAdmin:    "verifier administrator",
			identity.AccessEmployer: "employer member, may create records",
			identity.AccessVerifier: "verifier member, read only",
		},
		EmployeeIDFormat: "EMP-{year}-{sequence:06d}",
	}
	if caller, ok := identity.FromContext(ctx); ok {
		info.Caller = caller.Caller()
	}
	return json.Marshal(&info)
}

// createRecord assigns the next employee ID of the current year and stores the record.
func (l *Ledger) createRecord(record *core.EmploymentRecord) (*ledger.CreateResult, error) {
	if err := core.ValidateRecord(record); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrInvalidArguments, err)
	}

	now := l.clock().UTC()
	year := now.Year()
	stamp := now.Format(core.TimestampLayout)
	record.VerificationTimestamp = &stamp

	err := l.update(func(tx *badger.Txn) error {
		n, err := readCounter(tx, year)
		if err != nil {
			return err
		}
		n++
		record.EmployeeID = core.FormatEmployeeID(year, int(n))
		if err := l.putRecord(tx, record, now); err != nil {
			return err
		}
		return writeCounter(tx, year, n)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("record created", "employeeID", record.EmployeeID, "employerID", record.EmployerID)
	return &ledger.CreateResult{
		Success:               true,
		Message:               "Employment record created",
		EmployeeID:            record.EmployeeID,
		VerificationTimestamp: stamp,
	}, nil
}

// updateRecord merges the non-empty fields of patch into the stored record.
func (l *Ledger) updateRecord(patch *core.EmploymentRecord) (*ledger.CreateResult, error) {
	if patch.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee_id required", ledger.ErrInvalidArguments)
	}

	now := l.clock().UTC()
	stamp := now.Format(core.TimestampLayout)

	err := l.update(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRecordKey(patch.EmployeeID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ledger.ErrNotFound, patch.EmployeeID)
		}
		if err != nil {
			return err
		}
		var existing *core.EmploymentRecord
		err = item.Value(func(val []byte) error {
			var decodeErr error
			existing, decodeErr = ledger.UnmarshalRecord(val)
			return decodeErr
		})
		if err != nil {
			return err
		}

		merged := mergeRecord(existing, patch)
		merged.VerificationTimestamp = &stamp
		if err := core.ValidateRecord(merged); err != nil {
			return fmt.Errorf("%w: %w", ledger.ErrInvalidArguments, err)
		}
		return l.putRecord(tx, merged, now)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("record updated", "employeeID", patch.EmployeeID)
	return &ledger.CreateResult{
		Success:               true,
		Message:               "Employment record updated",
		EmployeeID:            patch.EmployeeID,
		VerificationTimestamp: stamp,
	}, nil
}

// putRecord writes the record and appends a history entry in tx.
func (l *Ledger) putRecord(tx *badger.Txn, record *core.EmploymentRecord, now time.Time) error {
	data, err := ledger.MarshalRecord(record)
	if err != nil {
		return err
	}
	if err := tx.Set(makeRecordKey(record.EmployeeID), data); err != nil {
		return err
	}

	seq, err := l.histSeq.Next()
	if err != nil {
		return err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if seq == 0 {
		if seq, err = l.histSeq.Next(); err != nil {
			return err
		}
	}
	entry := core.HistoryEntry{
		TxID:      txID(record.EmployeeID, seq, data),
		Timestamp: now.Format(core.TimestampLayout),
		Value:     record,
	}
	value, err := json.Marshal(&entry)
	if err != nil {
		return err
	}
	return tx.Set(makeHistoryKey(record.EmployeeID, seq), value)
}

// update runs fn in a write transaction, retrying when the commit conflicts.
func (l *Ledger) update(fn func(tx *badger.Txn) error) error {
	for attempt := 1; ; attempt++ {
		err := l.backend.WithTx(func(tx *badger.Txn) error {
			if err := fn(tx); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if !errors.Is(err, badger.ErrConflict) || attempt >= maxConflictRetries {
			return err
		}
		l.logger.Debug("retrying conflicting transaction", "attempt", attempt)
	}
}

func txID(employeeID string, seq uint64, payload []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(employeeID))
	h.Write([]byte(strconv.FormatUint(seq, 10)))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// mergeRecord overlays the non-empty fields of patch on a copy of base.
// EmployerID is never changed.
func mergeRecord(base, patch *core.EmploymentRecord) *core.EmploymentRecord {
	merged := *base
	if patch.EmployeeName != nil {
		merged.EmployeeName = patch.EmployeeName
	}
	if patch.EmployerName != "" {
		merged.EmployerName = patch.EmployerName
	}
	if patch.JobTitle != "" {
		merged.JobTitle = patch.JobTitle
	}
	if patch.Tenure != nil {
		merged.Tenure = patch.Tenure
	}
	if patch.PerformanceRating != nil {
		merged.PerformanceRating = patch.PerformanceRating
	}
	if patch.DepartureReason != nil {
		merged.DepartureReason = patch.DepartureReason
	}
	if patch.EligibleForRehire != nil {
		merged.EligibleForRehire = patch.EligibleForRehire
	}
	if patch.VerifierID != "" {
		merged.VerifierID = patch.VerifierID
	}
	if patch.VerifierName != nil {
		merged.VerifierName = patch.VerifierName
	}
	if patch.Documents != nil {
		merged.Documents = patch.Documents
	}
	if patch.Metadata != nil {
		merged.Metadata = patch.Metadata
	}
	return &merged
}
