package badger

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/empverify/core"
)

// NewMemoryLedger creates an in-memory ledger for testing.
// Caller must close the ledger when done.
func NewMemoryLedger(opts ...Option) (*Ledger, error) {
	return Open("", true, opts...)
}

// SeedRecord stores record as-is, bypassing validation, and raises the counter
// of the record's year to cover its sequence number.
func (l *Ledger) SeedRecord(record *core.EmploymentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	year, seq, err := core.ParseEmployeeID(record.EmployeeID)
	if err != nil {
		return err
	}
	return l.update(func(tx *badger.Txn) error {
		if err := tx.Set(makeRecordKey(record.EmployeeID), data); err != nil {
			return err
		}
		n, err := readCounter(tx, year)
		if err != nil {
			return err
		}
		if uint64(seq) > n {
			return writeCounter(tx, year, uint64(seq))
		}
		return nil
	})
}

// SeedRaw stores an arbitrary payload under employeeID without touching counters.
func (l *Ledger) SeedRaw(employeeID string, data []byte) error {
	return l.update(func(tx *badger.Txn) error {
		return tx.Set(makeRecordKey(employeeID), data)
	})
}

// SeedCounter overwrites the counter for year.
func (l *Ledger) SeedCounter(year int, n uint64) error {
	return l.update(func(tx *badger.Txn) error {
		return writeCounter(tx, year, n)
	})
}
