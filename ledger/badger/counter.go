package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/varint"
)

// marshalCounter encodes a counter value as a varint.
func marshalCounter(n uint64) []byte {
	buf := make([]byte, varint.Uint64.Size(n))
	varint.Uint64.Marshal(n, buf)
	return buf
}

// unmarshalCounter decodes a counter value.
func unmarshalCounter(data []byte) (uint64, error) {
	n, _, err := varint.Uint64.Unmarshal(data)
	return n, err
}

// readCounter returns the counter for year, or 0 when no record was ever created in it.
func readCounter(tx *badger.Txn, year int) (uint64, error) {
	item, err := tx.Get(makeCounterKey(year))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var n uint64
	err = item.Value(func(val []byte) error {
		var decodeErr error
		n, decodeErr = unmarshalCounter(val)
		return decodeErr
	})
	if err != nil {
		return 0, fmt.Errorf("counter %d: %w", year, err)
	}
	return n, nil
}

// writeCounter stores the counter for year.
func writeCounter(tx *badger.Txn, year int, n uint64) error {
	return tx.Set(makeCounterKey(year), marshalCounter(n))
}
