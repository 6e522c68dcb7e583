package badger

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Key prefixes for different data types
const (
	recordPrefix  = "emprec"
	counterPrefix = "empctr"
	historyPrefix = "emphist"
	historyIDSeq  = "emphistseq"
)

// makeRecordKey generates a key for an employment record by employee ID.
func makeRecordKey(employeeID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", recordPrefix, employeeID))
}

// makeCounterKey generates a key for a year's employee counter.
func makeCounterKey(year int) []byte {
	return []byte(counterPrefix + ":" + strconv.Itoa(year))
}

// makeHistoryKey generates a composite key for a record version.
// Format: prefix:employeeID:seq
func makeHistoryKey(employeeID string, seq uint64) []byte {
	prefix := makePartialHistoryKey(employeeID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialHistoryKey generates the prefix shared by every version of a record.
// Format: prefix:employeeID:
func makePartialHistoryKey(employeeID string) []byte {
	return []byte(historyPrefix + ":" + employeeID + ":")
}
