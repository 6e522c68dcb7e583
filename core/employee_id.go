package core

import (
	"fmt"
	"strconv"
	"strings"
)

const employeeIDPrefix = "EMP-"

// FormatEmployeeID builds the deterministic ledger key for a year and sequence number.
// Format: EMP-{year}-{seq:06d}
func FormatEmployeeID(year, seq int) string {
	return fmt.Sprintf("%s%d-%06d", employeeIDPrefix, year, seq)
}

// ParseEmployeeID splits an employee ID into its year and sequence number.
func ParseEmployeeID(id string) (year, seq int, err error) {
	rest, ok := strings.CutPrefix(id, employeeIDPrefix)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEmployeeID, id)
	}
	yearPart, seqPart, ok := strings.Cut(rest, "-")
	if !ok || len(yearPart) != 4 || len(seqPart) != 6 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEmployeeID, id)
	}
	year, err = strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEmployeeID, id)
	}
	seq, err = strconv.Atoi(seqPart)
	if err != nil || seq < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidEmployeeID, id)
	}
	return year, seq, nil
}

// IsEmployeeIDForYear reports whether id lies in the key namespace of year.
func IsEmployeeIDForYear(id string, year int) bool {
	y, _, err := ParseEmployeeID(id)
	return err == nil && y == year
}
