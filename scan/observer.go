package scan

import (
	"time"

	"github.com/poiesic/empverify/ledger"
)

// Stats summarizes one year's scan.
type Stats struct {
	Year        int
	Upper       int
	Estimated   bool
	Unreadable  bool
	Cancelled   bool
	Found       int
	Missing     int
	Undecodable int
	Failed      int
	Duration    time.Duration
}

// Lookups returns the number of keys visited.
func (s Stats) Lookups() int {
	return s.Found + s.Missing + s.Undecodable + s.Failed
}

// Observer provides hooks to watch scans.
type Observer interface {
	Lookup(year int, status ledger.Status)
	ScanComplete(stats Stats)
}

// noopObserver is a no-op implementation of Observer
type noopObserver struct{}

var _ Observer = (*noopObserver)(nil)

func (n *noopObserver) Lookup(_ int, _ ledger.Status) {}
func (n *noopObserver) ScanComplete(_ Stats)          {}
