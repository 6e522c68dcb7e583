package duplicate

import "time"

// Monitor provides hooks to observe duplicate checks.
type Monitor interface {
	// CheckComplete is called once per finished check with the effective level.
	// degraded is true when a ledger failure forced a no-duplicate answer.
	CheckComplete(level string, result *Result, degraded bool, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) CheckComplete(_ string, _ *Result, _ bool, _ time.Duration) {}
