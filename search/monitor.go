package search

import (
	"github.com/poiesic/empverify/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(criteria Criteria)
	StrategySelected(strategy Strategy)
	Candidate(record *core.EmploymentRecord)
	Finish(response *Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Criteria)                   {}
func (n *noopMonitor) StrategySelected(_ Strategy)        {}
func (n *noopMonitor) Candidate(_ *core.EmploymentRecord) {}
func (n *noopMonitor) Finish(_ *Response)                 {}
