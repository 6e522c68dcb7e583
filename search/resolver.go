package search

import (
	"context"
	"fmt"
	"strings"
)

// AmbiguousError reports a natural identifier shared by several records.
type AmbiguousError struct {
	NationalID  string
	EmployerID  string
	EmployeeIDs []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: national id and employer %s match %d records (%s)",
		ErrAmbiguous, e.EmployerID, len(e.EmployeeIDs), strings.Join(e.EmployeeIDs, ", "))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguous
}

// Resolver maps natural identifiers to employee IDs.
type Resolver struct {
	searcher *Searcher
}

// NewResolver creates a resolver backed by searcher.
func NewResolver(searcher *Searcher) (*Resolver, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	return &Resolver{searcher: searcher}, nil
}

// Resolve returns the employee ID identified by a national ID and employer ID.
// No match yields ErrNotFound; several yield an *AmbiguousError.
func (r *Resolver) Resolve(ctx context.Context, nationalID, employerID string) (string, error) {
	nationalID = strings.TrimSpace(nationalID)
	employerID = strings.TrimSpace(employerID)
	if nationalID == "" || employerID == "" {
		return "", ErrIdentifiersRequired
	}

	c := Criteria{NationalID: nationalID, EmployerID: employerID}.Normalized()
	exec := executeExactID(r.searcher.records(ctx, r.searcher.monitor), c)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch len(exec.matches) {
	case 0:
		return "", fmt.Errorf("%w: employer %s", ErrNotFound, employerID)
	case 1:
		return exec.matches[0].EmployeeID, nil
	}

	ids := make([]string, len(exec.matches))
	for i, m := range exec.matches {
		ids[i] = m.EmployeeID
	}
	r.searcher.logger.Warn("natural identifier matches several records", "employerID", employerID, "employeeIDs", ids)
	return "", &AmbiguousError{NationalID: nationalID, EmployerID: employerID, EmployeeIDs: ids}
}
