// Package records creates, updates and reads employment records.
//
// Every write is gated by a duplicate check. Blocked writes fail with a
// *DuplicateError; duplicates that are allowed through are reported as warnings
// on the outcome.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/ledger"
	"github.com/poiesic/empverify/search"
)

// Operations reported on an Outcome.
const (
	OperationCreated = "created"
	OperationUpdated = "updated"
)

// Outcome describes a committed write.
type Outcome struct {
	EmployeeID            string            `json:"employee_id"`
	Operation             string            `json:"operation"`
	WasUpdated            bool              `json:"was_updated"`
	Message               string            `json:"message,omitempty"`
	VerificationTimestamp string            `json:"verification_timestamp,omitempty"`
	Warnings              []string          `json:"warnings,omitempty"`
	DuplicateCheck        *duplicate.Result `json:"duplicate_check,omitempty"`
}

// Service gates ledger writes on duplicate checks.
type Service struct {
	reader   *ledger.Reader
	detector *duplicate.Detector
	resolver *search.Resolver
	clock    func() time.Time
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock sets the time source used to pick the default counter year.
// Default is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) error {
		if clock == nil {
			clock = time.Now
		}
		s.clock = clock
		return nil
	}
}

// NewService creates a record service.
func NewService(reader *ledger.Reader, detector *duplicate.Detector, resolver *search.Resolver, opts ...Option) (*Service, error) {
	if reader == nil {
		return nil, ErrReaderRequired
	}
	if detector == nil {
		return nil, ErrDetectorRequired
	}
	if resolver == nil {
		return nil, ErrResolverRequired
	}

	s := &Service{
		reader:   reader,
		detector: detector,
		resolver: resolver,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Create validates record, checks it for duplicates at checkLevel and submits it.
// The ledger assigns the employee ID; any ID on record is ignored.
func (s *Service) Create(ctx context.Context, record *core.EmploymentRecord, checkLevel string) (*Outcome, error) {
	if err := core.ValidateRecord(record); err != nil {
		return nil, err
	}

	check, err := s.gate(ctx, OperationCreated, duplicate.Request{
		EmployeeName: record.EmployeeName,
		EmployerID:   record.EmployerID,
		CheckLevel:   checkLevel,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("creating employment record", "employerID", record.EmployerID)
	created, err := s.submit(ctx, ledger.FnCreateRecord, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("created employment record", "employeeID", created.EmployeeID)

	return outcome(created, OperationCreated, check), nil
}

// Update applies the set fields of patch to the record stored under employeeID.
// The employer of a record never changes; the duplicate check runs against the
// stored employer and excludes the record itself.
func (s *Service) Update(ctx context.Context, employeeID string, patch *core.EmploymentRecord, checkLevel string) (*Outcome, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: record is nil", core.ErrInvalidRecord)
	}
	if err := core.ValidateRating(patch.PerformanceRating); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidRecord, err)
	}
	if err := core.ValidateTenure(patch.Tenure); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidRecord, err)
	}

	existing, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	name := existing.EmployeeName
	if strings.TrimSpace(patch.FullName()) != "" {
		name = patch.EmployeeName
	}
	check, err := s.gate(ctx, OperationUpdated, duplicate.Request{
		EmployeeName:      name,
		EmployerID:        existing.EmployerID,
		CheckLevel:        checkLevel,
		ExcludeEmployeeID: employeeID,
	})
	if err != nil {
		return nil, err
	}

	update := *patch
	update.EmployeeID = employeeID
	s.logger.Info("updating employment record", "employeeID", employeeID)
	updated, err := s.submit(ctx, ledger.FnUpdateRecord, &update)
	if err != nil {
		return nil, err
	}
	if updated.EmployeeID == "" {
		updated.EmployeeID = employeeID
	}
	s.logger.Info("updated employment record", "employeeID", employeeID)

	return outcome(updated, OperationUpdated, check), nil
}

// Upsert updates the record identified by the national ID and employer of
// record, or creates one when none exists. Ambiguous identifiers are an error.
func (s *Service) Upsert(ctx context.Context, record *core.EmploymentRecord, checkLevel string) (*Outcome, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: record is nil", core.ErrInvalidRecord)
	}

	employeeID, err := s.resolver.Resolve(ctx, record.NationalID(), record.EmployerID)
	switch {
	case err == nil:
		s.logger.Info("upsert found existing record", "employeeID", employeeID)
		return s.Update(ctx, employeeID, record, checkLevel)
	case errors.Is(err, search.ErrNotFound), errors.Is(err, search.ErrIdentifiersRequired):
		return s.Create(ctx, record, checkLevel)
	default:
		return nil, err
	}
}

// Get reads one record.
func (s *Service) Get(ctx context.Context, employeeID string) (*core.EmploymentRecord, error) {
	employeeID = strings.TrimSpace(employeeID)
	if _, _, err := core.ParseEmployeeID(employeeID); err != nil {
		return nil, err
	}
	record, err := s.reader.Record(ctx, employeeID)
	if err != nil {
		return nil, notFound(err)
	}
	return record, nil
}

// GetByIdentifiers reads the one record carrying nationalID at employerID.
func (s *Service) GetByIdentifiers(ctx context.Context, nationalID, employerID string) (*core.EmploymentRecord, error) {
	employeeID, err := s.resolver.Resolve(ctx, nationalID, employerID)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}
	return s.Get(ctx, employeeID)
}

// History reads every committed version of a record.
func (s *Service) History(ctx context.Context, employeeID string) (*ledger.History, error) {
	history, err := s.reader.History(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return nil, notFound(err)
	}
	return history, nil
}

// Counter reads the employee counter of year; zero means the current year.
func (s *Service) Counter(ctx context.Context, year int) (*core.YearCounter, error) {
	if year == 0 {
		year = s.clock().Year()
	}
	return s.reader.Counter(ctx, year)
}

// SystemInfo reads the ledger's self description.
func (s *Service) SystemInfo(ctx context.Context) (*ledger.SystemInfo, error) {
	return s.reader.SystemInfo(ctx)
}

// DuplicateConfig returns the duplicate prevention switches in effect.
func (s *Service) DuplicateConfig() duplicate.Config {
	return s.detector.Config()
}

// gate runs a duplicate check and turns a blocking result into a *DuplicateError.
func (s *Service) gate(ctx context.Context, operation string, req duplicate.Request) (*duplicate.Result, error) {
	check, err := s.detector.Check(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.detector.ShouldBlock(check, req.CheckLevel) {
		s.logger.Warn("write blocked by duplicate prevention",
			"operation", operation, "employerID", req.EmployerID, "employeeIDs", check.ExistingEmployeeIDs)
		return nil, &DuplicateError{Operation: operation, Result: check}
	}
	return check, nil
}

func (s *Service) submit(ctx context.Context, fn string, record *core.EmploymentRecord) (*ledger.CreateResult, error) {
	payload, err := ledger.MarshalRecord(record)
	if err != nil {
		return nil, err
	}
	data, err := s.reader.Client().Submit(ctx, fn, string(payload))
	if err != nil {
		s.logger.Error("ledger write failed", "fn", fn, "err", err)
		return nil, notFound(err)
	}
	result, err := ledger.UnmarshalCreateResult(data)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrWriteRejected, result.Message)
	}
	return result, nil
}

func outcome(result *ledger.CreateResult, operation string, check *duplicate.Result) *Outcome {
	o := &Outcome{
		EmployeeID:            result.EmployeeID,
		Operation:             operation,
		WasUpdated:            operation == OperationUpdated,
		Message:               result.Message,
		VerificationTimestamp: result.VerificationTimestamp,
		Warnings:              result.ValidationWarnings,
	}
	if check != nil && check.IsDuplicate {
		o.DuplicateCheck = check
		o.Warnings = append(o.Warnings, fmt.Sprintf("%s: %s",
			check.Message, strings.Join(check.ExistingEmployeeIDs, ", ")))
	}
	return o
}

// notFound adds ErrNotFound to ledger not-found errors.
func notFound(err error) error {
	if errors.Is(err, ledger.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
