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


// Package duplicate decides whether an employee already has a record with an employer.
//
// A check scans the current year, keeps records whose name matches first and
// whose employer matches second, then grades what is left as an exact or a
// similar match. Ledger failures never block a write: a check that could not
// read the ledger answers "no duplicate".
package duplicate

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/scan"
	"github.com/poiesic/empverify/similarity"
)

// Detector runs duplicate checks against the current year's records.
type Detector struct {
	enumerator *scan.Enumerator
	config     Config
	workers    int
	monitor    Monitor
	logger     *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// WithConfig replaces the prevention switches.
// Default is DefaultConfig().
func WithConfig(config Config) Option {
	return func(d *Detector) error {
		d.config = config
		return nil
	}
}

// WithMonitor sets a monitor notified after every check.
func WithMonitor(monitor Monitor) Option {
	return func(d *Detector) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		d.monitor = monitor
		return nil
	}
}

// WithBatchWorkers sets how many checks CheckBatch runs at once.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithBatchWorkers(workers int) Option {
	return func(d *Detector) error {
		if workers < 1 {
			return ErrInvalidWorkers
		}
		d.workers = workers
		return nil
	}
}

// NewDetector creates a detector scanning through enumerator.
func NewDetector(enumerator *scan.Enumerator, opts ...Option) (*Detector, error) {
	if enumerator == nil {
		return nil, ErrEnumeratorRequired
	}

	d := &Detector{
		enumerator: enumerator,
		config:     DefaultConfig(),
		workers:    max(runtime.NumCPU()/2, 1),
		monitor:    &noopMonitor{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Config returns the prevention switches in effect.
func (d *Detector) Config() Config {
	return d.config
}

// EffectiveLevel resolves the check level of a request.
// A blank level defaults to strict in strict mode and to moderate otherwise.
// Unrecognized levels are returned lower-cased and left for ShouldBlock to handle.
func (d *Detector) EffectiveLevel(requested string) string {
	if level := strings.ToLower(strings.TrimSpace(requested)); level != "" {
		return level
	}
	if d.config.StrictMode {
		return LevelStrict
	}
	return LevelModerate
}

// ShouldBlock reports whether result must stop a create or update at level.
// Exact matches always block. Similar matches block at strict, never at moderate
// or loose, and fall back to the strict-mode switch for any other level.
func (d *Detector) ShouldBlock(result *Result, level string) bool {
	if !d.config.Enabled || result == nil || !result.IsDuplicate {
		return false
	}
	switch result.MatchCriteria {
	case MatchExactNameEmployer:
		return true
	case MatchSimilarName:
		switch d.EffectiveLevel(level) {
		case LevelStrict:
			return true
		case LevelModerate, LevelLoose:
			return false
		default:
			return d.config.StrictMode
		}
	}
	return false
}

// Check decides whether req describes an employment that is already recorded.
// Ledger failures yield a no-duplicate result; the error is non-nil only for an
// invalid request or when ctx ends before the scan completes.
func (d *Detector) Check(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	level := d.EffectiveLevel(req.CheckLevel)

	if !d.config.Enabled {
		d.logger.Debug("duplicate prevention disabled, allowing write")
		result := noDuplicate()
		d.monitor.CheckComplete(level, result, false, time.Since(start))
		return result, nil
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := req.EmployeeName.FullName
	employerID := strings.TrimSpace(req.EmployerID)
	d.logger.Info("checking for duplicates", "name", name, "employerID", employerID, "level", level)

	candidates, stats := d.candidates(ctx, name, employerID)
	if err := ctx.Err(); err != nil {
		d.logger.Warn("duplicate check interrupted", "employerID", employerID, "err", err)
		return nil, err
	}
	if stats.Unreadable || stats.Failed > 0 {
		d.logger.Error("ledger unreadable during duplicate check, allowing write",
			"year", stats.Year, "failedLookups", stats.Failed, "unreadable", stats.Unreadable)
		result := noDuplicate()
		d.monitor.CheckComplete(level, result, true, time.Since(start))
		return result, nil
	}

	result := d.grade(candidates, name, req.ExcludeEmployeeID, level)
	switch result.MatchCriteria {
	case MatchExactNameEmployer:
		d.logger.Warn("exact duplicate found", "name", name, "employerID", employerID, "employeeIDs", result.ExistingEmployeeIDs)
	case MatchSimilarName:
		d.logger.Info("similar records found", "name", name, "employerID", employerID, "employeeIDs", result.ExistingEmployeeIDs)
	default:
		d.logger.Debug("no duplicates found", "name", name, "employerID", employerID)
	}
	d.monitor.CheckComplete(level, result, false, time.Since(start))
	return result, nil
}

// candidates scans the current year for records matching name, then employerID.
// Employer IDs compare exactly.
func (d *Detector) candidates(ctx context.Context, name, employerID string) ([]*core.EmploymentRecord, scan.Stats) {
	target := similarity.Normalize(name)
	var matches []*core.EmploymentRecord
	stats := d.enumerator.Visit(ctx, d.enumerator.CurrentYear(), func(record *core.EmploymentRecord) bool {
		if d.nameMatches(target, similarity.Normalize(record.FullName())) && record.EmployerID == employerID {
			matches = append(matches, record)
		}
		return true
	})
	return matches, stats
}

func (d *Detector) nameMatches(target, candidate string) bool {
	if target == candidate {
		return true
	}
	return d.config.CheckSimilarNames && similarity.Score(target, candidate) >= similarity.DuplicateThreshold
}

// grade classifies candidates, exact matches first.
func (d *Detector) grade(candidates []*core.EmploymentRecord, name, excludeID, level string) *Result {
	target := similarity.NormalizeStrict(name)

	var exact []string
	for _, record := range candidates {
		if record.EmployeeID == excludeID {
			continue
		}
		if similarity.NormalizeStrict(record.FullName()) == target {
			exact = append(exact, record.EmployeeID)
		}
	}
	if len(exact) > 0 {
		return exactMatch(exact)
	}

	if !d.config.CheckSimilarNames || (level != LevelStrict && level != LevelModerate) {
		return noDuplicate()
	}

	var similar []string
	for _, record := range candidates {
		if record.EmployeeID == excludeID {
			continue
		}
		if similarity.Score(target, similarity.NormalizeStrict(record.FullName())) >= similarity.DuplicateThreshold {
			similar = append(similar, record.EmployeeID)
		}
	}
	if len(similar) > 0 {
		return similarMatch(similar)
	}
	return noDuplicate()
}
