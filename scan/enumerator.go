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


// Package scan enumerates the employment records of a year by walking its key space.
//
// The ledger offers no range queries, so a year is read by asking for its
// counter and looking up EMP-{year}-000001 through EMP-{year}-{counter} one key
// at a time. Nothing is cached between scans.
package scan

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/ledger"
)

const (
	// DefaultEstimateCeiling bounds the binary search used when the counter is unreadable.
	DefaultEstimateCeiling = 1000
)

// Enumerator yields the records of a year in sequence order.
type Enumerator struct {
	reader   *ledger.Reader
	logger   *slog.Logger
	observer Observer
	clock    func() time.Time
	ceiling  int
}

// Option configures an Enumerator.
type Option func(*Enumerator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enumerator) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithObserver receives per-lookup and per-scan outcomes.
func WithObserver(observer Observer) Option {
	return func(e *Enumerator) error {
		if observer == nil {
			observer = &noopObserver{}
		}
		e.observer = observer
		return nil
	}
}

// WithClock sets the time source that defines the current year.
// Default is time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Enumerator) error {
		if clock == nil {
			return ErrClockRequired
		}
		e.clock = clock
		return nil
	}
}

// WithEstimateCeiling sets the highest sequence the counter fallback will look up.
// Default is 1000.
func WithEstimateCeiling(ceiling int) Option {
	return func(e *Enumerator) error {
		if ceiling < 1 {
			return ErrInvalidCeiling
		}
		e.ceiling = ceiling
		return nil
	}
}

// NewEnumerator creates an Enumerator reading through reader.
func NewEnumerator(reader *ledger.Reader, opts ...Option) (*Enumerator, error) {
	if reader == nil {
		return nil, ErrReaderRequired
	}
	e := &Enumerator{
		reader:   reader,
		logger:   slog.Default(),
		observer: &noopObserver{},
		clock:    time.Now,
		ceiling:  DefaultEstimateCeiling,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Reader returns the ledger reader the enumerator walks.
func (e *Enumerator) Reader() *ledger.Reader {
	return e.reader
}

// CurrentYear returns the year of the enumerator's clock.
func (e *Enumerator) CurrentYear() int {
	return e.clock().Year()
}

// SearchWindow returns the years every search scans: the current one, then the previous one.
func (e *Enumerator) SearchWindow() []int {
	year := e.CurrentYear()
	return []int{year, year - 1}
}

// Records returns the decodable records of year.
// Each iteration re-reads the counter and starts from sequence 1.
// Iteration stops early when ctx is cancelled; callers check ctx.Err().
func (e *Enumerator) Records(ctx context.Context, year int) iter.Seq[*core.EmploymentRecord] {
	return func(yield func(*core.EmploymentRecord) bool) {
		e.scan(ctx, year, yield)
	}
}

// Visit walks year like Records, handing each record to fn until fn returns
// false, and returns the scan's stats so callers can judge its completeness.
func (e *Enumerator) Visit(ctx context.Context, year int, fn func(*core.EmploymentRecord) bool) Stats {
	_, stats := e.scan(ctx, year, fn)
	return stats
}

// Window chains the records of several years in the given order.
func (e *Enumerator) Window(ctx context.Context, years ...int) iter.Seq[*core.EmploymentRecord] {
	return func(yield func(*core.EmploymentRecord) bool) {
		for _, year := range years {
			if ctx.Err() != nil {
				return
			}
			if more, _ := e.scan(ctx, year, yield); !more {
				return
			}
		}
	}
}

// scan walks one year and reports whether the consumer wants more.
func (e *Enumerator) scan(ctx context.Context, year int, yield func(*core.EmploymentRecord) bool) (more bool, stats Stats) {
	stats.Year = year
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		e.observer.ScanComplete(stats)
	}()

	upper, estimated, err := e.UpperBound(ctx, year)
	stats.Upper = upper
	stats.Estimated = estimated
	if err != nil {
		e.logger.Warn("year unreadable, scanning nothing", "year", year, "err", err)
		stats.Unreadable = true
		return true, stats
	}

	for seq := 1; seq <= upper; seq++ {
		if ctx.Err() != nil {
			stats.Cancelled = true
			return false, stats
		}
		lookup := e.reader.Lookup(ctx, core.FormatEmployeeID(year, seq))
		e.observer.Lookup(year, lookup.Status)
		switch lookup.Status {
		case ledger.Found:
			stats.Found++
			if !yield(lookup.Record) {
				return false, stats
			}
		case ledger.NotFound:
			stats.Missing++
		case ledger.DecodeError:
			stats.Undecodable++
		default:
			stats.Failed++
			e.logger.Warn("lookup failed, skipping", "employeeID", lookup.EmployeeID, "err", lookup.Err)
		}
	}
	return true, stats
}

// UpperBound returns the highest sequence number to visit for year.
// When the counter cannot be read the bound is estimated by probing keys,
// and estimated is true. An error means neither worked.
func (e *Enumerator) UpperBound(ctx context.Context, year int) (upper int, estimated bool, err error) {
	counter, err := e.reader.Counter(ctx, year)
	if err == nil {
		return counter.CurrentCounter, false, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, false, ctxErr
	}

	e.logger.Warn("counter unreadable, estimating", "year", year, "err", err)
	upper, estErr := e.estimate(ctx, year)
	if estErr != nil {
		return 0, true, errors.Join(err, estErr)
	}
	e.logger.Info("estimated counter", "year", year, "upper", upper)
	return upper, true, nil
}

// estimate binary searches 1..ceiling for the last populated sequence.
// Gaps in the key space can make it stop short; the result is a best effort.
func (e *Enumerator) estimate(ctx context.Context, year int) (int, error) {
	low, high := 1, e.ceiling
	last := 0
	for low <= high {
		mid := low + (high-low)/2
		exists, err := e.reader.Exists(ctx, core.FormatEmployeeID(year, mid))
		if err != nil {
			return 0, errors.Join(ErrEstimationFailed, err)
		}
		if exists {
			last = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return last, nil
}
