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


// Package metrics exports Prometheus collectors for scans, searches,
// duplicate checks and HTTP requests.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/ledger"
	"github.com/poiesic/empverify/scan"
	"github.com/poiesic/empverify/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification engine.
type Metrics struct {
	// Point lookups by ledger outcome
	Lookups *prometheus.CounterVec

	// Year scans by completeness
	Scans *prometheus.CounterVec

	// Year scan latency
	ScanLatency prometheus.Histogram

	// Searches by strategy and search type used
	Searches *prometheus.CounterVec

	// Results returned per search
	SearchResults prometheus.Histogram

	// Search latency by strategy
	SearchLatency *prometheus.HistogramVec

	// Duplicate checks by level and match criteria
	DuplicateChecks *prometheus.CounterVec

	// Duplicate checks answered "no duplicate" because the ledger failed
	DuplicateFailOpen prometheus.Counter

	// HTTP requests by route, method and status
	Requests *prometheus.CounterVec

	// HTTP request latency by route
	RequestLatency *prometheus.HistogramVec
}

var (
	_ scan.Observer        = (*Metrics)(nil)
	_ search.SearchMonitor = (*Metrics)(nil)
	_ duplicate.Monitor    = (*Metrics)(nil)
)

// New creates a Metrics instance with every collector registered on registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "empverify_ledger_lookups_total",
			Help: "Total point lookups issued while scanning, by outcome",
		}, []string{"status"}), // status: "found", "not_found", "decode_error", "failed"

		Scans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "empverify_year_scans_total",
			Help: "Total year scans by completeness",
		}, []string{"outcome"}), // outcome: "complete", "estimated", "unreadable", "cancelled"

		ScanLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "empverify_year_scan_duration_seconds",
			Help:    "Duration of a full counter-bounded year scan",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),

		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "empverify_searches_total",
			Help: "Total searches by strategy and search type used",
		}, []string{"strategy", "search_type"}),

		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "empverify_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),

		SearchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "empverify_search_duration_seconds",
			Help:    "Duration of searches by strategy",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"strategy"}),

		DuplicateChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "empverify_duplicate_checks_total",
			Help: "Total duplicate checks by effective level and match criteria",
		}, []string{"level", "match_criteria"}),

		DuplicateFailOpen: factory.NewCounter(prometheus.CounterOpts{
			Name: "empverify_duplicate_checks_fail_open_total",
			Help: "Duplicate checks answered without a complete ledger read",
		}),

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "empverify_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),

		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "empverify_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Lookup records one point lookup.
func (m *Metrics) Lookup(_ int, status ledger.Status) {
	if m != nil {
		m.Lookups.WithLabelValues(status.String()).Inc()
	}
}

// ScanComplete records a finished year scan.
func (m *Metrics) ScanComplete(stats scan.Stats) {
	if m == nil {
		return
	}
	outcome := "complete"
	switch {
	case stats.Unreadable:
		outcome = "unreadable"
	case stats.Cancelled:
		outcome = "cancelled"
	case stats.Estimated:
		outcome = "estimated"
	}
	m.Scans.WithLabelValues(outcome).Inc()
	m.ScanLatency.Observe(stats.Duration.Seconds())
}

func (m *Metrics) Start(_ search.Criteria)            {}
func (m *Metrics) StrategySelected(_ search.Strategy) {}
func (m *Metrics) Candidate(_ *core.EmploymentRecord) {}

// Finish records a completed search.
func (m *Metrics) Finish(response *search.Response) {
	if m == nil || response == nil {
		return
	}
	strategy := string(response.Strategy)
	m.Searches.WithLabelValues(strategy, string(response.SearchTypeUsed)).Inc()
	m.SearchResults.Observe(float64(response.TotalResults))
	m.SearchLatency.WithLabelValues(strategy).Observe(
		(time.Duration(response.ExecutionTimeMs) * time.Millisecond).Seconds())
}

// CheckComplete records a finished duplicate check.
func (m *Metrics) CheckComplete(level string, result *duplicate.Result, degraded bool, _ time.Duration) {
	if m == nil || result == nil {
		return
	}
	m.DuplicateChecks.WithLabelValues(level, string(result.MatchCriteria)).Inc()
	if degraded {
		m.DuplicateFailOpen.Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
		m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}
