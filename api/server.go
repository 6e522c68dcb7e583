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


// Package api serves the verification engine over HTTP.
//
// Handlers only decode requests, call the engine and encode the result in the
// {success, message, data, error, timestamp} envelope.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/identity"
	"github.com/poiesic/empverify/metrics"
	"github.com/poiesic/empverify/records"
	"github.com/poiesic/empverify/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ErrRecordsRequired is returned when a record service is not provided.
	ErrRecordsRequired = errors.New("record service required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrDetectorRequired is returned when a duplicate detector is not provided.
	ErrDetectorRequired = errors.New("duplicate detector required")
)

// Server holds the HTTP handlers.
type Server struct {
	records      *records.Service
	searcher     *search.Searcher
	detector     *duplicate.Detector
	registry     *identity.Registry
	metrics      *metrics.Metrics
	gatherer     prometheus.Gatherer
	apiKeyHeader string
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRegistry requires every engine request to carry a registered API key.
func WithRegistry(registry *identity.Registry) Option {
	return func(s *Server) error {
		s.registry = registry
		return nil
	}
}

// WithAPIKeyHeader sets the header carrying the API key.
// Default is X-API-Key.
func WithAPIKeyHeader(header string) Option {
	return func(s *Server) error {
		if header != "" {
			s.apiKeyHeader = header
		}
		return nil
	}
}

// WithMetrics records request metrics on m and serves gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) error {
		s.metrics = m
		if gatherer != nil {
			s.gatherer = gatherer
		}
		return nil
	}
}

// NewServer creates the HTTP handlers.
func NewServer(recordService *records.Service, searcher *search.Searcher, detector *duplicate.Detector, opts ...Option) (*Server, error) {
	if recordService == nil {
		return nil, ErrRecordsRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if detector == nil {
		return nil, ErrDetectorRequired
	}

	s := &Server{
		records:      recordService,
		searcher:     searcher,
		detector:     detector,
		gatherer:     prometheus.DefaultGatherer,
		apiKeyHeader: "X-API-Key",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.instrument)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/employment-records", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/", s.handleCreate)
		r.Post("/smart-upsert", s.handleUpsert)
		r.Get("/counter", s.handleCounter)
		r.Get("/system/counter", s.handleCounter)
		r.Get("/system/info", s.handleSystemInfo)
		r.Get("/by-identifiers", s.handleGetByIdentifiers)
		r.Put("/by-identifiers", s.handleUpdateByIdentifiers)
		r.Get("/{employeeId}", s.handleGet)
		r.Put("/{employeeId}", s.handleUpdate)
		r.Get("/{employeeId}/history", s.handleHistory)

		r.Route("/search", func(r chi.Router) {
			r.Post("/", s.handleSearch)
			r.Get("/by-name", s.handleSearchByName)
			r.Get("/by-employer", s.handleSearchByEmployer)
			r.Get("/by-composite-key", s.handleSearchByCompositeKey)
			r.Get("/by-national-id", s.handleSearchByNationalID)
			r.Get("/verification", s.handleVerification)
		})

		r.Route("/duplicates", func(r chi.Router) {
			r.Post("/check", s.handleCheckDuplicates)
			r.Post("/check-batch", s.handleCheckDuplicatesBatch)
			r.Get("/config", s.handleDuplicateConfig)
		})
		r.Post("/check-duplicates", s.handleCheckDuplicates)
		r.Get("/system/duplicate-prevention", s.handleDuplicateConfig)
	})

	return r
}

// NewHTTPServer builds an http.Server for handler with the given timeouts.
func NewHTTPServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
}
