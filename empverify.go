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


// Package empverify assembles the employment verification engine from its
// configuration: the ledger, the year scanner, search, duplicate prevention
// and the record service.
package empverify

import (
	"log/slog"
	"time"

	"github.com/poiesic/empverify/api"
	"github.com/poiesic/empverify/config"
	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/identity"
	"github.com/poiesic/empverify/ledger"
	ledgerbadger "github.com/poiesic/empverify/ledger/badger"
	"github.com/poiesic/empverify/metrics"
	"github.com/poiesic/empverify/records"
	"github.com/poiesic/empverify/scan"
	"github.com/poiesic/empverify/search"
	"github.com/prometheus/client_golang/prometheus"
)

type Engine struct {
	config   *config.Config
	ledger   *ledgerbadger.Ledger
	reader   *ledger.Reader
	searcher *search.Searcher
	detector *duplicate.Detector
	records  *records.Service
	registry *identity.Registry
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger     *slog.Logger
	clock      func() time.Time
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the clock that decides the current year.
func WithClock(clock func() time.Time) EngineOption {
	return func(o *engineOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithMetricsRegistry registers the engine's collectors on registry instead
// of the process-wide default.
func WithMetricsRegistry(registry *prometheus.Registry) EngineOption {
	return func(o *engineOptions) {
		if registry != nil {
			o.registerer = registry
			o.gatherer = registry
		}
	}
}

// NewEngine opens the ledger named by cfg and wires the engine around it.
// A nil cfg means config.Default().
func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		logger:     slog.Default(),
		clock:      time.Now,
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(options)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := options.logger

	l, err := ledgerbadger.Open(cfg.Ledger.Path, cfg.Ledger.InMemory,
		ledgerbadger.WithLogger(logger),
		ledgerbadger.WithClock(options.clock),
	)
	if err != nil {
		return nil, err
	}

	e, err := wire(cfg, l, options)
	if err != nil {
		if closeErr := l.Close(); closeErr != nil {
			logger.Error("error closing ledger", "err", closeErr)
		}
		return nil, err
	}
	logger.Info("engine ready",
		"ledger", cfg.Ledger.Path,
		"inMemory", cfg.Ledger.InMemory,
		"identities", len(cfg.Identities),
	)
	return e, nil
}

func wire(cfg *config.Config, l *ledgerbadger.Ledger, options *engineOptions) (*Engine, error) {
	logger := options.logger
	m := metrics.New(options.registerer)

	var client ledger.Client = l
	if cfg.Ledger.LookupsPerSecond > 0 {
		client = ledger.Throttle(l, cfg.Ledger.LookupsPerSecond, cfg.Ledger.Burst)
	}

	reader, err := ledger.NewReader(client, ledger.WithReaderLogger(logger))
	if err != nil {
		return nil, err
	}
	enumerator, err := scan.NewEnumerator(reader,
		scan.WithLogger(logger),
		scan.WithObserver(m),
		scan.WithClock(options.clock),
		scan.WithEstimateCeiling(cfg.Ledger.EstimateCeiling),
	)
	if err != nil {
		return nil, err
	}
	searcher, err := search.NewSearcher(enumerator,
		search.WithLogger(logger),
		search.WithMonitor(m),
		search.WithDefaultMaxResults(cfg.Search.DefaultMaxResults),
	)
	if err != nil {
		return nil, err
	}
	detector, err := duplicate.NewDetector(enumerator,
		duplicate.WithLogger(logger),
		duplicate.WithConfig(cfg.DuplicatePrevention.Config),
		duplicate.WithMonitor(m),
		duplicate.WithBatchWorkers(cfg.DuplicatePrevention.BatchWorkers),
	)
	if err != nil {
		return nil, err
	}
	resolver, err := search.NewResolver(searcher)
	if err != nil {
		return nil, err
	}
	service, err := records.NewService(reader, detector, resolver,
		records.WithLogger(logger),
		records.WithClock(options.clock),
	)
	if err != nil {
		return nil, err
	}

	var registry *identity.Registry
	if len(cfg.Identities) > 0 {
		registry, err = identity.NewRegistry(cfg.Identities, identity.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("no identities configured, requests run without a caller identity")
	}

	return &Engine{
		config:   cfg,
		ledger:   l,
		reader:   reader,
		searcher: searcher,
		detector: detector,
		records:  service,
		registry: registry,
		metrics:  m,
		gatherer: options.gatherer,
		logger:   logger,
	}, nil
}

func (e *Engine) Close() error {
	if err := e.ledger.Close(); err != nil {
		e.logger.Error("error closing ledger", "err", err)
		return err
	}
	return nil
}

func (e *Engine) Config() *config.Config {
	return e.config
}

func (e *Engine) Records() *records.Service {
	return e.records
}

func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

func (e *Engine) Detector() *duplicate.Detector {
	return e.detector
}

// Registry returns the API key registry, or nil when no identities are configured.
func (e *Engine) Registry() *identity.Registry {
	return e.registry
}

// NewServer builds the HTTP handlers over the engine.
// opts are applied after the engine's own.
func (e *Engine) NewServer(opts ...api.Option) (*api.Server, error) {
	base := []api.Option{
		api.WithLogger(e.logger),
		api.WithMetrics(e.metrics, e.gatherer),
		api.WithAPIKeyHeader(e.config.Server.APIKeyHeader),
	}
	if e.registry != nil {
		base = append(base, api.WithRegistry(e.registry))
	}
	return api.NewServer(e.records, e.searcher, e.detector, append(base, opts...)...)
}
