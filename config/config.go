// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/identity"
	"github.com/poiesic/empverify/scan"
	"github.com/poiesic/empverify/search"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server              ServerConfig     `yaml:"server"`
	Ledger              LedgerConfig     `yaml:"ledger"`
	DuplicatePrevention DuplicateConfig  `yaml:"duplicate_prevention"`
	Search              SearchConfig     `yaml:"search"`
	Identities          []identity.Entry `yaml:"identities"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	APIKeyHeader    string        `yaml:"api_key_header"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
}

// LedgerConfig configures the embedded ledger and the pace of lookups against it.
// A LookupsPerSecond of zero disables throttling.
type LedgerConfig struct {
	Path             string  `yaml:"path"`
	InMemory         bool    `yaml:"in_memory"`
	LookupsPerSecond float64 `yaml:"lookups_per_second"`
	Burst            int     `yaml:"burst"`
	EstimateCeiling  int     `yaml:"estimate_ceiling"`
}

// DuplicateConfig configures duplicate prevention.
type DuplicateConfig struct {
	duplicate.Config `yaml:",inline"`
	BatchWorkers     int `yaml:"batch_workers"`
}

// SearchConfig configures search defaults.
type SearchConfig struct {
	DefaultMaxResults int `yaml:"default_max_results"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:   ":8080",
			APIKeyHeader: "X-API-Key",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Ledger: LedgerConfig{
			Path:            "data/ledger",
			EstimateCeiling: scan.DefaultEstimateCeiling,
		},
		DuplicatePrevention: DuplicateConfig{
			Config:       duplicate.DefaultConfig(),
			BatchWorkers: 4,
		},
		Search: SearchConfig{
			DefaultMaxResults: search.DefaultMaxResults,
		},
	}
}

// Load reads the YAML file at path over Default().
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks a configuration assembled in code or altered after Load.
func (c *Config) Validate() error {
	return c.validateAndNormalize()
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Ledger.validateAndNormalize(); err != nil {
		return err
	}
	if c.DuplicatePrevention.BatchWorkers < 1 {
		return fmt.Errorf("config: duplicate_prevention.batch_workers must be positive")
	}
	if c.Search.DefaultMaxResults < 1 {
		return fmt.Errorf("config: search.default_max_results must be positive")
	}
	for i, entry := range c.Identities {
		if strings.TrimSpace(entry.APIKey) == "" {
			return fmt.Errorf("config: identities[%d].api_key must be set", i)
		}
		if entry.UserName == "" || entry.MSPID == "" {
			return fmt.Errorf("config: identities[%d] must set user_name and msp_id", i)
		}
	}
	return nil
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	if s.APIKeyHeader == "" {
		s.APIKeyHeader = "X-API-Key"
	}

	read, err := parseDurationAllowEmpty(s.ReadTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	if read > 0 {
		s.ReadTimeout = read
	}

	write, err := parseDurationAllowEmpty(s.WriteTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	if write > 0 {
		s.WriteTimeout = write
	}
	return nil
}

func (l *LedgerConfig) validateAndNormalize() error {
	if !l.InMemory && l.Path == "" {
		return fmt.Errorf("config: ledger.path must be set unless ledger.in_memory is true")
	}
	if l.LookupsPerSecond < 0 {
		return fmt.Errorf("config: ledger.lookups_per_second must not be negative")
	}
	if l.LookupsPerSecond > 0 && l.Burst < 1 {
		l.Burst = 1
	}
	if l.EstimateCeiling == 0 {
		l.EstimateCeiling = scan.DefaultEstimateCeiling
	}
	if l.EstimateCeiling < 0 {
		return fmt.Errorf("config: ledger.estimate_ceiling must be positive")
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}
