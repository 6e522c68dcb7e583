package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: ":9090"
  read_timeout: 5s
ledger:
  path: /var/lib/empverify
  lookups_per_second: 200
duplicate_prevention:
  enabled: true
  strict_mode: false
  check_similar_names: true
  batch_workers: 8
search:
  default_max_results: 25
identities:
  - api_key: employer-secret
    user_name: org1admin
    msp_id: Org1MSP
    role: admin
  - api_key: verifier-secret
    user_name: org2user
    msp_id: Org2MSP
    role: member
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "X-API-Key", cfg.Server.APIKeyHeader)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)

	assert.Equal(t, "/var/lib/empverify", cfg.Ledger.Path)
	assert.Equal(t, 200.0, cfg.Ledger.LookupsPerSecond)
	assert.Equal(t, 1, cfg.Ledger.Burst)
	assert.Equal(t, 1000, cfg.Ledger.EstimateCeiling)

	assert.True(t, cfg.DuplicatePrevention.Enabled)
	assert.False(t, cfg.DuplicatePrevention.StrictMode)
	assert.True(t, cfg.DuplicatePrevention.CheckSimilarNames)
	assert.Equal(t, 8, cfg.DuplicatePrevention.BatchWorkers)
	assert.Equal(t, 25, cfg.Search.DefaultMaxResults)

	require.Len(t, cfg.Identities, 2)
	assert.Equal(t, "employer-secret", cfg.Identities[0].APIKey)
	assert.Equal(t, "org1admin", cfg.Identities[0].UserName)
	assert.Equal(t, "Org2MSP", cfg.Identities[1].MSPID)
}

func TestLoad_KeepsDefaultsForOmittedSections(t *testing.T) {
	cfg, err := Load(writeConfig(t, "ledger:\n  in_memory: true\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.DuplicatePrevention, cfg.DuplicatePrevention)
	assert.True(t, cfg.Ledger.InMemory)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "server: [", "parse yaml"},
		{"empty listen addr", "server:\n  listen_addr: \"\"\n", "server.listen_addr"},
		{"bad timeout", "server:\n  read_timeout: soon\n", "server.read_timeout"},
		{"no ledger path", "ledger:\n  path: \"\"\n", "ledger.path"},
		{"negative rate", "ledger:\n  lookups_per_second: -1\n", "lookups_per_second"},
		{"zero workers", "duplicate_prevention:\n  batch_workers: 0\n", "batch_workers"},
		{"zero max results", "search:\n  default_max_results: 0\n", "default_max_results"},
		{"identity without key", "identities:\n  - user_name: a\n    msp_id: Org1MSP\n", "identities[0].api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
