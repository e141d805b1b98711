package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
chain:
  rpc_url: "ws://node:8546"
  lottery_address: "0x01"
  token_address: "0x02"
  outcome_timeout: 90s
postgres:
  dsn: "postgres://a@b/c"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigFrom(t *testing.T) {
	cfg, err := LoadConfigFrom(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "ws://node:8546", cfg.Chain.RPCURL)
	assert.Equal(t, 90*time.Second, cfg.Chain.OutcomeTimeout)
	assert.Equal(t, 30, cfg.Chain.Timeout)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestEnvOverridesSecrets(t *testing.T) {
	t.Setenv("CHAIN_PRIVATE_KEY", "0xabc")
	t.Setenv("POSTGRES_DSN", "postgres://env@host/db")
	t.Setenv("LOTTERY_ADDRESS", "0x03")

	cfg, err := LoadConfigFrom(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "0xabc", cfg.Chain.PrivateKey)
	assert.Equal(t, "postgres://env@host/db", cfg.Postgres.DSN)
	assert.Equal(t, "0x03", cfg.Chain.LotteryAddress)
	assert.Equal(t, "0x02", cfg.Chain.TokenAddress)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfigFrom(t.TempDir())
	assert.Error(t, err)
}
