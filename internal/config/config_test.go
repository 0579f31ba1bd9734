package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Setenv("SPMM_LEARNER", "")
	t.Setenv("SPMM_LOG_LEVEL", "")
	t.Setenv("SPMM_BENCH_WORKERS", "")
}

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "spmm.yaml")

	cfg := DefaultConfig()
	cfg.Learner.Handler = "maler-pnueli"
	cfg.Bench.Seeds = []uint64{7, 8}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "spmm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "rivest-schapire", cfg.Learner.Handler)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "spmm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("learner: [unclosed"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("learner and level", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SPMM_LEARNER", "maler-pnueli")
		t.Setenv("SPMM_LOG_LEVEL", "warn")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "maler-pnueli", cfg.Learner.Handler)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("bench workers", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SPMM_BENCH_WORKERS", "9")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Bench.Workers)
	})

	t.Run("invalid bench workers", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SPMM_BENCH_WORKERS", "many")

		_, err := Load("")
		assert.ErrorContains(t, err, "SPMM_BENCH_WORKERS")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"handler", func(c *Config) { c.Learner.Handler = "kearns-vazirani" }},
		{"level", func(c *Config) { c.Logging.Level = "trace" }},
		{"format", func(c *Config) { c.Logging.Format = "xml" }},
		{"workers", func(c *Config) { c.Bench.Workers = 0 }},
		{"size", func(c *Config) { c.Bench.Size = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
