package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all spmm CLI configuration.
type Config struct {
	Learner LearnerConfig `yaml:"learner"`
	Logging LoggingConfig `yaml:"logging"`
	Bench   BenchConfig   `yaml:"bench"`
}

// LearnerConfig selects the sub-learner.
type LearnerConfig struct {
	Handler string `yaml:"handler"` // maler-pnueli, rivest-schapire
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// BenchConfig configures `spmm bench`.
type BenchConfig struct {
	Workers    int      `yaml:"workers"`
	Seeds      []uint64 `yaml:"seeds"`
	Procedures int      `yaml:"procedures"`
	Internals  int      `yaml:"internals"`
	Size       int      `yaml:"size"`
}

var (
	ValidHandlers = []string{"maler-pnueli", "rivest-schapire"}
	ValidLevels   = []string{"debug", "info", "warn", "error"}
	ValidFormats  = []string{"console", "json"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Learner: LearnerConfig{
			Handler: "rivest-schapire",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Bench: BenchConfig{
			Workers:    4,
			Seeds:      []uint64{1, 2, 3},
			Procedures: 3,
			Internals:  3,
			Size:       4,
		},
	}
}

// Load reads the configuration at path. A missing file yields defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if h := os.Getenv("SPMM_LEARNER"); h != "" {
		c.Learner.Handler = h
	}
	if lvl := os.Getenv("SPMM_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if w := os.Getenv("SPMM_BENCH_WORKERS"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("invalid SPMM_BENCH_WORKERS %q: %w", w, err)
		}
		c.Bench.Workers = n
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !contains(ValidHandlers, c.Learner.Handler) {
		return fmt.Errorf("invalid learner handler %q (valid: %v)", c.Learner.Handler, ValidHandlers)
	}
	if !contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level %q (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if !contains(ValidFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format %q (valid: %v)", c.Logging.Format, ValidFormats)
	}
	if c.Bench.Workers <= 0 {
		return fmt.Errorf("bench workers must be positive, got %d", c.Bench.Workers)
	}
	if c.Bench.Procedures <= 0 || c.Bench.Internals <= 0 || c.Bench.Size < 2 {
		return fmt.Errorf("bench systems need at least one procedure, one internal symbol and two states")
	}
	return nil
}
