package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ballotqa/internal/election"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the CLI looks when --config is not given.
const DefaultConfigPath = "ballotqa.yaml"

// Config holds all ballotqa configuration.
type Config struct {
	// ElectionPackage is the election package ZIP under test.
	ElectionPackage string `yaml:"election_package"`

	// OutputDir receives fixtures, proofs and reconciliation workbooks.
	OutputDir string `yaml:"output_dir"`

	// DatabasePath is the SQLite file recorded outputs are kept in.
	DatabasePath string `yaml:"database_path"`

	Marking MarkingConfig `yaml:"marking"`
	Proof   ProofConfig   `yaml:"proof"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ElectionPackage: "election-package.zip",
		OutputDir:       "out",
		DatabasePath:    filepath.Join("out", "ballotqa.db"),
		Marking: MarkingConfig{
			BallotType:  election.BallotTypePrecinct,
			BallotMode:  election.BallotModeTest,
			Concurrency: 4,
		},
		Proof: ProofConfig{
			LabelBoxWidth: 110,
			MaxFontSize:   8,
			MinFontSize:   5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields defaults.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
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

// applyEnvOverrides applies BALLOTQA_* environment variables.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("BALLOTQA_ELECTION_PACKAGE"); path != "" {
		c.ElectionPackage = path
	}
	if path := os.Getenv("BALLOTQA_DB"); path != "" {
		c.DatabasePath = path
	}
	if dir := os.Getenv("BALLOTQA_OUTPUT_DIR"); dir != "" {
		c.OutputDir = dir
	}
	if level := os.Getenv("BALLOTQA_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if n := os.Getenv("BALLOTQA_CONCURRENCY"); n != "" {
		if v, err := strconv.Atoi(n); err == nil {
			c.Marking.Concurrency = v
		}
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}
	if err := c.Marking.Validate(); err != nil {
		return fmt.Errorf("marking: %w", err)
	}
	if err := c.Proof.Validate(); err != nil {
		return fmt.Errorf("proof: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
