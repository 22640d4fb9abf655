package config

import (
	"os"
	"path/filepath"
	"testing"

	"ballotqa/internal/marking"
	"ballotqa/internal/votes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BALLOTQA_ELECTION_PACKAGE", "BALLOTQA_DB", "BALLOTQA_OUTPUT_DIR",
		"BALLOTQA_LOG_LEVEL", "BALLOTQA_CONCURRENCY",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "precinct", cfg.Marking.BallotType)
	assert.Equal(t, "test", cfg.Marking.BallotMode)
	assert.Equal(t, 4, cfg.Marking.Concurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "ballotqa.yaml")

	cfg := DefaultConfig()
	cfg.ElectionPackage = "/data/pkg.zip"
	cfg.Marking.Patterns = []string{"valid", "blank"}
	cfg.Marking.Calibration = marking.Calibration{OffsetMmX: 0.5, OffsetMmY: -1.25}
	cfg.Logging.Categories = map[string]bool{"proof": false}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ballotqa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: /tmp/qa\nmarking:\n  calibration:\n    offset_mm_x: 2\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/qa", cfg.OutputDir)
	assert.Equal(t, 2.0, cfg.Marking.Calibration.OffsetMmX)
	assert.Equal(t, "precinct", cfg.Marking.BallotType)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ballotqa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("marking: [nope"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BALLOTQA_ELECTION_PACKAGE", "env.zip")
	t.Setenv("BALLOTQA_DB", "env.db")
	t.Setenv("BALLOTQA_OUTPUT_DIR", "env-out")
	t.Setenv("BALLOTQA_LOG_LEVEL", "debug")
	t.Setenv("BALLOTQA_CONCURRENCY", "9")

	cfg := &Config{}
	cfg.applyEnvOverrides()
	assert.Equal(t, "env.zip", cfg.ElectionPackage)
	assert.Equal(t, "env.db", cfg.DatabasePath)
	assert.Equal(t, "env-out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9, cfg.Marking.Concurrency)

	t.Run("bad concurrency is ignored", func(t *testing.T) {
		t.Setenv("BALLOTQA_CONCURRENCY", "lots")
		cfg := &Config{Marking: MarkingConfig{Concurrency: 2}}
		cfg.applyEnvOverrides()
		assert.Equal(t, 2, cfg.Marking.Concurrency)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no database", func(c *Config) { c.DatabasePath = "" }},
		{"no output dir", func(c *Config) { c.OutputDir = "" }},
		{"bad ballot type", func(c *Config) { c.Marking.BallotType = "mail" }},
		{"bad pattern", func(c *Config) { c.Marking.Patterns = []string{"valid", "scribble"} }},
		{"too much concurrency", func(c *Config) { c.Marking.Concurrency = 1000 }},
		{"inverted font range", func(c *Config) { c.Proof.MinFontSize = 12 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParsedPatterns(t *testing.T) {
	all, err := MarkingConfig{}.ParsedPatterns()
	require.NoError(t, err)
	assert.Equal(t, votes.AllPatterns, all)

	all[0] = votes.PatternBlank
	assert.Equal(t, votes.PatternValid, votes.AllPatterns[0], "callers get their own copy")

	some, err := MarkingConfig{Patterns: []string{"overvote"}}.ParsedPatterns()
	require.NoError(t, err)
	assert.Equal(t, []votes.Pattern{votes.PatternOvervote}, some)

	_, err = MarkingConfig{Patterns: []string{"nope"}}.ParsedPatterns()
	assert.Error(t, err)
}

func TestLoggingConfig(t *testing.T) {
	c := LoggingConfig{Level: "warn", Format: "json", Categories: map[string]bool{"tally": false}}
	assert.False(t, c.IsCategoryEnabled("tally"))
	assert.True(t, c.IsCategoryEnabled("proof"))

	lc := c.ToLogging()
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, map[string]bool{"tally": false}, lc.Categories)
}

func TestProofStyle(t *testing.T) {
	s := DefaultConfig().Proof.Style()
	assert.Equal(t, 110.0, s.LabelBoxWidth)
	assert.Equal(t, 8.0, s.MaxFontSize)
	assert.Equal(t, 5.0, s.MinFontSize)
}
