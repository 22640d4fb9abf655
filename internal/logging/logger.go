// Package logging provides config-driven categorized logging for ballotqa.
// Every subsystem logs through its own category so a run can be traced per
// concern (election loading, vote generation, marking, reconciliation).
// Loggers are backed by zap; until Initialize or SetBase is called every
// category is a no-op.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config loading
	CategoryElection Category = "election" // Election definition and package loading
	CategoryVotes    Category = "votes"    // Vote pattern generation
	CategoryMarking  Category = "marking"  // Overlay rendering and sheet splitting
	CategoryProof    Category = "proof"    // Proof ballot annotation
	CategoryTally    Category = "tally"    // Tally reconciliation
	CategoryStore    Category = "store"    // Recorded output storage
	CategoryFixtures Category = "fixtures" // Fixture generation across ballot styles
)

// AllCategories lists every known category.
var AllCategories = []Category{
	CategoryBoot,
	CategoryElection,
	CategoryVotes,
	CategoryMarking,
	CategoryProof,
	CategoryTally,
	CategoryStore,
	CategoryFixtures,
}

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // empty means stderr
	Categories map[string]bool // nil enables every category
}

// Logger is a category-scoped logger. The zero value discards everything.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu         sync.RWMutex
	base       = zap.NewNop()
	categories map[string]bool
	loggers    = make(map[Category]*Logger)
)

// Initialize builds the zap logger described by cfg and installs it.
func Initialize(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var zcfg zap.Config
	switch cfg.Format {
	case "", "console":
		zcfg = zap.NewDevelopmentConfig()
	case "json":
		zcfg = zap.NewProductionConfig()
	default:
		return fmt.Errorf("invalid log format %q (valid: json, console)", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.File != "" {
		zcfg.OutputPaths = []string{cfg.File}
	}

	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mu.Lock()
	categories = cfg.Categories
	mu.Unlock()
	SetBase(l)

	Boot("logging initialized (level=%s format=%s)", level, zcfg.Encoding)
	return nil
}

// SetBase installs l as the root logger and drops cached category loggers.
func SetBase(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	loggers = make(map[Category]*Logger)
}

// Base returns the root zap logger.
func Base() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = Base().Sync()
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := &Logger{
		category: category,
		sugar:    base.Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// With returns a logger that attaches key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootWarn logs a warning to the boot category
func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warn(format, args...)
}

// Election logs to the election category
func Election(format string, args ...interface{}) {
	Get(CategoryElection).Info(format, args...)
}

// ElectionWarn logs a warning to the election category
func ElectionWarn(format string, args ...interface{}) {
	Get(CategoryElection).Warn(format, args...)
}

// VotesDebug logs debug to the votes category
func VotesDebug(format string, args ...interface{}) {
	Get(CategoryVotes).Debug(format, args...)
}

// Marking logs to the marking category
func Marking(format string, args ...interface{}) {
	Get(CategoryMarking).Info(format, args...)
}

// MarkingDebug logs debug to the marking category
func MarkingDebug(format string, args ...interface{}) {
	Get(CategoryMarking).Debug(format, args...)
}

// MarkingWarn logs a warning to the marking category
func MarkingWarn(format string, args ...interface{}) {
	Get(CategoryMarking).Warn(format, args...)
}

// Proof logs to the proof category
func Proof(format string, args ...interface{}) {
	Get(CategoryProof).Info(format, args...)
}

// ProofDebug logs debug to the proof category
func ProofDebug(format string, args ...interface{}) {
	Get(CategoryProof).Debug(format, args...)
}

// Tally logs to the tally category
func Tally(format string, args ...interface{}) {
	Get(CategoryTally).Info(format, args...)
}

// TallyWarn logs a warning to the tally category
func TallyWarn(format string, args ...interface{}) {
	Get(CategoryTally).Warn(format, args...)
}

// Store logs to the store category
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) {
	Get(CategoryStore).Debug(format, args...)
}

// Fixtures logs to the fixtures category
func Fixtures(format string, args ...interface{}) {
	Get(CategoryFixtures).Info(format, args...)
}

// FixturesDebug logs debug to the fixtures category
func FixturesDebug(format string, args ...interface{}) {
	Get(CategoryFixtures).Debug(format, args...)
}

// =============================================================================
// TIMING
// =============================================================================

// Timer measures one operation and logs its duration on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}
