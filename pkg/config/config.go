// Package config defines the configuration types for dantetool.
// These types are pure data structures; loading and merging live in
// internal/configloader.
package config

import "path/filepath"

// OutputFormat specifies the output format of alignment reports.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatSummary OutputFormat = "summary"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Defaults for the data layout.
const (
	DefaultTokenizeDir   = "tokenize"
	DefaultComparisonDir = "comparison"
	DefaultIndexPath     = ".dantetool/index.db"
	DefaultSpan          = 3
	DefaultLogLevel      = "info"
)

// DefaultCanticas returns the cantica directory names in reading order.
func DefaultCanticas() []string {
	return []string{"inferno", "purgatorio", "paradiso"}
}

// Config is the root configuration structure for dantetool.
type Config struct {
	// Root holds one directory per model. Relative directories below are
	// resolved against it.
	Root string `yaml:"root"`

	// Canticas lists the cantica directory names discovery accepts.
	Canticas []string `yaml:"canticas"`

	// TokenizeDir holds the tokenized reference, <dir>/<cantica>/<nn>.txt.
	// Relative to Root.
	TokenizeDir string `yaml:"tokenize_dir"`

	// ComparisonDir receives the per-canto comparison pages. Relative to
	// Root.
	ComparisonDir string `yaml:"comparison_dir"`

	// ExcludeDirs lists directories under Root that are not models.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Span is the number of verses covered by one query.
	Span int `yaml:"span"`

	// KeepSearch keeps the search word column in printed rows. Nil means true.
	KeepSearch *bool `yaml:"keep_search"`

	// Backups keeps a sidecar copy of every rewritten query file.
	Backups *bool `yaml:"backups"`

	// IndexPath is the SQLite alignment index.
	IndexPath string `yaml:"index_path"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// CLI-level options (not persisted to config files).

	// Jobs specifies the number of parallel workers (0 = GOMAXPROCS).
	Jobs int `yaml:"-"`

	// Color is auto, always or never.
	Color string `yaml:"-"`

	// Format specifies the report format.
	Format OutputFormat `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	keep := true
	backups := false
	return &Config{
		Root:          ".",
		Canticas:      DefaultCanticas(),
		TokenizeDir:   DefaultTokenizeDir,
		ComparisonDir: DefaultComparisonDir,
		ExcludeDirs:   []string{DefaultTokenizeDir, DefaultComparisonDir},
		Span:          DefaultSpan,
		KeepSearch:    &keep,
		Backups:       &backups,
		IndexPath:     DefaultIndexPath,
		LogLevel:      DefaultLogLevel,
		Color:         ColorAuto,
		Format:        FormatText,
	}
}

// KeepSearchEnabled reports whether printed rows keep the search word.
func (c *Config) KeepSearchEnabled() bool {
	return c.KeepSearch == nil || *c.KeepSearch
}

// BackupsEnabled reports whether rewritten files get a sidecar backup.
func (c *Config) BackupsEnabled() bool {
	return c.Backups != nil && *c.Backups
}

// TokenizePath returns TokenizeDir resolved against Root.
func (c *Config) TokenizePath() string {
	if c.TokenizeDir == "" || filepath.IsAbs(c.TokenizeDir) {
		return c.TokenizeDir
	}
	return filepath.Join(c.Root, c.TokenizeDir)
}
