package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/dantetool/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "span").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText:    true,
	config.FormatJSON:    true,
	config.FormatSummary: true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownColors = map[string]bool{
	config.ColorAuto:   true,
	config.ColorAlways: true,
	config.ColorNever:  true,
}

//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// knownCanticas are the cantica names of the Commedia.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownCanticas = map[string]bool{
	"inferno":    true,
	"purgatorio": true,
	"paradiso":   true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	addErr := func(field string, value any, msg string) {
		result.Errors = append(result.Errors, ValidationError{Field: field, Value: value, Message: msg})
	}

	if cfg.Format != "" && !knownFormats[cfg.Format] {
		addErr("format", cfg.Format,
			fmt.Sprintf("invalid format %q; must be one of: text, json, summary", cfg.Format))
	}

	if cfg.Color != "" && !knownColors[cfg.Color] {
		addErr("color", cfg.Color,
			fmt.Sprintf("invalid color mode %q; must be one of: auto, always, never", cfg.Color))
	}

	if cfg.LogLevel != "" && !knownLogLevels[strings.ToLower(cfg.LogLevel)] {
		addErr("log_level", cfg.LogLevel,
			fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Jobs < 0 {
		addErr("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	if cfg.Span < 0 {
		addErr("span", cfg.Span, "span must be >= 1")
	}

	validateCanticas(cfg, result)
	validateExcludeDirs(cfg, result)

	return result
}

func validateCanticas(cfg *config.Config, result *ValidationResult) {
	for i, c := range cfg.Canticas {
		if !knownCanticas[c] {
			result.Warnings = append(result.Warnings, ValidationError{
				Field:   fmt.Sprintf("canticas[%d]", i),
				Value:   c,
				Message: fmt.Sprintf("unknown cantica %q; compare and index will reject it", c),
			})
		}
	}
}

// validateExcludeDirs rejects entries that would escape the model root.
func validateExcludeDirs(cfg *config.Config, result *ValidationResult) {
	for i, dir := range cfg.ExcludeDirs {
		if dir == "" || filepath.IsAbs(dir) || strings.HasPrefix(filepath.Clean(dir), "..") {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("exclude_dirs[%d]", i),
				Value:   dir,
				Message: "exclude_dirs entries must be relative to root",
			})
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}
