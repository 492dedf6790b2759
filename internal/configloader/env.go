package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/dantetool/pkg/config"
)

// envVarPrefix is the prefix for all dantetool environment variables.
const envVarPrefix = "DANTETOOL_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"ROOT":           {field: "root", typ: envTypeString, help: "Directory holding the model directories"},
	"CANTICAS":       {field: "canticas", typ: envTypeSlice, help: "Comma-separated cantica directory names"},
	"TOKENIZE_DIR":   {field: "tokenize_dir", typ: envTypeString, help: "Tokenized reference directory"},
	"COMPARISON_DIR": {field: "comparison_dir", typ: envTypeString, help: "Comparison output directory"},
	"EXCLUDE_DIRS":   {field: "exclude_dirs", typ: envTypeSlice, help: "Comma-separated directories that are not models"},
	"SPAN":           {field: "span", typ: envTypeInt, help: "Verses per query"},
	"KEEP_SEARCH":    {field: "keep_search", typ: envTypeBool, help: "Keep the search word column in printed rows: true or false"},
	"BACKUPS":        {field: "backups", typ: envTypeBool, help: "Back up query files before rewriting: true or false"},
	"INDEX_PATH":     {field: "index_path", typ: envTypeString, help: "SQLite alignment index"},
	"LOG_LEVEL":      {field: "log_level", typ: envTypeString, help: "Log level: debug, info, warn or error"},
	"JOBS":           {field: "jobs", typ: envTypeInt, help: "Number of parallel workers (0 = auto)"},
	"COLOR":          {field: "color", typ: envTypeString, help: "Color output: auto, always or never"},
	"FORMAT":         {field: "format", typ: envTypeString, help: "Report format: text, json or summary"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with DANTETOOL_ (e.g., DANTETOOL_SPAN).
func LoadFromEnv(cfg *config.Config) error {
	return loadFromLookup(cfg, os.LookupEnv)
}

func loadFromLookup(cfg *config.Config, lookup func(string) (string, bool)) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value, ok := lookup(envVar)
		if !ok || value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "root":
		cfg.Root = value
	case "tokenize_dir":
		cfg.TokenizeDir = value
	case "comparison_dir":
		cfg.ComparisonDir = value
	case "index_path":
		cfg.IndexPath = value
	case "log_level":
		cfg.LogLevel = value
	case "color":
		cfg.Color = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "keep_search":
		cfg.KeepSearch = &value
	case "backups":
		cfg.Backups = &value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "span":
		cfg.Span = value
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "canticas":
		cfg.Canticas = value
	case "exclude_dirs":
		cfg.ExcludeDirs = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name string
	Help string
}

// ListEnvVars returns all supported environment variables sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Help: mapping.help})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
