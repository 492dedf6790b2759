package config

import (
	"bytes"
	"fmt"
	"strings"
)

// TemplateHeader opens every generated configuration file.
const TemplateHeader = "# dantetool configuration\n"

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its current value. Otherwise the
	// settings are written as comments.
	Full bool
}

// GenerateTemplate creates a configuration file template from cfg. A nil
// cfg uses the defaults.
func GenerateTemplate(cfg *Config, opts TemplateOptions) ([]byte, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	if opts.Full {
		return cfg.ToYAMLWithHeader(TemplateHeader)
	}

	var buf bytes.Buffer
	buf.WriteString(TemplateHeader)
	buf.WriteString("\n")

	entries := []struct {
		comment string
		key     string
		value   string
	}{
		{"Directory holding one subdirectory per model", "root", cfg.Root},
		{"Cantica directories", "canticas", yamlList(cfg.Canticas)},
		{"Tokenized reference, <dir>/<cantica>/<nn>.txt", "tokenize_dir", cfg.TokenizeDir},
		{"Output of the compare command", "comparison_dir", cfg.ComparisonDir},
		{"Directories under root that are not models", "exclude_dirs", yamlList(cfg.ExcludeDirs)},
		{"Verses per query", "span", fmt.Sprint(cfg.Span)},
		{"Keep the search word column in printed rows", "keep_search", fmt.Sprint(cfg.KeepSearchEnabled())},
		{"Back up query files before rewriting them", "backups", fmt.Sprint(cfg.BackupsEnabled())},
		{"SQLite alignment index", "index_path", cfg.IndexPath},
		{"Log level: debug, info, warn or error", "log_level", cfg.LogLevel},
	}

	for _, e := range entries {
		fmt.Fprintf(&buf, "# %s\n", e.comment)
		if strings.HasPrefix(e.value, "\n") {
			fmt.Fprintf(&buf, "# %s:%s\n\n", e.key, strings.ReplaceAll(e.value, "\n", "\n# "))
			continue
		}
		fmt.Fprintf(&buf, "# %s: %s\n\n", e.key, e.value)
	}

	return append(bytes.TrimRight(buf.Bytes(), "\n"), '\n'), nil
}

func yamlList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("\n  - ")
		sb.WriteString(item)
	}
	return sb.String()
}
