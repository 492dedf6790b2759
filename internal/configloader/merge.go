package configloader

import "github.com/yaklabco/dantetool/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The result shares no memory with either input.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer booleans: override overwrites base if override is non-nil
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override.Clone()
	}
	if override == nil {
		return base.Clone()
	}

	result := base.Clone()

	if override.Root != "" {
		result.Root = override.Root
	}
	if override.TokenizeDir != "" {
		result.TokenizeDir = override.TokenizeDir
	}
	if override.ComparisonDir != "" {
		result.ComparisonDir = override.ComparisonDir
	}
	if override.IndexPath != "" {
		result.IndexPath = override.IndexPath
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Span != 0 {
		result.Span = override.Span
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Format != "" {
		result.Format = override.Format
	}

	// Nil means unset; false is a real value.
	if override.KeepSearch != nil {
		keep := *override.KeepSearch
		result.KeepSearch = &keep
	}
	if override.Backups != nil {
		backups := *override.Backups
		result.Backups = &backups
	}

	if override.Canticas != nil {
		result.Canticas = append([]string(nil), override.Canticas...)
	}
	if override.ExcludeDirs != nil {
		result.ExcludeDirs = append([]string(nil), override.ExcludeDirs...)
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0].Clone()
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
