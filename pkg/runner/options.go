// Package runner discovers query files and processes them concurrently.
package runner

// Options controls query file discovery.
type Options struct {
	// Paths are the user-specified paths (files or directories) to process.
	// If empty, defaults to the working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered query files. Defaults to DefaultExtensions().
	Extensions []string

	// Canticas restricts discovery to files laid out as
	// <model>/<cantica>/<nn><ext>. Empty accepts any layout.
	Canticas []string

	// ExcludeGlobs are glob patterns, relative to WorkingDir, used to skip
	// files or directories, e.g. "comparison/**".
	ExcludeGlobs []string
}

// DefaultExtensions returns the default query file extensions.
func DefaultExtensions() []string {
	return []string{".xml"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
