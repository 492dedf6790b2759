package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldFiles  = "files"
	FieldOutput = "output"
	FieldJobs   = "jobs"

	// Query fields.
	FieldModel  = "model"
	FieldInfo   = "info"
	FieldKey    = "key"
	FieldReason = "reason"
	FieldCount  = "count"

	// Alignment fields.
	FieldKind     = "kind"
	FieldLine     = "line"
	FieldWord     = "word"
	FieldEvidence = "evidence"
	FieldPlaced   = "placed"
	FieldDropped  = "dropped"

	// Index fields.
	FieldRun       = "run"
	FieldIngested  = "ingested"
	FieldUnchanged = "unchanged"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
