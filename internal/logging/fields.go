// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWritten    = "written"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Run fields.
	FieldJobs   = "jobs"
	FieldFormat = "format"
	FieldUnit   = "unit"
	FieldUnits  = "units"

	// Resolver fields.
	FieldKind       = "kind"
	FieldLine       = "line"
	FieldCol        = "col"
	FieldSamples    = "samples"
	FieldStart      = "start"
	FieldLast       = "last"
	FieldSuccessor  = "successor"
	FieldCandidates = "candidates"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldExtents         = "extents"
	FieldFailed          = "failed"
	FieldApproximate     = "approximate"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
