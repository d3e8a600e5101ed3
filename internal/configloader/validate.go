package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/pyextent/pkg/config"
	"github.com/yaklabco/pyextent/pkg/pyast"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "trace.max_line_len").
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

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.MaxFileSize <= 0 {
		result.fail("max_file_size", cfg.MaxFileSize, "max_file_size must be > 0")
	}
	if cfg.Trace.MaxLineLen <= 0 {
		result.fail("trace.max_line_len", cfg.Trace.MaxLineLen, "max_line_len must be > 0")
	}
	if cfg.Line < 0 {
		result.fail("line", cfg.Line, "line must be >= 0 (0 means any line)")
	}
	if cfg.Line == 0 && cfg.Col > 0 {
		result.warn("col", cfg.Col, "col has no effect without line")
	}
	if cfg.Markdown.DetectUntagged && !cfg.Markdown.Enabled {
		result.warn("markdown.detect_untagged", true, "has no effect while markdown.enabled is false")
	}

	for i, name := range cfg.Resolve.Kinds {
		if _, ok := pyast.ParseKind(name); !ok {
			result.fail(fmt.Sprintf("resolve.kinds[%d]", i), name, "unknown node kind %q", name)
		}
	}

	for i, pattern := range cfg.Ignore {
		// filepath.Match returns an error only for malformed patterns.
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}

	return result
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
