package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/pyextent/pkg/runner"
)

// Exit codes for pyextent.
const (
	// ExitSuccess indicates every selected extent was resolved.
	ExitSuccess = 0

	// ExitUnresolved indicates some extent, unit or file failed. In strict
	// mode approximate extents count as failures.
	ExitUnresolved = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrUnresolvedExtents is returned when a run had failures. It only
	// signals the exit code; the report already describes the failures.
	ErrUnresolvedExtents = errors.New("unresolved extents")

	// ErrInvalidUsage marks flag and argument errors.
	ErrInvalidUsage = errors.New("invalid usage")

	// ErrInvalidConfig marks configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ExitCodeFromResult determines the exit code of a resolve run.
func ExitCodeFromResult(result *runner.Result) int {
	if result.HasFailures() {
		return ExitUnresolved
	}
	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var pathErr *fs.PathError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrUnresolvedExtents):
		return ExitUnresolved
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.As(err, &pathErr):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
