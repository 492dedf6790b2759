package cli

import (
	"errors"

	"github.com/yaklabco/dantetool/internal/configloader"
)

// Exit codes for dantetool.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitValidationFailed indicates that tables failed validation or that
	// an alignment dropped rows under --strict.
	ExitValidationFailed = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70
)

var (
	// ErrValidationFailed is returned when a command completed but found
	// tables that need attention. It only selects the exit code.
	ErrValidationFailed = errors.New("validation failed")

	// ErrUsage wraps invalid arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig wraps configuration loading failures.
	ErrConfig = errors.New("configuration error")
)

// ExitCode maps the error returned by a command to the process exit code.
func ExitCode(err error) int {
	var vErr *configloader.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrValidationFailed):
		return ExitValidationFailed
	case errors.Is(err, ErrConfig), errors.As(err, &vErr):
		return ExitConfigError
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	default:
		return ExitInternalError
	}
}
