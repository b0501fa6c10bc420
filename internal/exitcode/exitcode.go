package exitcode

import (
	stderrors "errors"
	"os"

	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ValidationFailed indicates a schema or reference validation failure
	ValidationFailed = 3

	// DriftDetected indicates configuration drift was found
	DriftDetected = 4

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates a connectivity issue with the gateway or Konnect
	NetworkError = 6

	// PartialSync indicates the primary write succeeded but the mirror failed
	PartialSync = 7

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// CodedError pins an exact exit code to an error. Used for outcomes that
// are not failures of a single operation, like detected drift or a
// partial sync.
type CodedError struct {
	Code    int
	Message string
}

func (e *CodedError) Error() string {
	return e.Message
}

// WithCode wraps a message in a CodedError.
func WithCode(code int, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var coded *CodedError
	if stderrors.As(err, &coded) {
		return coded.Code
	}

	switch {
	case errors.IsCode(err, errors.ErrCodeSchemaInvalid),
		errors.IsCode(err, errors.ErrCodeReferenceMissing),
		errors.IsCode(err, errors.ErrCodeMergedStateInvalid),
		errors.IsCode(err, errors.ErrCodeConflictUnresolved),
		errors.IsCode(err, errors.ErrCodeMergeStateMissing):
		return ValidationFailed

	case errors.IsCode(err, errors.ErrCodeGatewayAuth),
		errors.IsCode(err, errors.ErrCodeKonnectAuth):
		return AuthError

	case errors.IsCode(err, errors.ErrCodeGatewayUnreachable),
		errors.IsCode(err, errors.ErrCodeKonnectUnreachable):
		return NetworkError
	}

	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ValidationFailed:
		return "Validation failed"
	case DriftDetected:
		return "Configuration drift detected"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case PartialSync:
		return "Partial sync (primary updated, mirror failed)"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
