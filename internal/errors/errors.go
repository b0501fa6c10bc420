package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Connection errors (CONN-001 to CONN-099)
	ErrCodeGatewayUnreachable ErrorCode = "CONN-001"
	ErrCodeKonnectUnreachable ErrorCode = "CONN-002"

	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeGatewayAuth ErrorCode = "AUTH-001"
	ErrCodeKonnectAuth ErrorCode = "AUTH-002"

	// Lookup errors (NOTFOUND-001 to NOTFOUND-099)
	ErrCodeEntityNotFound ErrorCode = "NOTFOUND-001"

	// Validation errors (VALIDATION-001 to VALIDATION-099)
	ErrCodeSchemaInvalid      ErrorCode = "VALIDATION-001"
	ErrCodeReferenceMissing   ErrorCode = "VALIDATION-002"
	ErrCodeMergedStateInvalid ErrorCode = "VALIDATION-003"

	// Conflict errors (CONFLICT-001 to CONFLICT-099)
	ErrCodeConflictUnresolved ErrorCode = "CONFLICT-001"
	ErrCodeMergeStateMissing  ErrorCode = "CONFLICT-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound   ErrorCode = "IO-001"
	ErrCodeFileReadFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal  ErrorCode = "IO-003"
	ErrCodeFileMarshal    ErrorCode = "IO-004"

	// History store errors (HISTORY-001 to HISTORY-099)
	ErrCodeHistoryStore ErrorCode = "HISTORY-001"
)

// OpsError represents an enhanced error with code, suggestions, and a cause
type OpsError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *OpsError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *OpsError) Unwrap() error {
	return e.Cause
}

// New creates a new OpsError
func New(code ErrorCode, message string) *OpsError {
	return &OpsError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new OpsError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *OpsError {
	return &OpsError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *OpsError) WithSuggestion(suggestion string) *OpsError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *OpsError) WithSuggestions(suggestions ...string) *OpsError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// IsCode reports whether err (or any error it wraps) carries the given code
func IsCode(err error, code ErrorCode) bool {
	var opsErr *OpsError
	for stderrors.As(err, &opsErr) {
		if opsErr.Code == code {
			return true
		}
		err = opsErr.Cause
		opsErr = nil
	}
	return false
}

// IsNotFound reports whether err is an entity-not-found error.
// Client lookups use this to distinguish absence from real failures.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeEntityNotFound)
}

// Common error constructors for frequently used errors

// NewGatewayUnreachableError creates a gateway connection error
func NewGatewayUnreachableError(addr string, cause error) *OpsError {
	return Wrap(ErrCodeGatewayUnreachable, fmt.Sprintf("gateway admin API unreachable: %s", addr), cause).
		WithSuggestion("Check that the gateway is running and the admin API is exposed").
		WithSuggestion("Verify the gateway address in your sysops config file")
}

// NewKonnectAuthError creates a Konnect authentication error
func NewKonnectAuthError(cause error) *OpsError {
	return Wrap(ErrCodeKonnectAuth, "Konnect rejected the provided credentials", cause).
		WithSuggestion("Set the SYSOPS_KONNECT_TOKEN environment variable").
		WithSuggestion("Check that the token has not expired")
}

// NewEntityNotFoundError creates an entity lookup error
func NewEntityNotFoundError(entityType, nameOrID string) *OpsError {
	return New(ErrCodeEntityNotFound, fmt.Sprintf("%s not found: %s", entityType, nameOrID))
}

// NewConflictUnresolvedError creates the fatal apply-gate error
func NewConflictUnresolvedError(count int) *OpsError {
	return New(ErrCodeConflictUnresolved, fmt.Sprintf("%d conflict(s) have no resolution; apply refused", count)).
		WithSuggestion("Run with --interactive to resolve each conflict").
		WithSuggestion("Use --strategy to apply one action to all remaining conflicts")
}

// NewMergeStateMissingError creates the invalid-MERGE-resolution error
func NewMergeStateMissingError(entityID string) *OpsError {
	return New(ErrCodeMergeStateMissing, fmt.Sprintf("MERGE resolution for %s has no merged state", entityID)).
		WithSuggestion("Populate the merged state via the merge engine or a manual edit before applying")
}

// NewFileUnmarshalError creates a config parse error
func NewFileUnmarshalError(path string, format string, cause error) *OpsError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
