package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents malformed or incomplete configuration input.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryLinks represents unresolvable internal link targets.
	CategoryLinks     ErrorCategory = "links"
	CategoryIntegrity ErrorCategory = "integrity"

	// CategoryNetwork represents external system errors.
	CategoryNetwork    ErrorCategory = "network"
	CategoryGit        ErrorCategory = "git"
	CategoryFileSystem ErrorCategory = "filesystem"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorCode pinpoints the concrete failure inside a category.
type ErrorCode string

const (
	CodeNone              ErrorCode = ""
	CodeMissingField      ErrorCode = "missing_field"
	CodeInvalidURL        ErrorCode = "invalid_url"
	CodeMalformedNavItem  ErrorCode = "malformed_nav_item"
	CodeBrokenLink        ErrorCode = "broken_link"
	CodeIntegrityMismatch ErrorCode = "integrity_mismatch"
	CodeInvalidIntegrity  ErrorCode = "invalid_integrity"
	CodeInvalidValue      ErrorCode = "invalid_value"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RetryStrategy indicates how an error should be handled in retry scenarios.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user"
)

// Well-known context keys.
const (
	ContextField  = "field"
	ContextValue  = "value"
	ContextTarget = "target"
	ContextSource = "source"
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}

func (c ErrorContext) clone() ErrorContext {
	return c.Merge(nil)
}
