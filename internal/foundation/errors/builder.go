package errors

import "fmt"

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	code     ErrorCode
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.cause = err
	return b
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithRetry sets the retry strategy.
func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.retry = strategy
	return b
}

// WithCode sets the concrete failure code.
func (b *ErrorBuilder) WithCode(code ErrorCode) *ErrorBuilder {
	b.code = code
	return b
}

// WithCause attaches an underlying error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// WithField records the configuration path the error refers to.
func (b *ErrorBuilder) WithField(path string) *ErrorBuilder {
	return b.WithContext(ContextField, path)
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder { return b.WithSeverity(SeverityFatal) }

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Retryable sets the retry strategy to backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }

// UserAction sets the retry strategy to require user action.
func (b *ErrorBuilder) UserAction() *ErrorBuilder { return b.WithRetry(RetryUserAction) }

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		retry:    b.retry,
		code:     b.code,
		message:  b.message,
		cause:    b.cause,
		context:  b.context.clone(),
	}
}

// Convenience constructors for common error patterns

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal().UserAction()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal().UserAction()
}

// MissingField reports an absent required configuration field.
func MissingField(path string) *ErrorBuilder {
	return ConfigError("missing required field").WithCode(CodeMissingField).WithField(path)
}

// InvalidURL reports a url, path or link target that does not parse.
func InvalidURL(path, value string) *ErrorBuilder {
	return ConfigError("invalid url").WithCode(CodeInvalidURL).WithField(path).WithContext(ContextValue, value)
}

// MalformedNavItem reports a navigation entry whose variant cannot be determined.
func MalformedNavItem(path, reason string) *ErrorBuilder {
	return ConfigError("malformed nav item: "+reason).WithCode(CodeMalformedNavItem).WithField(path)
}

// BrokenLink reports an internal target that does not resolve to a known route.
func BrokenLink(source, target string) *ErrorBuilder {
	return NewError(CategoryLinks, fmt.Sprintf("broken link %q in %s", target, source)).Fatal().UserAction().
		WithCode(CodeBrokenLink).
		WithContext(ContextSource, source).
		WithContext(ContextTarget, target)
}

// IntegrityMismatch reports fetched content whose digest differs from its declared integrity.
func IntegrityMismatch(href string) *ErrorBuilder {
	return NewError(CategoryIntegrity, "integrity mismatch").Fatal().
		WithCode(CodeIntegrityMismatch).
		WithContext(ContextTarget, href)
}

// NetworkError creates a network error (typically retryable).
func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message).Retryable()
}

// GitError creates a git metadata error.
func GitError(message string) *ErrorBuilder {
	return NewError(CategoryGit, message)
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Retryable()
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
