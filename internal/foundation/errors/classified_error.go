package errors

import (
	stderrors "errors"
	"fmt"
)

// Context keys set by WithPath and WithPhase.
const (
	ContextPath  = "path"
	ContextPhase = "phase"
)

// ClassifiedError is an error with a category, a severity and context.
type ClassifiedError struct {
	category  ErrorCategory
	severity  ErrorSeverity
	transient bool
	message   string
	cause     error
	context   ErrorContext
}

func (e *ClassifiedError) Error() string {
	s := fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
	if p := e.Path(); p != "" {
		s += " (" + p + ")"
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }
func (e *ClassifiedError) Context() ErrorContext   { return e.context }

// Path is the site-relative source path the error refers to, if any.
func (e *ClassifiedError) Path() string {
	p, _ := e.context.GetString(ContextPath)
	return p
}

// Phase is the build stage the error was raised in, if any.
func (e *ClassifiedError) Phase() string {
	p, _ := e.context.GetString(ContextPhase)
	return p
}

// WithContext returns a copy of e with key set.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	cp := *e
	cp.context = e.context.with(key, value)
	return &cp
}

// Is matches another ClassifiedError with the same category and message,
// so package-level sentinels work with errors.Is.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// CanRetry reports whether the failure was transient, such as running out of file descriptors.
func (e *ClassifiedError) CanRetry() bool { return e.transient }

func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCategory reports whether the first ClassifiedError in err's chain has category.
func HasCategory(err error, category ErrorCategory) bool {
	ce, ok := AsClassified(err)
	return ok && ce.category == category
}

// IsFatal reports whether err carries fatal severity. Unclassified errors are not fatal.
func IsFatal(err error) bool {
	ce, ok := AsClassified(err)
	return ok && ce.IsFatal()
}

// SeverityOf returns the severity of err, SeverityError when unclassified.
func SeverityOf(err error) ErrorSeverity {
	if ce, ok := AsClassified(err); ok {
		return ce.severity
	}
	return SeverityError
}
