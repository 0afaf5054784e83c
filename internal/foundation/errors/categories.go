package errors

import "maps"

// ErrorCategory groups errors by the part of the site they come from.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryPlugin     ErrorCategory = "plugin"

	// Build categories.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryParse      ErrorCategory = "parse"
	CategoryRender     ErrorCategory = "render"
	CategoryFeed       ErrorCategory = "feed"
	CategoryHistory    ErrorCategory = "history"

	CategoryWatch    ErrorCategory = "watch"
	CategoryNetwork  ErrorCategory = "network"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity is how much of a build an error takes down.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the build
	SeverityError   ErrorSeverity = "error"   // loses the current unit
	SeverityWarning ErrorSeverity = "warning" // unit skipped on purpose
)

// ErrorContext is extra structured data attached to an error.
type ErrorContext map[string]any

// GetString returns the value stored under key if it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

func (c ErrorContext) with(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	maps.Copy(out, c)
	out[key] = value
	return out
}
