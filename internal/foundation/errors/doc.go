// Package errors holds the classified error type used across popsite.
//
// A ClassifiedError has a category and a severity. The category says which
// part of the site failed and picks the CLI exit code. The severity says how
// far the failure reaches: a fatal error stops the build, an error or warning
// only loses the unit that raised it.
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "cannot write output").
//		Fatal().
//		WithPath(dest).
//		WithPhase("render_posts").
//		Build()
package errors
