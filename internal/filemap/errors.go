package filemap

import "errors"

var (
	// ErrBadPattern is returned when an exclusion pattern does not compile.
	ErrBadPattern = errors.New("invalid exclusion pattern")
	// ErrOutsideRoot is returned when a path does not live under the site root.
	ErrOutsideRoot = errors.New("path is outside the site root")
)
