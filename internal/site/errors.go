package site

import "errors"

var (
	// ErrFullRebuildRequired is returned by Rebuild for layouts, includes and
	// directories, whose dependents cannot be tracked individually.
	ErrFullRebuildRequired = errors.New("change requires a full rebuild")

	// ErrLayoutNotFound is returned when a referenced layout has no source file.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrLayoutCycle is returned when layouts reference each other in a loop.
	ErrLayoutCycle = errors.New("layout cycle")
)
