package plugin

import (
	"errors"
	"fmt"
)

// ErrUnknownPlugin is returned when a required plugin is not in the catalog.
var ErrUnknownPlugin = errors.New("unknown plugin")

// PluginError names the plugin or filter behind a failure and the step that failed:
// "load", "init", "filter" or "post-filter".
type PluginError struct {
	Name string
	Step string
	Err  error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Step, e.Name, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }

func stepError(name, step string, err error) *PluginError {
	return &PluginError{Name: name, Step: step, Err: err}
}
