// Package plugin holds the helper and filter registry consulted while rendering.
//
// A plugin contributes named helpers (callable from templates), filters (run
// on post and page source before rendering) and post-filters (run on every
// output before it is written). Registration order matters: a later plugin
// replaces an earlier entry of the same name in place, so filters keep running
// in first-registration order.
package plugin

import "maps"

// Helper is a template-callable function. Every helper receives the context
// of the file being rendered.
type Helper func(rc *RenderContext, args ...any) (any, error)

// Filter transforms text. Filters and post-filters share this shape.
type Filter func(rc *RenderContext, text string) (string, error)

// Plugin contributes helpers and filters. Within one plugin, entries are
// registered in name order.
type Plugin interface {
	Name() string
	Helpers() map[string]Helper
	Filters() map[string]Filter
	PostFilters() map[string]Filter
}

// Set is a Plugin assembled from plain maps.
type Set struct {
	ID      string
	Help    map[string]Helper
	Filt    map[string]Filter
	PostFil map[string]Filter
}

// Name returns the plugin name.
func (s *Set) Name() string { return s.ID }

// Helpers returns a copy of the helper table.
func (s *Set) Helpers() map[string]Helper { return maps.Clone(s.Help) }

// Filters returns a copy of the filter table.
func (s *Set) Filters() map[string]Filter { return maps.Clone(s.Filt) }

// PostFilters returns a copy of the post-filter table.
func (s *Set) PostFilters() map[string]Filter { return maps.Clone(s.PostFil) }
