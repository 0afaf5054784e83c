package plugin

import (
	"maps"
	"slices"
	"sync"
	"text/template"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
)

// Factory builds a plugin from its options block in the site config.
type Factory func(options map[string]any) (Plugin, error)

// Catalog maps plugin names to the factories compiled into the binary.
type Catalog map[string]Factory

// Names returns the catalog entries, sorted.
func (c Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

type entry[F any] struct {
	name string
	fn   F
}

// ordered is a name-keyed table that remembers first-insertion order.
type ordered[F any] struct {
	entries []entry[F]
	index   map[string]int
}

func (o *ordered[F]) set(name string, fn F) {
	if o.index == nil {
		o.index = map[string]int{}
	}
	if i, ok := o.index[name]; ok {
		o.entries[i].fn = fn
		return
	}
	o.index[name] = len(o.entries)
	o.entries = append(o.entries, entry[F]{name: name, fn: fn})
}

func (o *ordered[F]) get(name string) (F, bool) {
	var zero F
	i, ok := o.index[name]
	if !ok {
		return zero, false
	}
	return o.entries[i].fn, true
}

func (o *ordered[F]) names() []string {
	out := make([]string, len(o.entries))
	for i, e := range o.entries {
		out[i] = e.name
	}
	return out
}

// Registry is the merged helper and filter tables for one builder. It is
// filled before a build starts and only read afterwards.
type Registry struct {
	mu          sync.RWMutex
	plugins     []string
	helpers     ordered[Helper]
	filters     ordered[Filter]
	postFilters ordered[Filter]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry holding the built-in helpers and filters.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Builtin())
	return r
}

// Register merges p into the registry. Entries whose names already exist are
// replaced in place.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	merge(&r.helpers, p.Helpers())
	merge(&r.filters, p.Filters())
	merge(&r.postFilters, p.PostFilters())
	r.plugins = append(r.plugins, p.Name())
}

func merge[F any](dst *ordered[F], src map[string]F) {
	for _, name := range slices.Sorted(maps.Keys(src)) {
		dst.set(name, src[name])
	}
}

// Load instantiates the named plugins from catalog, in order, and registers
// them. Any missing or failing plugin aborts the load with a fatal error.
func (r *Registry) Load(catalog Catalog, names []string, options map[string]map[string]any) error {
	for _, name := range names {
		factory, ok := catalog[name]
		if !ok {
			return foundationerrors.WrapError(stepError(name, "load", ErrUnknownPlugin),
				foundationerrors.CategoryPlugin, "failed to load plugin").
				Fatal().WithContext("plugin", name).Build()
		}
		p, err := factory(options[name])
		if err != nil {
			return foundationerrors.WrapError(stepError(name, "init", err),
				foundationerrors.CategoryPlugin, "failed to load plugin").
				Fatal().WithContext("plugin", name).Build()
		}
		r.Register(p)
	}
	return nil
}

// Plugins returns the names of registered plugins in registration order.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.plugins)
}

// Helper returns a helper by name.
func (r *Registry) Helper(name string) (Helper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.helpers.get(name)
}

// HelperNames returns helper names in registration order.
func (r *Registry) HelperNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.helpers.names()
}

// FilterNames returns filter names in the order they run.
func (r *Registry) FilterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filters.names()
}

// PostFilterNames returns post-filter names in the order they run.
func (r *Registry) PostFilterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.postFilters.names()
}

// ApplyFilters runs every filter over text, in order.
func (r *Registry) ApplyFilters(rc *RenderContext, text string) (string, error) {
	return r.apply(&r.filters, "filter", rc, text)
}

// ApplyPostFilters runs every post-filter over text, in order.
func (r *Registry) ApplyPostFilters(rc *RenderContext, text string) (string, error) {
	return r.apply(&r.postFilters, "post-filter", rc, text)
}

func (r *Registry) apply(table *ordered[Filter], kind string, rc *RenderContext, text string) (string, error) {
	r.mu.RLock()
	entries := slices.Clone(table.entries)
	r.mu.RUnlock()

	var err error
	for _, e := range entries {
		text, err = e.fn(rc, text)
		if err != nil {
			return "", stepError(e.name, kind, err)
		}
	}
	return text, nil
}

// FuncMap binds every helper to rc for use by html/template and text/template.
func (r *Registry) FuncMap(rc *RenderContext) template.FuncMap {
	r.mu.RLock()
	defer r.mu.RUnlock()

	funcs := make(template.FuncMap, len(r.helpers.entries))
	for _, e := range r.helpers.entries {
		h := e.fn
		funcs[e.name] = func(args ...any) (any, error) {
			return h(rc, args...)
		}
	}
	return funcs
}
