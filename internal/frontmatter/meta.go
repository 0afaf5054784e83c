package frontmatter

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Reserved front matter keys decoded into Meta's typed fields.
const (
	KeyTitle      = "title"
	KeyLayout     = "layout"
	KeyTags       = "tags"
	KeyCategories = "categories"
	KeyPaginate   = "paginate"
	KeySummary    = "summary"
	KeyAuthor     = "author"
)

// Meta is decoded front matter: the keys the build understands plus every other key in Extra.
type Meta struct {
	Title    string
	Layout   string
	Tags     []string
	Paginate bool
	Summary  string
	Author   string
	Extra    map[string]any
}

// Decode converts a parsed front matter map into Meta. `categories` is used as
// tags when `tags` is absent.
func Decode(fields map[string]any) (Meta, error) {
	m := Meta{Extra: map[string]any{}}
	var err error
	for k, v := range fields {
		switch k {
		case KeyTitle:
			m.Title, err = scalar(k, v)
		case KeyLayout:
			m.Layout, err = scalar(k, v)
		case KeySummary:
			m.Summary, err = scalar(k, v)
		case KeyAuthor:
			m.Author, err = scalar(k, v)
		case KeyPaginate:
			m.Paginate, err = boolean(k, v)
		case KeyTags:
			m.Tags, err = stringList(k, v)
		case KeyCategories:
			if _, hasTags := fields[KeyTags]; !hasTags {
				m.Tags, err = stringList(k, v)
			}
			m.Extra[k] = v
		default:
			m.Extra[k] = v
		}
		if err != nil {
			return Meta{}, err
		}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m, nil
}

// Get looks a key up across typed fields and Extra.
func (m Meta) Get(key string) (any, bool) {
	switch key {
	case KeyTitle:
		return m.Title, m.Title != ""
	case KeyLayout:
		return m.Layout, m.Layout != ""
	case KeySummary:
		return m.Summary, m.Summary != ""
	case KeyAuthor:
		return m.Author, m.Author != ""
	case KeyPaginate:
		return m.Paginate, m.Paginate
	case KeyTags:
		return m.Tags, len(m.Tags) > 0
	}
	v, ok := m.Extra[key]
	return v, ok
}

// Map flattens Meta back into a single map, typed fields taking precedence.
func (m Meta) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+6)
	maps.Copy(out, m.Extra)
	if m.Title != "" {
		out[KeyTitle] = m.Title
	}
	if m.Layout != "" {
		out[KeyLayout] = m.Layout
	}
	if m.Summary != "" {
		out[KeySummary] = m.Summary
	}
	if m.Author != "" {
		out[KeyAuthor] = m.Author
	}
	if m.Paginate {
		out[KeyPaginate] = true
	}
	out[KeyTags] = m.Tags
	return out
}

func scalar(key string, v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(vv), nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(vv), nil
	default:
		return "", fmt.Errorf("front matter %q must be a scalar, got %T", key, v)
	}
}

func boolean(key string, v any) (bool, error) {
	switch vv := v.(type) {
	case nil:
		return false, nil
	case bool:
		return vv, nil
	case int:
		return vv != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(vv))
		if err != nil {
			return false, fmt.Errorf("front matter %q must be a boolean: %w", key, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("front matter %q must be a boolean, got %T", key, v)
	}
}

func stringList(key string, v any) ([]string, error) {
	switch vv := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		var out []string
		for _, part := range strings.Split(vv, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, err := scalar(key, item)
			if err != nil {
				return nil, err
			}
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return append([]string{}, vv...), nil
	default:
		return nil, fmt.Errorf("front matter %q must be a list, got %T", key, v)
	}
}
