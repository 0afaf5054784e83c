package frontmatter

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// headKeys are written first, in this order, by Marshal.
var headKeys = []string{KeyLayout, KeyTitle, KeyAuthor, KeyTags, KeyPaginate, KeySummary}

// SerializeYAML encodes fields without delimiters. yaml.v3 sorts map keys at
// every level, so the output is stable. An empty map encodes to nothing.
func SerializeYAML(fields map[string]any, style Style) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	return encode(fields, style)
}

// Marshal renders meta as a delimited front matter block: the typed fields
// in headKeys order, then Extra keys sorted.
func Marshal(meta Meta, style Style) ([]byte, error) {
	fields := meta.Map()
	if len(meta.Tags) == 0 {
		delete(fields, KeyTags)
	}

	keys := slices.DeleteFunc(slices.Clone(headKeys), func(k string) bool {
		_, ok := fields[k]
		return !ok
	})
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		if !slices.Contains(headKeys, k) {
			keys = append(keys, k)
		}
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		var v yaml.Node
		if err := v.Encode(fields[k]); err != nil {
			return nil, fmt.Errorf("front matter field %q: %w", k, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &v)
	}
	body, err := encode(doc, style)
	if err != nil {
		return nil, err
	}
	return Join(body, nil, true, style), nil
}

func encode(v any, style Style) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if style.Newline != "" && style.Newline != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(style.Newline))
	}
	return out, nil
}
