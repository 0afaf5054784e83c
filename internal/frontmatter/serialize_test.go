package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeYAML_EmptyMap_ReturnsEmpty(t *testing.T) {
	out, err := SerializeYAML(map[string]any{}, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSerializeYAML_DeterministicOrder(t *testing.T) {
	fields := map[string]any{"b": "two", "a": "one", "c": 3, "outer": map[string]any{"z": 1, "y": 2}}

	out1, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	out2, err := SerializeYAML(fields, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, string(out1), string(out2))
	require.Equal(t, "a: one\nb: two\nc: 3\nouter:\n  y: 2\n  z: 1\n", string(out1))
}

func TestSerializeYAML_NewlineStyle_CRLF(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"a": "one"}, Style{Newline: "\r\n"})
	require.NoError(t, err)
	require.Equal(t, "a: one\r\n", string(out))
}

func TestMarshal_OrdersTypedFieldsFirst(t *testing.T) {
	meta := Meta{
		Title:  "Awesome Post",
		Layout: "post",
		Author: "alex",
		Tags:   []string{"tag_1", "tag_2"},
		Extra:  map[string]any{"draft": true},
	}
	out, err := Marshal(meta, Style{Newline: "\n"})
	require.NoError(t, err)
	require.Equal(t, "---\nlayout: post\ntitle: Awesome Post\nauthor: alex\ntags:\n  - tag_1\n  - tag_2\ndraft: true\n---\n", string(out))

	parsed, body, err := Parse(out)
	require.NoError(t, err)
	require.Empty(t, body)
	require.Equal(t, meta.Title, parsed.Title)
	require.Equal(t, meta.Tags, parsed.Tags)
	require.Equal(t, true, parsed.Extra["draft"])
}
