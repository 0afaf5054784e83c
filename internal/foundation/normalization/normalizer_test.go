package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type format string

const (
	formatText format = "text"
	formatJSON format = "json"
)

func newFormatNormalizer() *Normalizer[format] {
	return NewNormalizer(map[string]format{
		"text": formatText,
		"JSON": formatJSON,
	}, formatText)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newFormatNormalizer()

	tests := []struct {
		input    string
		expected format
	}{
		{"json", formatJSON},
		{"  Json ", formatJSON},
		{"TEXT", formatText},
		{"xml", formatText},
		{"", formatText},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := newFormatNormalizer()

	v, err := n.NormalizeWithError("JSON")
	require.NoError(t, err)
	require.Equal(t, formatJSON, v)

	_, err = n.NormalizeWithError("yaml")
	require.ErrorContains(t, err, `invalid value "yaml"`)
	require.Equal(t, []string{"json", "text"}, n.ValidKeys())
}
