// Package frontmatter splits and decodes the `---` delimited metadata block at
// the top of posts and templated files.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a front matter block but never closed it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Style records the newline convention of a document.
type Style struct {
	Newline string
}

// Split separates the front matter block from the body.
//
// A document has front matter when its first line is exactly `---`; the block
// ends at the next line that is exactly `---` (which may be the last line of the
// file). Without an opening delimiter, had is false and body is the whole input.
func Split(content []byte) (front []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	nl := style.Newline
	if !bytes.HasPrefix(content, []byte("---"+nl)) {
		return nil, content, false, style, nil
	}
	rest := content[len("---"+nl):]

	// Closing delimiter as the very first line: empty block.
	if bytes.HasPrefix(rest, []byte("---"+nl)) {
		return []byte{}, rest[len("---"+nl):], true, style, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, style, nil
	}

	if idx := bytes.Index(rest, []byte(nl+"---"+nl)); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(nl+"---"+nl):], true, style, nil
	}
	if bytes.HasSuffix(rest, []byte(nl+"---")) {
		return rest[:len(rest)-len("---")], []byte{}, true, style, nil
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// Join reassembles a document from raw front matter and body.
// If had is false, Join returns body as-is.
func Join(front []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	delim := []byte("---" + nl)

	out := make([]byte, 0, 2*len(delim)+len(front)+len(body))
	out = append(out, delim...)
	out = append(out, front...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// ParseYAML parses a raw front matter block (without delimiters) into a map.
func ParseYAML(front []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(front)) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(front, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits content and decodes its front matter into Meta.
// A document without front matter yields an empty Meta and the whole input as body.
func Parse(content []byte) (Meta, []byte, error) {
	front, body, had, _, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	if !had {
		return Meta{Extra: map[string]any{}}, body, nil
	}
	fields, err := ParseYAML(front)
	if err != nil {
		return Meta{}, nil, err
	}
	meta, err := Decode(fields)
	if err != nil {
		return Meta{}, nil, err
	}
	return meta, body, nil
}

func detectStyle(content []byte) Style {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}
