package plugin

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Truncate cuts s to n characters, trims trailing space and appends suffix.
// Strings already within n are returned unchanged.
func Truncate(s string, n int, suffix string) string {
	r := []rune(s)
	if n < 0 || len(r) <= n {
		return s
	}
	return strings.TrimRightFunc(string(r[:n]), unicode.IsSpace) + suffix
}

// TruncateWords keeps the first n words of s and appends suffix.
func TruncateWords(s string, n int, suffix string) string {
	words := strings.Fields(s)
	if n < 0 || len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + suffix
}

// TruncateParagraphs keeps markup up to the close of the n-th paragraph and
// appends suffix. Input with n or fewer paragraphs is returned unchanged.
func TruncateParagraphs(s string, n int, suffix string) string {
	if n <= 0 {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	closed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return s
		}
		b.Write(z.Raw())
		if tt != html.EndTagToken {
			continue
		}
		if name, _ := z.TagName(); string(name) != "p" {
			continue
		}
		closed++
		if closed == n {
			if b.Len() >= len(s) {
				return s
			}
			return b.String() + suffix
		}
	}
}

// wordCount counts words in the text nodes of an HTML fragment.
func wordCount(fragment string) int {
	z := html.NewTokenizer(strings.NewReader(fragment))
	count := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return count
		case html.TextToken:
			count += len(strings.Fields(string(z.Text())))
		}
	}
}
