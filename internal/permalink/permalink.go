// Package permalink turns post file names and titles into output URLs.
package permalink

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokens recognised in permalink patterns.
const (
	TokenYear  = ":year"
	TokenMonth = ":month"
	TokenDay   = ":day"
	TokenTitle = ":title"
)

// ErrBadFileName is returned when a post file name lacks the YYYY-MM-DD- prefix or has an impossible date.
var ErrBadFileName = errors.New("post file name must look like YYYY-MM-DD-title.ext")

var fileNameRe = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})-(.+)$`)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeRe     = regexp.MustCompile(`[/\\?#%"<>|*:]+`)
)

// Slugify lowercases s, strips diacritics and path-unsafe characters, and
// collapses each whitespace run into a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = unsafeRe.ReplaceAllString(s, "")
	return whitespaceRe.ReplaceAllString(s, "-")
}

// Resolve substitutes the tokens of pattern. The result has no leading or trailing slash.
func Resolve(pattern string, date time.Time, title string) string {
	r := strings.NewReplacer(
		TokenYear, fmt.Sprintf("%04d", date.Year()),
		TokenMonth, fmt.Sprintf("%02d", int(date.Month())),
		TokenDay, fmt.Sprintf("%02d", date.Day()),
		TokenTitle, Slugify(title),
	)
	return strings.Trim(path.Clean("/"+r.Replace(pattern)), "/")
}

// ParseFileName extracts the publish date and title slug from a post file name
// such as "2011-11-01-awesome-post.md". Dates are midnight UTC.
func ParseFileName(name string) (time.Time, string, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	m := fileNameRe.FindStringSubmatch(base)
	if m == nil {
		return time.Time{}, "", fmt.Errorf("%w: %s", ErrBadFileName, name)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, "", fmt.Errorf("%w: impossible date in %s", ErrBadFileName, name)
	}
	return date, m[4], nil
}

// PostFileName builds the source file name for a new post from the permalink
// pattern: date tokens are substituted, slashes become hyphens and the title
// slug plus extension takes the place of :title. Patterns without date tokens
// still get a date prefix so the name can be parsed back.
func PostFileName(pattern string, date time.Time, title, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	r := strings.NewReplacer(
		TokenYear, fmt.Sprintf("%04d", date.Year()),
		TokenMonth, fmt.Sprintf("%02d", int(date.Month())),
		TokenDay, fmt.Sprintf("%02d", date.Day()),
	)
	name := strings.TrimPrefix(r.Replace(pattern), "/")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.Replace(name, TokenTitle, Slugify(title)+"."+ext, 1)
	if !fileNameRe.MatchString(strings.TrimSuffix(name, "."+ext)) {
		name = date.Format("2006-01-02") + "-" + name
	}
	return name
}
