package filemap

import (
	"strings"

	"git.home.luguber.info/inful/popsite/internal/config"
)

// Classify derives an entry's kind from its root-relative slash path alone.
// A parent segment naming the posts directory wins over layouts, which wins over
// includes. Anything else with a template extension is templated; the rest is static.
func Classify(dirs config.DirsConfig, rel string, isDir bool) Kind {
	if isDir {
		return Kind{Class: ClassDirectory}
	}
	format := FormatOf(rel)

	segments := strings.Split(rel, "/")
	parents := segments[:len(segments)-1]
	switch {
	case hasSegment(parents, dirs.Posts):
		return Kind{Class: ClassPost, Format: format}
	case hasSegment(parents, dirs.Layouts):
		return Kind{Class: ClassLayout, Format: format}
	case hasSegment(parents, dirs.Includes):
		return Kind{Class: ClassInclude, Format: format}
	case format.Templated():
		return Kind{Class: ClassTemplated, Format: format}
	default:
		return Kind{Class: ClassStatic, Format: format}
	}
}

func hasSegment(segments []string, name string) bool {
	if name == "" {
		return false
	}
	for _, s := range segments {
		if s == name {
			return true
		}
	}
	return false
}
