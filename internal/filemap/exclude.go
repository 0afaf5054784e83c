package filemap

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/popsite/internal/config"
)

// Excluder decides which root-relative paths are left out of a build.
type Excluder struct {
	patterns []*regexp.Regexp
	dotFiles bool
	output   string // root-relative output dir; empty when output lives outside root
}

// NewExcluder compiles the exclusion rules of cfg.
func NewExcluder(cfg *config.Config) (*Excluder, error) {
	e := &Excluder{dotFiles: !cfg.IncludeDotFiles}
	for _, p := range cfg.Exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrBadPattern, p, err)
		}
		e.patterns = append(e.patterns, re)
	}
	if rel, err := filepath.Rel(cfg.Root, cfg.OutputDir()); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		e.output = filepath.ToSlash(rel)
	}
	return e, nil
}

// Excluded reports whether rel must not appear in a walk result.
// Patterns are matched against "/"+rel.
func (e *Excluder) Excluded(rel string) bool {
	if e.insideOutput(rel) {
		return true
	}
	if e.dotFiles && hasDotSegment(rel) {
		return true
	}
	slashed := "/" + rel
	for _, re := range e.patterns {
		if re.MatchString(slashed) {
			return true
		}
	}
	return false
}

// Prune reports whether a directory's whole subtree is excluded, so it need not be read.
// Pattern matches never prune: a directory matching a pattern may hold entries that do not.
func (e *Excluder) Prune(rel string) bool {
	return e.insideOutput(rel) || (e.dotFiles && hasDotSegment(rel))
}

func (e *Excluder) insideOutput(rel string) bool {
	return e.output != "" && (rel == e.output || strings.HasPrefix(rel, e.output+"/"))
}

func hasDotSegment(rel string) bool {
	for _, s := range strings.Split(rel, "/") {
		if strings.HasPrefix(s, ".") && s != "." {
			return true
		}
	}
	return false
}
