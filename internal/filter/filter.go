package filter

import (
	"github.com/bamsammich/dirx/internal/fsys"
)

// Criteria holds the filters shared by every mask group of one listing.
type Criteria struct {
	Required fsys.Attr // all of these bits must be set
	Excluded fsys.Attr // none of these bits may be set
	MinSize  uint64    // files only; 0 = no bound
	MaxSize  uint64    // files only; 0 = no bound
}

// Matcher decides which directory entries belong in a listing.
type Matcher struct {
	patterns []fsys.Pattern
	raw      []string
	criteria Criteria
}

// NewMatcher compiles patterns (in order, duplicates kept) into a Matcher.
// An empty pattern list matches every name.
func NewMatcher(patterns []string, criteria Criteria) (*Matcher, error) {
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	m := &Matcher{raw: patterns, criteria: criteria}
	for _, p := range patterns {
		cp, err := fsys.CompilePattern(p)
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, cp)
	}
	return m, nil
}

// Patterns returns the masks the matcher was built from.
func (m *Matcher) Patterns() []string {
	return m.raw
}

// Match returns true if the entry should be listed. Size bounds apply to
// files only.
func (m *Matcher) Match(e fsys.FileEntry) bool {
	if !IsMatch(e, m.criteria.Required, m.criteria.Excluded, m.patterns) {
		return false
	}
	if e.IsDir() {
		return true
	}
	if m.criteria.MinSize > 0 && e.Size < m.criteria.MinSize {
		return false
	}
	if m.criteria.MaxSize > 0 && e.Size > m.criteria.MaxSize {
		return false
	}
	return true
}

// MatchAttrs applies only the attribute filter.
func (m *Matcher) MatchAttrs(e fsys.FileEntry) bool {
	return !e.IsDotEntry() && attrsMatch(e.Attrs, m.criteria.Required, m.criteria.Excluded)
}

// IsMatch reports whether e is not "." or "..", carries every required
// attribute bit, carries no excluded bit, and matches at least one pattern.
// A name matching several patterns is still a single match.
func IsMatch(e fsys.FileEntry, required, excluded fsys.Attr, patterns []fsys.Pattern) bool {
	if e.IsDotEntry() {
		return false
	}
	if !attrsMatch(e.Attrs, required, excluded) {
		return false
	}
	return anyPattern(e.Name, patterns)
}

func attrsMatch(a, required, excluded fsys.Attr) bool {
	return a.Has(required) && !a.Any(excluded)
}

func anyPattern(name string, patterns []fsys.Pattern) bool {
	for _, p := range patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}
