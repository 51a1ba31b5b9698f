package filter

import (
	"os"
	"path/filepath"
	"strings"
)

// MaskGroup is one target directory and the masks to list in it.
type MaskGroup struct {
	Dir      string
	Patterns []string
}

// GroupByDirectory groups user masks by the directory they target.
//
// A mask without a path separator applies to cwd. Otherwise it is split at
// the last separator; an empty file part means "*". Groups are keyed by the
// cleaned absolute directory and appear in first-seen order; masks inside a
// group keep their input order, duplicates included. No input yields a
// single (cwd, "*") group.
func GroupByDirectory(masks []string, cwd string) []MaskGroup {
	cwd = filepath.Clean(cwd)
	if len(masks) == 0 {
		return []MaskGroup{{Dir: cwd, Patterns: []string{"*"}}}
	}

	var groups []MaskGroup
	index := make(map[string]int)

	for _, mask := range masks {
		dir, pattern := splitMask(mask, cwd)
		i, ok := index[dir]
		if !ok {
			i = len(groups)
			index[dir] = i
			groups = append(groups, MaskGroup{Dir: dir})
		}
		groups[i].Patterns = append(groups[i].Patterns, pattern)
	}
	return groups
}

func splitMask(mask, cwd string) (dir, pattern string) {
	i := strings.LastIndexFunc(mask, isSeparator)
	if i < 0 {
		return cwd, mask
	}

	dir, pattern = mask[:i], mask[i+1:]
	if pattern == "" {
		pattern = "*"
	}
	switch {
	case dir == "":
		dir = string(filepath.Separator)
	case filepath.IsAbs(dir):
		dir = filepath.Clean(dir)
	default:
		dir = filepath.Join(cwd, dir)
	}
	return dir, pattern
}

func isSeparator(r rune) bool {
	return r == '/' || r == os.PathSeparator
}

// ExpandDirectoryMasks rewrites masks that name an existing directory,
// without wildcards or a trailing separator, to list that directory's
// contents: "src" becomes "src/".
func ExpandDirectoryMasks(masks []string, cwd string, isDir func(path string) bool) []string {
	out := make([]string, len(masks))
	for i, mask := range masks {
		out[i] = mask
		if mask == "" || strings.ContainsAny(mask, "*?[") || strings.HasSuffix(mask, "/") ||
			strings.HasSuffix(mask, string(os.PathSeparator)) {
			continue
		}
		path := mask
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		if isDir(path) {
			out[i] = mask + "/"
		}
	}
	return out
}
