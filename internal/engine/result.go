package engine

import (
	"strings"

	"github.com/bamsammich/dirx/internal/fsys"
	"github.com/bamsammich/dirx/internal/stats"
)

// Level tells a displayer whether a directory starts a listing or is a
// subdirectory reached by recursion.
type Level int

const (
	LevelInitial Level = iota
	LevelSubdirectory
)

func (l Level) String() string {
	if l == LevelInitial {
		return "initial"
	}
	return "subdirectory"
}

// Displayer renders walk results. Calls arrive on a single goroutine, in
// depth-first pre-order, whatever the worker count.
type Displayer interface {
	// DisplayResults is called once per visited directory. In tree mode it
	// is called once per mask group with the fully expanded root.
	DisplayResults(drive fsys.DriveInfo, r *DirectoryResult, level Level)

	// DisplayRecursiveSummary is called once after a recursive listing.
	DisplayRecursiveSummary(root *DirectoryResult, totals stats.Totals)
}

// DirectoryResult is one enumerated directory. It is filled in by exactly
// one goroutine and is read-only once handed to a Displayer.
type DirectoryResult struct {
	Err         error // enumeration failure; the directory is listed as empty
	Path        string
	Name        string
	FileSpec    string // masks joined for display
	Patterns    []string
	Matches     []fsys.FileEntry
	Children    []*DirectoryResult // tree mode only, in listing order
	FileCount   uint64
	SubdirCount uint64
	LargestFile uint64
	TotalBytes  uint64
	LargestName int // widest matched name, in terminal cells
	Depth       int

	exact  map[string]int
	folded map[string]int
}

func newDirectoryResult(path, name string, patterns []string, depth int) *DirectoryResult {
	return &DirectoryResult{
		Path:     path,
		Name:     name,
		Patterns: patterns,
		FileSpec: strings.Join(patterns, ", "),
		Depth:    depth,
	}
}

// Totals returns the directory's own counts, excluding descendants.
func (r *DirectoryResult) Totals() stats.Totals {
	return stats.Totals{
		Files: r.FileCount,
		Dirs:  r.SubdirCount,
		Bytes: r.TotalBytes,
	}
}

// Empty reports whether nothing in the directory matched.
func (r *DirectoryResult) Empty() bool {
	return len(r.Matches) == 0
}

// Child returns the expanded node for a subdirectory listed in Matches, or
// nil when it was not expanded. An exact name match wins; otherwise names
// are compared case-insensitively.
func (r *DirectoryResult) Child(name string) *DirectoryResult {
	if i, ok := r.exact[name]; ok {
		return r.Children[i]
	}
	if i, ok := r.folded[strings.ToLower(name)]; ok {
		return r.Children[i]
	}
	return nil
}

func (r *DirectoryResult) setChildren(children []*DirectoryResult) {
	r.Children = children
	r.exact = make(map[string]int, len(children))
	r.folded = make(map[string]int, len(children))
	for i, c := range children {
		r.exact[c.Name] = i
		key := strings.ToLower(c.Name)
		if _, dup := r.folded[key]; !dup {
			r.folded[key] = i
		}
	}
}
