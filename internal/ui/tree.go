package ui

import (
	"fmt"

	"github.com/bamsammich/dirx/internal/engine"
	"github.com/bamsammich/dirx/internal/fsys"
)

const (
	treeBranch = "├── "
	treeLast   = "└── "
	treePipe   = "│   "
	treeBlank  = "    "
)

// treeDisplayer draws the expanded root once, interleaving each
// subdirectory's entries below it.
type treeDisplayer struct {
	*listing
	sizeW int
}

func (d *treeDisplayer) DisplayResults(drive fsys.DriveInfo, r *engine.DirectoryResult, level engine.Level) {
	if level == engine.LevelInitial {
		d.volumeHeader(drive)
	}
	d.dirHeader(r)
	d.errorLine(" ", r)
	if r.Empty() {
		if r.Err == nil {
			d.notFound()
		}
		return
	}

	d.sizeW = sizeWidth(largestInTree(r))
	d.branch(r, "")
}

func (d *treeDisplayer) branch(r *engine.DirectoryResult, prefix string) {
	for i, e := range r.Matches {
		conn, next := treeBranch, treePipe
		if i == len(r.Matches)-1 {
			conn, next = treeLast, treeBlank
		}
		fmt.Fprintln(d.w, d.row(e, d.sizeW, prefix+conn))

		if !e.IsDir() {
			continue
		}
		child := r.Child(e.Name)
		if child == nil {
			continue
		}
		d.errorLine(d.indent(prefix+next), child)
		d.branch(child, prefix+next)
	}
}

// indent lines an error message up with the names of the rows around it.
func (d *treeDisplayer) indent(prefix string) string {
	// date, time, size and attribute columns, each followed by two spaces.
	n := len(dateLayout) + len(timeLayout) + d.sizeW + len(fsys.Attr(0).Letters()) + 8
	return fmt.Sprintf("%*s%s", n, "", d.paint(d.theme.Muted, prefix))
}

func largestInTree(r *engine.DirectoryResult) uint64 {
	largest := r.LargestFile
	for _, c := range r.Children {
		largest = max(largest, largestInTree(c))
	}
	return largest
}
