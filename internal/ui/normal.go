package ui

import (
	"fmt"

	"github.com/bamsammich/dirx/internal/engine"
	"github.com/bamsammich/dirx/internal/fsys"
)

// normalDisplayer prints one line per entry: date, time, size or <DIR>,
// attribute letters, icon and name.
type normalDisplayer struct {
	*listing
}

func (d *normalDisplayer) DisplayResults(drive fsys.DriveInfo, r *engine.DirectoryResult, level engine.Level) {
	if skip(r, level) {
		return
	}
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

	w := sizeWidth(r.LargestFile)
	for _, e := range r.Matches {
		fmt.Fprintln(d.w, d.row(e, w, ""))
	}
	d.footer(r, level)
}
