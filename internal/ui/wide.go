package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/dirx/internal/engine"
	"github.com/bamsammich/dirx/internal/fsys"
)

const wideGap = 2

// wideDisplayer prints names only, in as many columns as the terminal
// fits, filled top to bottom. Directories are shown as [name].
type wideDisplayer struct {
	*listing
}

func (d *wideDisplayer) DisplayResults(drive fsys.DriveInfo, r *engine.DirectoryResult, level engine.Level) {
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

	colW := d.columnWidth(r)
	cols, rows := Grid(len(r.Matches), colW, d.width)

	for row := range rows {
		var b strings.Builder
		for col := range cols {
			i := col*rows + row
			if i >= len(r.Matches) {
				break
			}
			text, painted := d.cell(r.Matches[i])
			b.WriteString(painted)
			if i+rows < len(r.Matches) && col < cols-1 {
				b.WriteString(strings.Repeat(" ", max(colW-lipgloss.Width(text), wideGap)))
			}
		}
		fmt.Fprintln(d.w, b.String())
	}
	d.footer(r, level)
}

// columnWidth fits the widest cell plus the gap. Cells are measured the
// same way the padding is, so wide runes cannot overflow a column.
func (d *wideDisplayer) columnWidth(r *engine.DirectoryResult) int {
	w := r.LargestName + 2
	if d.icons {
		w += 2
	}
	for _, e := range r.Matches {
		text, _ := d.cell(e)
		w = max(w, lipgloss.Width(text))
	}
	return w + wideGap
}

// cell returns the unstyled text (for measuring) and its styled form.
func (d *wideDisplayer) cell(e fsys.FileEntry) (text, painted string) {
	st := d.styles.StyleFor(e)
	name := e.Name
	if e.IsDir() {
		name = "[" + name + "]"
	}
	icon := d.iconCell(st)
	return icon + name, icon + d.paint(st.Color, name)
}

// Grid returns the column and row count for n cells of width colW in a
// terminal of the given width. There is always at least one column.
func Grid(n, colW, width int) (cols, rows int) {
	if n == 0 {
		return 0, 0
	}
	cols = max(1, width/max(colW, 1))
	cols = min(cols, n)
	rows = (n + cols - 1) / cols
	return cols, rows
}
