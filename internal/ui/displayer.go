package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bamsammich/dirx/internal/engine"
	"github.com/bamsammich/dirx/internal/fsys"
	"github.com/bamsammich/dirx/internal/stats"
)

// Layout selects how directories are drawn.
type Layout int

const (
	LayoutNormal Layout = iota
	LayoutWide
	LayoutTree
)

var layoutNames = [...]string{
	LayoutNormal: "normal",
	LayoutWide:   "wide",
	LayoutTree:   "tree",
}

func (l Layout) String() string {
	if l >= 0 && int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return "unknown"
}

// ParseLayout parses a layout name.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "long", "l":
		return LayoutNormal, nil
	case "wide", "w":
		return LayoutWide, nil
	case "tree", "t":
		return LayoutTree, nil
	default:
		return 0, fmt.Errorf("unknown layout %q (use normal, wide or tree)", s)
	}
}

// Config configures a Displayer.
type Config struct {
	Writer    io.Writer
	Layout    Layout
	Theme     Theme         // zero value = DefaultTheme()
	Styles    StyleProvider // nil = AttributeStyles over Theme
	Width     int           // terminal columns for the wide layout; 0 = 80
	NoColor   bool
	Icons     bool
	Recursive bool // free space moves from the footer to the summary
}

// NewDisplayer creates the displayer for the configured layout.
//
//nolint:ireturn // factory function returns interface by design
func NewDisplayer(cfg Config) engine.Displayer {
	l := newListing(cfg)
	switch cfg.Layout {
	case LayoutWide:
		return &wideDisplayer{listing: l}
	case LayoutTree:
		return &treeDisplayer{listing: l}
	default:
		return &normalDisplayer{listing: l}
	}
}

// listing holds what every layout shares: the writer, colors and the
// header, footer and summary blocks.
type listing struct {
	w         io.Writer
	theme     Theme
	styles    StyleProvider
	r         *lipgloss.Renderer
	drive     fsys.DriveInfo
	width     int
	icons     bool
	recursive bool
}

func newListing(cfg Config) *listing {
	theme := cfg.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme()
	}
	var styles StyleProvider = cfg.Styles
	if styles == nil {
		// The built-in tables always parse.
		as, _ := NewAttributeStyles(theme, nil, nil) //nolint:errcheck // no user input
		styles = as
	}
	w := cfg.Writer
	if w == nil {
		w = io.Discard
	}
	r := lipgloss.NewRenderer(w)
	if cfg.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	return &listing{
		w:         w,
		theme:     theme,
		styles:    styles,
		r:         r,
		width:     width,
		icons:     cfg.Icons,
		recursive: cfg.Recursive,
	}
}

func (l *listing) paint(c lipgloss.Color, s string) string {
	if c == "" || s == "" {
		return s
	}
	return l.r.NewStyle().Foreground(c).Render(s)
}

func (l *listing) volumeHeader(drive fsys.DriveInfo) {
	l.drive = drive
	label := "has no label"
	if drive.HasLabel() {
		label = "is " + drive.Label
	}
	line := fmt.Sprintf(" Volume %s %s", drive.Path, label)
	if drive.FSType != "" {
		line += " (" + drive.FSType + ")"
	}
	fmt.Fprintf(l.w, "\n%s\n", l.paint(l.theme.Muted, line))
}

func (l *listing) dirHeader(r *engine.DirectoryResult) {
	fmt.Fprintf(l.w, "\n%s %s", l.paint(l.theme.Muted, " Directory of"), l.paint(l.theme.Header, r.Path))
	if r.FileSpec != "" && r.FileSpec != "*" {
		fmt.Fprintf(l.w, "  %s", l.paint(l.theme.Muted, r.FileSpec))
	}
	fmt.Fprint(l.w, "\n\n")
}

func (l *listing) errorLine(prefix string, r *engine.DirectoryResult) {
	if r.Err == nil {
		return
	}
	msg := fmt.Sprintf("%s: %v", engine.Classify(r.Err), r.Err)
	fmt.Fprintf(l.w, "%s%s\n", prefix, l.paint(l.theme.Error, msg))
}

// iconCell renders the icon column, blank when the icon is suppressed.
func (l *listing) iconCell(st Style) string {
	if !l.icons {
		return ""
	}
	if st.IconSuppressed || st.Icon == 0 {
		return "  "
	}
	return string(st.Icon) + " "
}

func (l *listing) name(e fsys.FileEntry, st Style) string {
	s := l.paint(st.Color, e.Name)
	if e.LinkTarget != "" {
		s += l.paint(l.theme.Muted, " -> "+e.LinkTarget)
	}
	return s
}

// row renders one entry of the normal and tree layouts. prefix sits
// between the attribute column and the name.
func (l *listing) row(e fsys.FileEntry, sizeW int, prefix string) string {
	date, clock := FormatDate(e.LastWriteTime)
	size := FormatCount(e.Size)
	if e.IsDir() {
		size = dirMarker
	}
	st := l.styles.StyleFor(e)
	return fmt.Sprintf("%s  %s  %s  %s  %s%s%s",
		date,
		clock,
		fmt.Sprintf("%*s", sizeW, size),
		l.paint(l.theme.Muted, e.Attrs.Letters()),
		l.paint(l.theme.Muted, prefix),
		l.iconCell(st),
		l.name(e, st),
	)
}

func (l *listing) footer(r *engine.DirectoryResult, level engine.Level) {
	fmt.Fprintln(l.w)
	l.totalsLines(r.Totals(), level == engine.LevelInitial && !l.recursive)
}

// DisplayRecursiveSummary prints the totals of a recursive listing.
func (l *listing) DisplayRecursiveSummary(_ *engine.DirectoryResult, totals stats.Totals) {
	fmt.Fprintf(l.w, "\n%s\n\n", l.paint(l.theme.Header, " Total files listed:"))
	l.totalsLines(totals, true)
}

func (l *listing) totalsLines(t stats.Totals, free bool) {
	fmt.Fprintf(l.w, "%16s %-5s %16s bytes\n",
		FormatCount(t.Files), Plural(t.Files, "file"), FormatCount(t.Bytes))
	line := fmt.Sprintf("%16s %-5s", FormatCount(t.Dirs), Plural(t.Dirs, "dir"))
	if free && l.drive.TotalBytes > 0 {
		line += fmt.Sprintf(" %16s bytes free (%s of %s)",
			FormatCount(l.drive.FreeBytes), FormatBytes(l.drive.FreeBytes), FormatBytes(l.drive.TotalBytes))
	}
	fmt.Fprintln(l.w, strings.TrimRight(line, " "))
}

// skip reports whether a directory reached by recursion has nothing to
// show.
func skip(r *engine.DirectoryResult, level engine.Level) bool {
	return level == engine.LevelSubdirectory && r.Empty() && r.Err == nil
}

func (l *listing) notFound() {
	fmt.Fprintln(l.w, " File Not Found")
}
