package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bamsammich/dirx/internal/event"
	"github.com/bamsammich/dirx/internal/stats"
)

const (
	eraseLine         = "\r\033[K"
	progressMinRedraw = 50 * time.Millisecond // don't redraw faster than this
	progressTick      = 250 * time.Millisecond
)

// Progress draws a one-line status of a running walk on a terminal and
// redraws it in place. The line is erased when the event stream ends.
type Progress struct {
	w       io.Writer
	stats   *stats.Collector
	root    string // stripped from displayed paths
	current string
	width   int

	drawn    bool
	lastDraw time.Time
}

// NewProgress creates a progress line reading counters from c.
func NewProgress(w io.Writer, c *stats.Collector, root string, width int) *Progress {
	if width <= 0 {
		width = 80
	}
	return &Progress{w: w, stats: c, root: root, width: width}
}

// Run consumes events until the channel closes. Blocks until done.
func (p *Progress) Run(events <-chan event.Event) {
	ticker := time.NewTicker(progressTick)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clear()
				return
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.draw()
		}
	}
}

func (p *Progress) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.WalkStarted:
		if p.root == "" {
			p.root = ev.Path
		}
	case event.DirListed, event.DirFailed:
	default:
		return
	}
	p.current = ev.Path
	if time.Since(p.lastDraw) >= progressMinRedraw {
		p.draw()
	}
}

func (p *Progress) draw() {
	snap := p.stats.Snapshot()
	line := fmt.Sprintf("scanning  %s %s  %s entries",
		FormatCount(uint64(snap.DirsScanned)), //nolint:gosec // G115: counters are non-negative
		Plural(uint64(snap.DirsScanned), "dir"), //nolint:gosec // G115: counters are non-negative
		FormatCount(uint64(snap.EntriesSeen)),  //nolint:gosec // G115: counters are non-negative
	)
	if snap.DirsFailed > 0 {
		line += fmt.Sprintf("  %d unreadable", snap.DirsFailed)
	}
	line += "  " + FormatDuration(snap.Elapsed)

	if p.current != "" {
		if avail := p.width - len(line) - 3; avail > 8 {
			line += "  " + truncPath(StripRoot(p.root, p.current), avail)
		}
	}

	fmt.Fprint(p.w, eraseLine+line)
	p.drawn = true
	p.lastDraw = time.Now()
}

func (p *Progress) clear() {
	if !p.drawn {
		return
	}
	fmt.Fprint(p.w, eraseLine)
	p.drawn = false
}

// truncPath shortens a path to at most maxLen bytes, keeping its tail and
// never cutting through a multi-byte character.
func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		end := maxLen
		for end > 0 && !utf8.RuneStart(path[end]) {
			end--
		}
		return path[:end]
	}
	start := len(path) - maxLen + 3
	for start < len(path) && !utf8.RuneStart(path[start]) {
		start++
	}
	return "..." + path[start:]
}

// StripRoot removes a root prefix from a path, returning a clean relative path.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	if path == root {
		return "."
	}
	// Ensure root ends with separator for clean stripping.
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if strings.HasPrefix(path, root) {
		return path[len(root):]
	}
	return path
}
