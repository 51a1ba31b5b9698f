package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/semaphore"

	"github.com/bamsammich/dirx/internal/event"
	"github.com/bamsammich/dirx/internal/filter"
	"github.com/bamsammich/dirx/internal/fsys"
	"github.com/bamsammich/dirx/internal/stats"
)

// WalkerConfig controls walker behavior.
type WalkerConfig struct {
	Lister    fsys.Lister
	Stats     *stats.Collector
	Events    chan<- event.Event // optional
	Sort      filter.Comparator
	Criteria  filter.Criteria
	Workers   int  // concurrent enumerations; 1 = single-threaded
	MaxDepth  int  // 0 = unlimited
	Recursive bool // descend into subdirectories
	Tree      bool // deliver each root with its expanded children; implies Recursive
}

// Walker enumerates a directory tree with bounded parallelism and hands the
// results to a Displayer in a deterministic order.
//
// Each directory is visited by one goroutine. Directory reads are bounded
// by a weighted semaphore; a parent fans out one goroutine per subdirectory
// and joins them before reducing its totals. Delivery runs on the caller's
// goroutine and follows the structural pre-order, so output never depends
// on which worker finished first.
type Walker struct {
	cfg WalkerConfig
	sem *semaphore.Weighted
}

// node tracks one directory through the walk.
type node struct {
	result   *DirectoryResult
	children []*node
	totals   stats.Totals  // subtree totals, valid once done is closed
	ready    chan struct{} // result and children are final
	done     chan struct{} // subtree reduced
}

func newNode(path, name string, patterns []string, depth int) *node {
	return &node{
		result: newDirectoryResult(path, name, patterns, depth),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// NewWalker creates a walker with the given config.
func NewWalker(cfg WalkerConfig) *Walker {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers()
	}
	if cfg.Lister == nil {
		cfg.Lister = fsys.NewOSLister()
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Tree {
		cfg.Recursive = true
	}
	return &Walker{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.Workers)),
	}
}

// DefaultWorkers is the worker count used when none is configured.
func DefaultWorkers() int {
	return min(runtime.NumCPU()*2, 32)
}

// Walk lists group.Dir and, when recursive, every directory below it. Each
// directory is delivered to disp as soon as everything before it in
// pre-order has been delivered. The returned totals cover the whole
// subtree; they are also added to the walker's collector.
//
// Only a missing or non-directory root is an error. Directories that cannot
// be read are delivered empty with DirectoryResult.Err set.
func (w *Walker) Walk(
	ctx context.Context,
	drive fsys.DriveInfo,
	group filter.MaskGroup,
	disp Displayer,
	level Level,
) (*DirectoryResult, stats.Totals, error) {
	rootEntry, err := w.cfg.Lister.Stat(group.Dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, stats.Totals{}, fmt.Errorf("%w: %s", ErrPathNotFound, group.Dir)
	case err != nil:
		err = fmt.Errorf("stat %s: %w", group.Dir, err)
		if Classify(err).Fatal() {
			return nil, stats.Totals{}, err
		}
		// The root may still be listable; if not, it is reported like any
		// other unreadable directory.
		slog.Debug("stat of root failed, listing anyway", "path", group.Dir, "error", err)
	case !rootEntry.IsDir():
		return nil, stats.Totals{}, fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, group.Dir)
	}

	matcher, err := filter.NewMatcher(group.Patterns, w.cfg.Criteria)
	if err != nil {
		return nil, stats.Totals{}, err
	}

	w.emit(ctx, event.Event{Type: event.WalkStarted, Path: group.Dir})

	root := newNode(group.Dir, filepath.Base(group.Dir), matcher.Patterns(), 0)
	result := root.result
	go w.visit(ctx, matcher, root)

	w.deliver(drive, root, disp, level)
	<-root.done

	w.emit(ctx, event.Event{
		Type:  event.WalkComplete,
		Path:  group.Dir,
		Files: root.totals.Files,
		Dirs:  root.totals.Dirs,
		Bytes: root.totals.Bytes,
	})
	return result, root.totals, nil
}

// deliver hands nodes to the displayer in pre-order, blocking on each
// node until its listing is final. Outside tree mode a node is released
// once its subtree is delivered and reduced, so a long walk only holds the
// path being delivered and the work still pending.
func (w *Walker) deliver(drive fsys.DriveInfo, n *node, disp Displayer, level Level) {
	if w.cfg.Tree {
		<-n.done
		disp.DisplayResults(drive, n.result, level)
		return
	}

	<-n.ready
	disp.DisplayResults(drive, n.result, level)
	for _, c := range n.children {
		w.deliver(drive, c, disp, LevelSubdirectory)
	}

	// After done only the parent reads n, and only n.totals.
	<-n.done
	n.result = nil
	n.children = nil
}

func (w *Walker) visit(ctx context.Context, m *filter.Matcher, n *node) {
	defer close(n.done)
	r := n.result

	entries, err := w.enumerate(ctx, r.Path, w.openPattern(m))
	if err != nil {
		r.Err = err
		entries = nil
		w.cfg.Stats.AddDirsFailed(1)
		slog.Debug("directory unreadable, listing as empty",
			"path", r.Path, "kind", Classify(err).String(), "error", err)
		w.emit(ctx, event.Event{Type: event.DirFailed, Path: r.Path, Depth: r.Depth, Error: err})
	}
	w.cfg.Stats.AddDirsScanned(1)
	w.cfg.Stats.AddEntriesSeen(int64(len(entries)))

	w.classify(m, r, entries)
	w.cfg.Sort.Sort(r.Matches)

	for _, sub := range w.subdirectories(ctx, r, m, entries) {
		n.children = append(n.children,
			newNode(filepath.Join(r.Path, sub.Name), sub.Name, r.Patterns, r.Depth+1))
	}
	close(n.ready)

	if w.cfg.Workers == 1 {
		for _, c := range n.children {
			w.visit(ctx, m, c)
		}
	} else {
		var wg sync.WaitGroup
		for _, c := range n.children {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.visit(ctx, m, c)
			}()
		}
		wg.Wait()
	}

	// Children are folded in listing order; Totals.Add is commutative so
	// completion order cannot change the result.
	own := r.Totals()
	total := own
	for _, c := range n.children {
		total = total.Add(c.totals)
	}
	if w.cfg.Tree {
		results := make([]*DirectoryResult, len(n.children))
		for i, c := range n.children {
			results[i] = c.result
		}
		r.setChildren(results)
	}
	n.totals = total
	w.cfg.Stats.AddTotals(own)

	w.emit(ctx, event.Event{
		Type:  event.DirListed,
		Path:  r.Path,
		Depth: r.Depth,
		Files: own.Files,
		Dirs:  own.Dirs,
		Bytes: own.Bytes,
	})
}

// openPattern pushes a lone mask down to the enumeration primitive when no
// unmatched entries are needed for recursion.
func (w *Walker) openPattern(m *filter.Matcher) string {
	if patterns := m.Patterns(); !w.cfg.Recursive && len(patterns) == 1 {
		return patterns[0]
	}
	return "*"
}

// enumerate is the only blocking I/O of a visit, and the only step the
// worker semaphore bounds.
func (w *Walker) enumerate(ctx context.Context, dir, pattern string) ([]fsys.FileEntry, error) {
	// Acquire may succeed on an already canceled context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer w.sem.Release(1)

	start := time.Now()
	it, err := w.cfg.Lister.Open(dir, pattern)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	entries, err := fsys.ReadAll(it)
	if err != nil {
		return nil, err
	}
	slog.Debug("enumerated", "path", dir, "entries", len(entries), "took", time.Since(start))
	return entries, nil
}

// classify fills the match list and per-directory counters. A
// subdirectory counts only when it matches like a file would. In tree mode
// directories that fail the masks are still listed, uncounted, so the
// hierarchy stays navigable.
func (w *Walker) classify(m *filter.Matcher, r *DirectoryResult, entries []fsys.FileEntry) {
	for _, e := range entries {
		matched := m.Match(e)
		if !matched && !(w.cfg.Tree && e.IsDir() && m.MatchAttrs(e)) {
			continue
		}

		r.Matches = append(r.Matches, e)
		if n := runewidth.StringWidth(e.Name); n > r.LargestName {
			r.LargestName = n
		}
		if !matched {
			continue
		}
		if e.IsDir() {
			r.SubdirCount++
			continue
		}
		r.FileCount++
		r.TotalBytes += e.Size
		if e.Size > r.LargestFile {
			r.LargestFile = e.Size
		}
	}
}

// subdirectories returns the recursion candidates of r in listing order.
// Every subdirectory qualifies regardless of the masks, except reparse
// points, which are listed but never entered. Tree mode only expands
// directories it displays.
func (w *Walker) subdirectories(
	ctx context.Context,
	r *DirectoryResult,
	m *filter.Matcher,
	entries []fsys.FileEntry,
) []fsys.FileEntry {
	if !w.cfg.Recursive {
		return nil
	}

	var subs []fsys.FileEntry
	for _, e := range entries {
		if !e.IsDir() || e.IsDotEntry() {
			continue
		}
		if w.cfg.Tree && !m.MatchAttrs(e) {
			continue
		}
		if e.IsReparsePoint() {
			w.cfg.Stats.AddReparseSkips(1)
			w.emit(ctx, event.Event{
				Type:  event.ReparseSkipped,
				Path:  filepath.Join(r.Path, e.Name),
				Depth: r.Depth + 1,
			})
			continue
		}
		subs = append(subs, e)
	}

	if len(subs) > 0 && !w.expands(r.Depth+1) {
		w.emit(ctx, event.Event{Type: event.DepthLimited, Path: r.Path, Depth: r.Depth})
		return nil
	}

	w.cfg.Sort.Sort(subs)
	return subs
}

// expands reports whether a directory at depth is enumerated. The root is
// depth 0; with MaxDepth D, directories at depth D are listed by their
// parent but not opened.
func (w *Walker) expands(depth int) bool {
	return w.cfg.MaxDepth <= 0 || depth < w.cfg.MaxDepth
}

func (w *Walker) emit(ctx context.Context, ev event.Event) {
	if w.cfg.Events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case w.cfg.Events <- ev:
	case <-ctx.Done():
	}
}
