package engine_test

import (
	"fmt"
	"hash/fnv"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dirx/internal/engine"
	"github.com/bamsammich/dirx/internal/filter"
	"github.com/bamsammich/dirx/internal/fsys"
	"github.com/bamsammich/dirx/internal/stats"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// memFS is an in-memory fsys.Lister. Open can be made to fail per
// directory and can be slowed down to shuffle worker completion order.
type memFS struct {
	mu      sync.Mutex
	dirs    map[string][]fsys.FileEntry
	errs    map[string]error
	statErr map[string]error
	opened  []string
	pattern map[string]string
	jitter  bool
}

func newMemFS(root string) *memFS {
	return &memFS{
		dirs:    map[string][]fsys.FileEntry{root: nil},
		errs:    map[string]error{},
		statErr: map[string]error{},
		pattern: map[string]string{},
	}
}

// mkdir adds a directory (and its parents' entries).
func (m *memFS) mkdir(path string) {
	m.mkdirAttrs(path, 0)
}

func (m *memFS) mkdirAttrs(path string, attrs fsys.Attr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dirs[path]; ok {
		return
	}
	m.dirs[path] = nil
	parent := filepath.Dir(path)
	m.dirs[parent] = append(m.dirs[parent], fsys.FileEntry{
		Name:          filepath.Base(path),
		Attrs:         fsys.AttrDirectory | attrs,
		LastWriteTime: testTime,
	})
}

func (m *memFS) file(path string, size uint64) {
	m.fileAttrs(path, size, 0)
}

func (m *memFS) fileAttrs(path string, size uint64, attrs fsys.Attr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent := filepath.Dir(path)
	m.dirs[parent] = append(m.dirs[parent], fsys.FileEntry{
		Name:          filepath.Base(path),
		Size:          size,
		Attrs:         attrs,
		LastWriteTime: testTime,
	})
}

func (m *memFS) fail(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[path] = err
}

// failStat makes Stat of path fail with err.
func (m *memFS) failStat(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErr[path] = err
}

func (m *memFS) openedDirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.opened...)
	sort.Strings(out)
	return out
}

func (m *memFS) Open(dir, pattern string) (fsys.Iterator, error) {
	m.mu.Lock()
	m.opened = append(m.opened, dir)
	m.pattern[dir] = pattern
	err := m.errs[dir]
	entries, ok := m.dirs[dir]
	jitter := m.jitter
	m.mu.Unlock()

	if jitter {
		h := fnv.New32a()
		_, _ = h.Write([]byte(dir))
		time.Sleep(time.Duration(h.Sum32()%5) * time.Millisecond)
	}
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: err}
	}
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrNotExist}
	}

	p, perr := fsys.CompilePattern(pattern)
	if perr != nil {
		return nil, perr
	}
	var matched []fsys.FileEntry
	for _, e := range entries {
		if p.Match(e.Name) {
			matched = append(matched, e)
		}
	}
	return &memIter{entries: matched}, nil
}

func (m *memFS) Stat(path string) (fsys.FileEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.statErr[path]; err != nil {
		return fsys.FileEntry{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	if _, ok := m.dirs[path]; ok {
		return fsys.FileEntry{Name: filepath.Base(path), Attrs: fsys.AttrDirectory}, nil
	}
	for _, e := range m.dirs[filepath.Dir(path)] {
		if e.Name == filepath.Base(path) {
			return e, nil
		}
	}
	return fsys.FileEntry{}, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

func (m *memFS) Volume(path string) fsys.DriveInfo {
	return fsys.DriveInfo{Path: path, FSType: "memfs", Label: "TEST"}
}

type memIter struct {
	entries []fsys.FileEntry
	pos     int
}

func (it *memIter) Next() (fsys.FileEntry, error) {
	if it.pos >= len(it.entries) {
		return fsys.FileEntry{}, io.EOF
	}
	e := it.entries[it.pos]
	it.pos++
	return e, nil
}

func (it *memIter) Reset() error { it.pos = 0; return nil }
func (it *memIter) Close() error { return nil }

// recorder is a Displayer that records every call.
type recorder struct {
	calls      []string
	results    []*engine.DirectoryResult
	drives     []fsys.DriveInfo
	summaries  int
	summaryTot stats.Totals
	summaryDir string
}

func (r *recorder) DisplayResults(drive fsys.DriveInfo, res *engine.DirectoryResult, level engine.Level) {
	r.calls = append(r.calls, fmt.Sprintf("%s [%s] files=%d dirs=%d bytes=%d",
		res.Path, level, res.FileCount, res.SubdirCount, res.TotalBytes))
	r.results = append(r.results, res)
	r.drives = append(r.drives, drive)
}

func (r *recorder) DisplayRecursiveSummary(root *engine.DirectoryResult, totals stats.Totals) {
	r.summaries++
	r.summaryTot = totals
	r.summaryDir = root.Path
}

// sampleTree builds:
//
//	/root/file1.txt               1000
//	/root/sub1/file2.txt          2000
//	/root/sub2/file3.txt          5000
//	/root/sub2/subsub/file4.txt   6000
func sampleTree(t *testing.T) *memFS {
	t.Helper()
	m := newMemFS("/root")
	m.file("/root/file1.txt", 1000)
	m.mkdir("/root/sub1")
	m.file("/root/sub1/file2.txt", 2000)
	m.mkdir("/root/sub2")
	m.file("/root/sub2/file3.txt", 5000)
	m.mkdir("/root/sub2/subsub")
	m.file("/root/sub2/subsub/file4.txt", 6000)
	return m
}

// wideTree builds a deterministic tree with fan-out at every level.
func wideTree(t *testing.T, depth, fanout int) *memFS {
	t.Helper()
	m := newMemFS("/root")
	m.jitter = true
	var build func(dir string, level int)
	build = func(dir string, level int) {
		for i := range fanout {
			m.file(filepath.Join(dir, fmt.Sprintf("f%02d.txt", i)), uint64(level*100+i+1))
			m.file(filepath.Join(dir, fmt.Sprintf("g%02d.cpp", i)), uint64(level*7+i))
		}
		if level == depth {
			return
		}
		for i := range fanout {
			sub := filepath.Join(dir, fmt.Sprintf("Dir%02d", fanout-i))
			m.mkdir(sub)
			build(sub, level+1)
		}
	}
	build("/root", 0)
	return m
}

func walk(t *testing.T, cfg engine.WalkerConfig, masks ...string) (*recorder, *engine.DirectoryResult, stats.Totals) {
	t.Helper()
	if len(masks) == 0 {
		masks = []string{"*"}
	}
	rec := &recorder{}
	w := engine.NewWalker(cfg)
	root, totals, err := w.Walk(t.Context(), cfg.Lister.Volume("/root"),
		filterGroup("/root", masks...), rec, engine.LevelInitial)
	require.NoError(t, err)
	return rec, root, totals
}

func filterGroup(dir string, patterns ...string) filter.MaskGroup {
	return filter.MaskGroup{Dir: dir, Patterns: patterns}
}
