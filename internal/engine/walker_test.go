package engine_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/dirx/internal/engine"
	"github.com/bamsammich/dirx/internal/event"
	"github.com/bamsammich/dirx/internal/filter"
	"github.com/bamsammich/dirx/internal/fsys"
	"github.com/bamsammich/dirx/internal/stats"
)

func matchNames(r *engine.DirectoryResult) []string {
	names := make([]string, len(r.Matches))
	for i, e := range r.Matches {
		names[i] = e.Name
	}
	return names
}

func TestWalk_SampleTree(t *testing.T) {
	for _, workers := range []int{1, 8} {
		m := sampleTree(t)
		rec, root, totals := walk(t, engine.WalkerConfig{
			Lister:    m,
			Workers:   workers,
			Recursive: true,
		})

		assert.Equal(t, stats.Totals{Files: 4, Dirs: 3, Bytes: 14000}, totals, "workers=%d", workers)
		assert.Equal(t, "/root", root.Path)
		assert.Equal(t, []string{
			"/root [initial] files=1 dirs=2 bytes=1000",
			"/root/sub1 [subdirectory] files=1 dirs=0 bytes=2000",
			"/root/sub2 [subdirectory] files=1 dirs=1 bytes=5000",
			"/root/sub2/subsub [subdirectory] files=1 dirs=0 bytes=6000",
		}, rec.calls, "workers=%d", workers)
		assert.Zero(t, rec.summaries, "Walk never emits the summary")
	}
}

func TestWalk_OutputIndependentOfWorkerCount(t *testing.T) {
	var (
		wantCalls  []string
		wantTotals stats.Totals
	)
	for _, workers := range []int{1, 2, 8, 32} {
		m := wideTree(t, 3, 3)
		rec, _, totals := walk(t, engine.WalkerConfig{
			Lister:    m,
			Workers:   workers,
			Recursive: true,
		})
		if wantCalls == nil {
			wantCalls = rec.calls
			wantTotals = totals
			continue
		}
		assert.Equal(t, wantTotals, totals, "workers=%d", workers)
		assert.Equal(t, wantCalls, rec.calls, "workers=%d", workers)
	}

	// 1 + 3 + 9 + 27 directories, each with six files.
	assert.Len(t, wantCalls, 40)
	assert.Equal(t, uint64(40*6), wantTotals.Files)
	assert.Equal(t, uint64(39), wantTotals.Dirs)
}

func TestWalk_CollectorMatchesReturnedTotals(t *testing.T) {
	m := wideTree(t, 2, 4)
	c := stats.NewCollector()
	_, _, totals := walk(t, engine.WalkerConfig{
		Lister:    m,
		Stats:     c,
		Workers:   8,
		Recursive: true,
	})

	snap := c.Snapshot()
	assert.Equal(t, totals, snap.Totals)
	assert.Equal(t, int64(1+4+16), snap.DirsScanned)
	assert.Zero(t, snap.DirsFailed)
}

func TestWalk_NonRecursiveListsOnlyRoot(t *testing.T) {
	m := sampleTree(t)
	rec, root, totals := walk(t, engine.WalkerConfig{Lister: m})

	assert.Len(t, rec.calls, 1)
	assert.Equal(t, stats.Totals{Files: 1, Dirs: 2, Bytes: 1000}, totals)
	assert.Equal(t, []string{"sub1", "sub2", "file1.txt"}, matchNames(root))
	assert.Equal(t, []string{"/root"}, m.openedDirs())
}

func TestWalk_DirectoriesMatchMasksLikeFiles(t *testing.T) {
	m := newMemFS("/root")
	m.mkdir("/root/lib.cpp")
	m.mkdir("/root/src")
	m.file("/root/main.cpp", 10)
	m.file("/root/test.cpp", 20)
	m.file("/root/readme.md", 30)

	_, root, totals := walk(t, engine.WalkerConfig{Lister: m}, "*.cpp")

	assert.Equal(t, []string{"lib.cpp", "main.cpp", "test.cpp"}, matchNames(root))
	assert.Equal(t, uint64(2), root.FileCount)
	assert.Equal(t, uint64(1), root.SubdirCount)
	assert.Equal(t, stats.Totals{Files: 2, Dirs: 1, Bytes: 30}, totals)
	assert.Equal(t, "*.cpp", m.pattern["/root"], "a lone mask is pushed down to the lister")
}

func TestWalk_RecursionIgnoresMasks(t *testing.T) {
	m := newMemFS("/root")
	m.mkdir("/root/src")
	m.file("/root/src/main.cpp", 10)
	m.file("/root/src/notes.txt", 99)
	m.file("/root/top.cpp", 5)

	rec, _, totals := walk(t, engine.WalkerConfig{Lister: m, Recursive: true}, "*.cpp")

	assert.Equal(t, []string{"/root", "/root/src"}, m.openedDirs())
	assert.Equal(t, "*", m.pattern["/root"])
	assert.Equal(t, stats.Totals{Files: 2, Bytes: 15}, totals)
	assert.Len(t, rec.calls, 2)
}

func TestWalk_MaskUnionCountsOnce(t *testing.T) {
	m := newMemFS("/root")
	m.file("/root/main.cpp", 1)
	m.file("/root/test.cpp", 2)
	m.file("/root/test.md", 4)
	m.file("/root/other.go", 8)

	_, root, totals := walk(t, engine.WalkerConfig{Lister: m}, "*.cpp", "test.*")

	assert.Equal(t, []string{"main.cpp", "test.cpp", "test.md"}, matchNames(root))
	assert.Equal(t, stats.Totals{Files: 3, Bytes: 7}, totals)
	assert.Equal(t, "*.cpp, test.*", root.FileSpec)
	assert.Equal(t, "*", m.pattern["/root"])
}

func TestWalk_ReparsePointsListedNotEntered(t *testing.T) {
	m := newMemFS("/root")
	m.file("/root/a.txt", 100)
	m.mkdirAttrs("/root/link", fsys.AttrReparsePoint)
	m.file("/root/link/inside.txt", 5000)

	c := stats.NewCollector()
	events := make(chan event.Event, 64)
	_, root, totals := walk(t, engine.WalkerConfig{
		Lister:    m,
		Stats:     c,
		Events:    events,
		Recursive: true,
	})
	close(events)

	assert.Equal(t, []string{"link", "a.txt"}, matchNames(root))
	assert.Equal(t, stats.Totals{Files: 1, Dirs: 1, Bytes: 100}, totals)
	assert.Equal(t, []string{"/root"}, m.openedDirs())
	assert.Equal(t, int64(1), c.Snapshot().ReparseSkips)

	var skipped []string
	for ev := range events {
		if ev.Type == event.ReparseSkipped {
			skipped = append(skipped, ev.Path)
		}
	}
	assert.Equal(t, []string{"/root/link"}, skipped)
}

func TestWalk_MaxDepth(t *testing.T) {
	build := func() *memFS {
		m := newMemFS("/root")
		m.file("/root/r.txt", 1)
		m.mkdir("/root/a")
		m.file("/root/a/a.txt", 10)
		m.mkdir("/root/a/b")
		m.file("/root/a/b/b.txt", 100)
		m.mkdir("/root/a/b/c")
		m.file("/root/a/b/c/c.txt", 1000)
		return m
	}

	tests := []struct {
		name     string
		maxDepth int
		opened   []string
		totals   stats.Totals
	}{
		{"unlimited", 0, []string{"/root", "/root/a", "/root/a/b", "/root/a/b/c"}, stats.Totals{Files: 4, Dirs: 3, Bytes: 1111}},
		{"root only", 1, []string{"/root"}, stats.Totals{Files: 1, Dirs: 1, Bytes: 1}},
		{"two levels", 2, []string{"/root", "/root/a"}, stats.Totals{Files: 2, Dirs: 2, Bytes: 11}},
		{"deeper than tree", 10, []string{"/root", "/root/a", "/root/a/b", "/root/a/b/c"}, stats.Totals{Files: 4, Dirs: 3, Bytes: 1111}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := build()
			_, _, totals := walk(t, engine.WalkerConfig{
				Lister:    m,
				Workers:   4,
				MaxDepth:  tt.maxDepth,
				Recursive: true,
			})
			assert.Equal(t, tt.opened, m.openedDirs())
			assert.Equal(t, tt.totals, totals)
		})
	}
}

func TestWalk_UnreadableDirectoryIsIsolated(t *testing.T) {
	m := sampleTree(t)
	m.fail("/root/sub1", fs.ErrPermission)

	c := stats.NewCollector()
	events := make(chan event.Event, 64)
	rec, _, totals := walk(t, engine.WalkerConfig{
		Lister:    m,
		Stats:     c,
		Events:    events,
		Workers:   4,
		Recursive: true,
	})
	close(events)

	assert.Equal(t, stats.Totals{Files: 3, Dirs: 3, Bytes: 12000}, totals)
	require.Len(t, rec.results, 4)

	sub1 := rec.results[1]
	assert.Equal(t, "/root/sub1", sub1.Path)
	require.Error(t, sub1.Err)
	assert.Equal(t, engine.KindAccessDenied, engine.Classify(sub1.Err))
	assert.True(t, sub1.Empty())
	assert.Equal(t, int64(1), c.Snapshot().DirsFailed)

	var failed int
	for ev := range events {
		if ev.Type == event.DirFailed {
			failed++
			assert.Equal(t, "/root/sub1", ev.Path)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestWalk_RootNotFound(t *testing.T) {
	m := sampleTree(t)
	w := engine.NewWalker(engine.WalkerConfig{Lister: m})

	_, _, err := w.Walk(t.Context(), fsys.DriveInfo{}, filterGroup("/missing", "*"), &recorder{}, engine.LevelInitial)
	require.ErrorIs(t, err, engine.ErrPathNotFound)
	assert.Equal(t, engine.KindPathNotFound, engine.Classify(err))

	_, _, err = w.Walk(t.Context(), fsys.DriveInfo{}, filterGroup("/root/file1.txt", "*"), &recorder{}, engine.LevelInitial)
	require.ErrorIs(t, err, engine.ErrPathNotFound)
}

func TestWalk_RootStatFailureIsNotFatal(t *testing.T) {
	m := sampleTree(t)
	m.failStat("/root", fs.ErrPermission)
	m.fail("/root", fs.ErrPermission)
	w := engine.NewWalker(engine.WalkerConfig{Lister: m, Recursive: true})

	rec := &recorder{}
	root, totals, err := w.Walk(t.Context(), fsys.DriveInfo{}, filterGroup("/root", "*"), rec, engine.LevelInitial)
	require.NoError(t, err)
	require.Len(t, rec.results, 1)
	assert.Equal(t, engine.KindAccessDenied, engine.Classify(root.Err))
	assert.True(t, root.Empty())
	assert.Zero(t, totals)

	// Stat fails but the directory itself is still readable.
	m = sampleTree(t)
	m.failStat("/root", fs.ErrPermission)
	w = engine.NewWalker(engine.WalkerConfig{Lister: m, Recursive: true})
	_, totals, err = w.Walk(t.Context(), fsys.DriveInfo{}, filterGroup("/root", "*"), &recorder{}, engine.LevelInitial)
	require.NoError(t, err)
	assert.Equal(t, stats.Totals{Files: 4, Dirs: 3, Bytes: 14000}, totals)
}

func TestWalk_SortedMatches(t *testing.T) {
	m := newMemFS("/root")
	m.file("/root/b.txt", 300)
	m.file("/root/a.txt", 100)
	m.file("/root/c.txt", 200)
	m.mkdir("/root/zdir")

	_, root, _ := walk(t, engine.WalkerConfig{
		Lister: m,
		Sort:   filter.NewComparator(filter.SortSize, true),
	})
	assert.Equal(t, []string{"zdir", "b.txt", "c.txt", "a.txt"}, matchNames(root))
}

func TestWalk_AttributeCriteria(t *testing.T) {
	m := newMemFS("/root")
	m.file("/root/visible.txt", 1)
	m.fileAttrs("/root/.hidden", 2, fsys.AttrHidden)
	m.fileAttrs("/root/locked.txt", 4, fsys.AttrReadOnly)

	_, root, totals := walk(t, engine.WalkerConfig{
		Lister:   m,
		Criteria: filter.Criteria{Excluded: fsys.AttrHidden},
	})
	assert.Equal(t, []string{"locked.txt", "visible.txt"}, matchNames(root))
	assert.Equal(t, stats.Totals{Files: 2, Bytes: 5}, totals)
}

func TestWalk_TreeMode(t *testing.T) {
	m := newMemFS("/root")
	m.file("/root/top.txt", 1)
	m.mkdir("/root/Src")
	m.file("/root/Src/main.go", 10)
	m.mkdir("/root/Src/Lib")
	m.file("/root/Src/Lib/util.go", 100)
	m.mkdir("/root/docs")
	m.file("/root/docs/guide.md", 1000)
	m.fileAttrs("/root/docs/.draft", 5, fsys.AttrHidden)

	rec, root, totals := walk(t, engine.WalkerConfig{
		Lister:   m,
		Workers:  4,
		Tree:     true,
		Criteria: filter.Criteria{Excluded: fsys.AttrHidden},
	}, "*.go")

	require.Len(t, rec.calls, 1, "tree mode delivers the root once")
	assert.Same(t, root, rec.results[0])

	// Directories bypass the mask so the hierarchy stays visible.
	assert.Equal(t, []string{"docs", "Src"}, matchNames(root))
	require.Len(t, root.Children, 2)
	assert.Equal(t, "docs", root.Children[0].Name)

	src := root.Child("src")
	require.NotNil(t, src)
	assert.Equal(t, "/root/Src", src.Path)
	assert.Same(t, src, root.Child("Src"))
	assert.Equal(t, []string{"Lib", "main.go"}, matchNames(src))

	lib := src.Child("LIB")
	require.NotNil(t, lib)
	assert.Equal(t, []string{"util.go"}, matchNames(lib))
	assert.Empty(t, lib.Children)
	assert.Nil(t, root.Child("missing"))

	assert.Empty(t, matchNames(root.Child("docs")))
	assert.Zero(t, root.SubdirCount, "directories shown for structure are not counted")
	assert.Equal(t, stats.Totals{Files: 2, Dirs: 0, Bytes: 110}, totals)
}

func TestWalk_TreeCountsDirectoriesLikeRecursive(t *testing.T) {
	build := func() *memFS {
		m := newMemFS("/root")
		m.mkdir("/root/subdir")
		m.mkdir("/root/lib.cpp")
		m.file("/root/a.cpp", 7)
		return m
	}

	_, flat, flatTotals := walk(t, engine.WalkerConfig{Lister: build(), Recursive: true}, "*.cpp")
	_, tree, treeTotals := walk(t, engine.WalkerConfig{Lister: build(), Tree: true}, "*.cpp")

	assert.Equal(t, stats.Totals{Files: 1, Dirs: 1, Bytes: 7}, flatTotals)
	assert.Equal(t, flatTotals, treeTotals)
	assert.Equal(t, uint64(1), flat.SubdirCount)
	assert.Equal(t, uint64(1), tree.SubdirCount)
	assert.Equal(t, []string{"lib.cpp", "subdir", "a.cpp"}, matchNames(tree), "subdir is still drawn")
}

func TestWalk_LargestNameIsDisplayWidth(t *testing.T) {
	m := newMemFS("/root")
	m.file("/root/日本.txt", 1)
	m.file("/root/abcde.txt", 1)

	_, root, _ := walk(t, engine.WalkerConfig{Lister: m})
	assert.Equal(t, 9, root.LargestName)
}

func TestWalk_TreeModeSkipsFilteredDirectories(t *testing.T) {
	m := newMemFS("/root")
	m.mkdirAttrs("/root/.git", fsys.AttrHidden)
	m.file("/root/.git/HEAD", 1)
	m.mkdir("/root/pkg")

	_, root, _ := walk(t, engine.WalkerConfig{
		Lister:   m,
		Tree:     true,
		Criteria: filter.Criteria{Excluded: fsys.AttrHidden},
	})
	assert.Equal(t, []string{"pkg"}, matchNames(root))
	assert.Nil(t, root.Child(".git"))
	assert.NotContains(t, m.openedDirs(), "/root/.git")
}

func TestWalk_EventsBracketTheWalk(t *testing.T) {
	m := sampleTree(t)
	events := make(chan event.Event, 64)
	walk(t, engine.WalkerConfig{Lister: m, Events: events, Workers: 4, Recursive: true})
	close(events)

	var got []event.Event
	for ev := range events {
		got = append(got, ev)
	}
	require.NotEmpty(t, got)

	first, last := got[0], got[len(got)-1]
	assert.Equal(t, event.WalkStarted, first.Type)
	assert.Equal(t, event.WalkComplete, last.Type)
	assert.Equal(t, uint64(4), last.Files)
	assert.Equal(t, uint64(3), last.Dirs)
	assert.Equal(t, uint64(14000), last.Bytes)

	var listed int
	for _, ev := range got {
		if ev.Type == event.DirListed {
			listed++
			assert.False(t, ev.Timestamp.IsZero())
		}
	}
	assert.Equal(t, 4, listed)
}

func TestWalk_CanceledContextListsEmpty(t *testing.T) {
	m := sampleTree(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	rec := &recorder{}
	w := engine.NewWalker(engine.WalkerConfig{Lister: m, Workers: 2, Recursive: true})
	root, totals, err := w.Walk(ctx, fsys.DriveInfo{}, filterGroup("/root", "*"), rec, engine.LevelInitial)
	require.NoError(t, err)

	require.ErrorIs(t, root.Err, context.Canceled)
	assert.True(t, totals.IsZero())
	assert.Len(t, rec.calls, 1)
	assert.Empty(t, m.openedDirs())
}

func TestWalk_SubdirectoryLevelPassedThrough(t *testing.T) {
	m := sampleTree(t)
	rec := &recorder{}
	w := engine.NewWalker(engine.WalkerConfig{Lister: m})
	_, _, err := w.Walk(t.Context(), fsys.DriveInfo{Label: "X"}, filterGroup("/root/sub2", "*"), rec, engine.LevelSubdirectory)
	require.NoError(t, err)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "/root/sub2 [subdirectory] files=1 dirs=1 bytes=5000", rec.calls[0])
	assert.Equal(t, "X", rec.drives[0].Label)
}

func TestWalk_LocalFilesystem(t *testing.T) {
	root := t.TempDir()
	write := func(rel string, size int) {
		t.Helper()
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, make([]byte, size), 0o644))
	}
	write("file1.txt", 1000)
	write("sub1/file2.txt", 2000)
	write("sub2/file3.txt", 5000)
	write("sub2/subsub/file4.txt", 6000)
	require.NoError(t, os.Symlink(filepath.Join(root, "sub2"), filepath.Join(root, "link")))

	c := stats.NewCollector()
	rec := &recorder{}
	w := engine.NewWalker(engine.WalkerConfig{Stats: c, Workers: 4, Recursive: true})
	result, totals, err := w.Walk(t.Context(), fsys.NewOSLister().Volume(root),
		filterGroup(root, "*"), rec, engine.LevelInitial)
	require.NoError(t, err)

	// The symlink is listed as a directory but its target is not entered
	// a second time.
	assert.Equal(t, stats.Totals{Files: 4, Dirs: 4, Bytes: 14000}, totals)
	assert.Equal(t, []string{"link", "sub1", "sub2", "file1.txt"}, matchNames(result))
	assert.Len(t, rec.calls, 4)
	assert.Equal(t, int64(1), c.Snapshot().ReparseSkips)
}
