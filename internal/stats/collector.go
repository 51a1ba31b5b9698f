package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Totals is the file/directory/byte fold of a subtree. Add is commutative
// and associative with the zero value as identity, so totals reduced in any
// order agree.
type Totals struct {
	Files uint64
	Dirs  uint64
	Bytes uint64
}

// Add returns the pairwise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Files: t.Files + o.Files,
		Dirs:  t.Dirs + o.Dirs,
		Bytes: t.Bytes + o.Bytes,
	}
}

// IsZero reports whether nothing was counted.
func (t Totals) IsZero() bool {
	return t == Totals{}
}

func (t Totals) String() string {
	return fmt.Sprintf("files=%d dirs=%d bytes=%d", t.Files, t.Dirs, t.Bytes)
}

// Collector tracks listing statistics using lock-free atomic counters.
// Walkers add to it only when a directory is reduced; readers take a
// Snapshot once the walk is over.
type Collector struct {
	files        atomic.Uint64
	dirs         atomic.Uint64
	bytes        atomic.Uint64
	dirsScanned  atomic.Int64
	dirsFailed   atomic.Int64
	entriesSeen  atomic.Int64
	reparseSkips atomic.Int64
	startTime    time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// AddTotals atomically folds t into the running totals.
func (c *Collector) AddTotals(t Totals) {
	c.files.Add(t.Files)
	c.dirs.Add(t.Dirs)
	c.bytes.Add(t.Bytes)
}

func (c *Collector) AddDirsScanned(n int64)  { c.dirsScanned.Add(n) }
func (c *Collector) AddDirsFailed(n int64)   { c.dirsFailed.Add(n) }
func (c *Collector) AddEntriesSeen(n int64)  { c.entriesSeen.Add(n) }
func (c *Collector) AddReparseSkips(n int64) { c.reparseSkips.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	Totals       Totals
	DirsScanned  int64
	DirsFailed   int64
	EntriesSeen  int64
	ReparseSkips int64
	Elapsed      time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Totals: Totals{
			Files: c.files.Load(),
			Dirs:  c.dirs.Load(),
			Bytes: c.bytes.Load(),
		},
		DirsScanned:  c.dirsScanned.Load(),
		DirsFailed:   c.dirsFailed.Load(),
		EntriesSeen:  c.entriesSeen.Load(),
		ReparseSkips: c.reparseSkips.Load(),
		Elapsed:      c.Elapsed(),
	}
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	if c.startTime.IsZero() {
		return 0
	}
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"files=%d dirs=%d bytes=%d scanned=%d failed=%d entries=%d reparse=%d",
		s.Totals.Files, s.Totals.Dirs, s.Totals.Bytes,
		s.DirsScanned, s.DirsFailed, s.EntriesSeen, s.ReparseSkips,
	)
}

// FormatBytes returns a human-readable byte count (1024-based).
func FormatBytes(b uint64) string {
	return humanize.IBytes(b)
}
