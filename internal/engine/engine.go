package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bamsammich/dirx/internal/event"
	"github.com/bamsammich/dirx/internal/filter"
	"github.com/bamsammich/dirx/internal/fsys"
	"github.com/bamsammich/dirx/internal/stats"
)

// Config describes a listing operation.
type Config struct {
	Lister    fsys.Lister // defaults to the local filesystem
	Stats     *stats.Collector
	Events    chan<- event.Event
	Cwd       string // directory pure masks apply to; defaults to os.Getwd
	Masks     []string
	Sort      filter.Comparator
	Criteria  filter.Criteria
	Workers   int
	MaxDepth  int
	Recursive bool
	Tree      bool
}

// Result is the outcome of a listing.
type Result struct {
	Err    error
	Stats  stats.Snapshot
	Totals stats.Totals // summed across mask groups
	Groups int
	Failed int // mask groups whose root could not be listed
}

// List groups cfg.Masks by directory, walks each group and reports every
// directory to disp. After a recursive listing the summed totals are passed
// to DisplayRecursiveSummary. A missing root fails its own group only;
// the remaining groups are still listed.
func List(ctx context.Context, cfg Config, disp Displayer) Result {
	cwd := cfg.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Result{Err: fmt.Errorf("working directory: %w", err)}
		}
		cwd = wd
	}
	if cfg.Lister == nil {
		cfg.Lister = fsys.NewOSLister()
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}

	walker := NewWalker(WalkerConfig{
		Lister:    cfg.Lister,
		Stats:     cfg.Stats,
		Events:    cfg.Events,
		Sort:      cfg.Sort,
		Criteria:  cfg.Criteria,
		Workers:   cfg.Workers,
		MaxDepth:  cfg.MaxDepth,
		Recursive: cfg.Recursive,
		Tree:      cfg.Tree,
	})

	groups := filter.GroupByDirectory(cfg.Masks, cwd)
	res := Result{Groups: len(groups)}

	var (
		firstRoot *DirectoryResult
		errs      []error
	)
	for _, g := range groups {
		slog.Debug("listing", "dir", g.Dir, "masks", g.Patterns)
		root, totals, err := walker.Walk(ctx, cfg.Lister.Volume(g.Dir), g, disp, LevelInitial)
		if err != nil {
			res.Failed++
			errs = append(errs, err)
			continue
		}
		res.Totals = res.Totals.Add(totals)
		if firstRoot == nil {
			firstRoot = root
		}
	}

	if (cfg.Recursive || cfg.Tree) && firstRoot != nil {
		disp.DisplayRecursiveSummary(firstRoot, res.Totals)
	}

	res.Stats = cfg.Stats.Snapshot()
	res.Err = errors.Join(errs...)
	return res
}
