package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bamsammich/dirx/internal/config"
	"github.com/bamsammich/dirx/internal/engine"
	"github.com/bamsammich/dirx/internal/event"
	"github.com/bamsammich/dirx/internal/filter"
	"github.com/bamsammich/dirx/internal/fsys"
	"github.com/bamsammich/dirx/internal/stats"
	"github.com/bamsammich/dirx/internal/ui"
)

var version = "dev"

// allAttributes disables the attribute filter; it is also what a bare -a
// means.
const allAttributes = "all"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	sortSpec    string
	attrSpec    string
	layout      string
	minSize     string
	maxSize     string
	fromFile    string
	logFile     string
	depth       int
	workers     int
	verbosity   int
	recursive   bool
	tree        bool
	wide        bool
	noThreads   bool
	icons       bool
	noColor     bool
	noProgress  bool
	debug       bool
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var o options

	rootCmd := &cobra.Command{
		Use:   "dirx [flags] [mask]...",
		Short: "Fast, colorized directory listing with parallel recursion",
		Long: `dirx lists directories the way dir does, with colors, icons and a
parallel recursive walk. Masks may carry a directory part ("src/*.go");
masks sharing a directory are listed together.

Mask syntax: * matches any run of characters, ? matches one character and
[...] matches one character from a set. Matching ignores case. Braces and
backslashes have no special meaning. A mask naming an existing directory
lists everything in it. Recursion enters every subdirectory whatever the
masks, but never follows symbolic links.`,
		Example: `  dirx                       list the current directory
  dirx *.go *.md             files matching either mask, each listed once
  dirx -s src/*.go           *.go files in src and every directory below it
  dirx -t --depth 2 ~        a two-level tree of the home directory
  dirx -a h-r -o -s /etc     hidden files that are not read-only, largest first`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.showVersion {
				fmt.Fprintf(stdout, "dirx %s\n", version)
				return nil
			}

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults, &o)

			closeLog := setupLogging(stderr, o)
			defer closeLog()

			engineCfg, uiCfg, err := o.build(cfg, args, stdout)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)
			engineCfg.Stats = collector
			engineCfg.Events = events

			// Events are logged, then forwarded to the progress line when
			// one is drawn.
			var (
				wg      sync.WaitGroup
				forward chan event.Event
			)
			if o.showProgress(stdout, stderr, engineCfg) {
				forward = make(chan event.Event, 256)
				progress := ui.NewProgress(stderr, collector, "", ui.TermWidth(stderr.(*os.File).Fd()))
				wg.Add(1)
				go func() {
					defer wg.Done()
					progress.Run(forward)
				}()
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				logEvents(events, forward)
			}()

			slog.Debug("starting listing",
				"masks", engineCfg.Masks,
				"workers", engineCfg.Workers,
				"recursive", engineCfg.Recursive,
				"tree", engineCfg.Tree,
				"depth", engineCfg.MaxDepth,
			)

			res := engine.List(ctx, engineCfg, ui.NewDisplayer(uiCfg))
			close(events)
			wg.Wait()

			slog.Info("listing finished",
				"stats", res.Stats.String(),
				"elapsed", ui.FormatDuration(res.Stats.Elapsed),
			)

			switch {
			case res.Err != nil:
				slog.Error("listing failed", "error", res.Err)
				if res.Failed < res.Groups {
					return &exitError{code: 1} // partial failure
				}
				return &exitError{code: 2} // total failure
			case ctx.Err() != nil:
				slog.Warn("listing interrupted")
				return &exitError{code: 1}
			}
			return nil
		},
	}

	o.register(rootCmd.Flags())
	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

func (o *options) register(f *pflag.FlagSet) {
	f.BoolVar(&o.showVersion, "version", false, "print version and exit")

	f.BoolVarP(&o.recursive, "recursive", "s", false, "list subdirectories recursively")
	f.BoolVarP(&o.tree, "tree", "t", false, "draw subdirectories as a tree")
	f.BoolVarP(&o.wide, "wide", "w", false, "wide listing: names only, in columns")
	f.StringVar(&o.layout, "layout", "", "layout: normal, wide or tree")
	f.IntVar(&o.depth, "depth", 0, "limit recursion depth (0 = unlimited; 1 = the named directory only)")
	f.StringVarP(&o.sortSpec, "sort", "o", "n",
		"sort by n(ame), e(xtension), s(ize) or d(ate); prefix with - to reverse")
	f.StringVarP(&o.attrSpec, "attributes", "a", "",
		"filter by attributes D H S R A T E C P 0 O; prefix with - to exclude (default: hide H and S; bare -a shows all)")
	f.Lookup("attributes").NoOptDefVal = allAttributes
	f.IntVarP(&o.workers, "workers", "n", 0, "concurrent directory reads (default: min(NumCPU*2, 32))")
	f.BoolVar(&o.noThreads, "no-threads", false, "walk on a single thread")
	f.BoolVar(&o.icons, "icons", false, "show Nerd Font icons")
	f.BoolVar(&o.noColor, "no-color", false, "disable colors")
	f.BoolVar(&o.noProgress, "no-progress", false, "never draw the progress line on stderr")
	f.StringVar(&o.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	f.StringVar(&o.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	f.StringVar(&o.fromFile, "from", "", "read additional masks from FILE")
	f.CountVarP(&o.verbosity, "verbose", "v", "verbose logging (-vv for debug)")
	f.BoolVar(&o.debug, "debug", false, "debug logging")
	f.StringVar(&o.logFile, "log", "", "write structured JSON log to FILE (rotated)")
}

// build turns options and config into the engine and display settings.
func (o *options) build(
	cfg config.Config,
	args []string,
	stdout io.Writer,
) (engine.Config, ui.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return engine.Config{}, ui.Config{}, fmt.Errorf("working directory: %w", err)
	}

	masks := append([]string(nil), args...)
	if o.fromFile != "" {
		more, err := filter.LoadMasks(o.fromFile)
		if err != nil {
			return engine.Config{}, ui.Config{}, err
		}
		masks = append(masks, more...)
	}
	masks = filter.ExpandDirectoryMasks(masks, cwd, isDir)

	key, reverse, err := filter.ParseSortSpec(o.sortSpec)
	if err != nil {
		return engine.Config{}, ui.Config{}, fmt.Errorf("invalid --sort: %w", err)
	}
	criteria, err := o.criteria()
	if err != nil {
		return engine.Config{}, ui.Config{}, err
	}
	layout, err := o.resolveLayout()
	if err != nil {
		return engine.Config{}, ui.Config{}, err
	}

	workers := o.workers
	if o.noThreads {
		workers = 1
	}

	theme := ui.DefaultTheme().Apply(cfg.Theme)
	styles, err := ui.NewAttributeStyles(theme, cfg.Extensions, cfg.Icons)
	if err != nil {
		return engine.Config{}, ui.Config{}, fmt.Errorf("config: %w", err)
	}

	width := 80
	if f, ok := stdout.(*os.File); ok {
		width = ui.TermWidth(f.Fd())
	}

	tree := layout == ui.LayoutTree
	engineCfg := engine.Config{
		Lister:    fsys.NewOSLister(),
		Cwd:       cwd,
		Masks:     masks,
		Sort:      filter.NewComparator(key, reverse),
		Criteria:  criteria,
		Workers:   workers,
		MaxDepth:  o.depth,
		Recursive: o.recursive,
		Tree:      tree,
	}
	uiCfg := ui.Config{
		Writer:    stdout,
		Layout:    layout,
		Theme:     theme,
		Styles:    styles,
		Width:     width,
		NoColor:   o.noColor || os.Getenv("NO_COLOR") != "",
		Icons:     o.icons,
		Recursive: o.recursive || tree,
	}
	return engineCfg, uiCfg, nil
}

// criteria resolves the attribute and size filters.
func (o *options) criteria() (filter.Criteria, error) {
	var c filter.Criteria

	switch strings.ToLower(strings.TrimSpace(o.attrSpec)) {
	case "":
		c.Excluded = fsys.AttrHidden | fsys.AttrSystem
	case allAttributes:
	default:
		req, exc, err := filter.ParseAttrSpec(o.attrSpec)
		if err != nil {
			return c, fmt.Errorf("invalid --attributes: %w", err)
		}
		c.Required, c.Excluded = req, exc
	}

	if o.minSize != "" {
		n, err := filter.ParseSize(o.minSize)
		if err != nil {
			return c, fmt.Errorf("invalid --min-size: %w", err)
		}
		c.MinSize = n
	}
	if o.maxSize != "" {
		n, err := filter.ParseSize(o.maxSize)
		if err != nil {
			return c, fmt.Errorf("invalid --max-size: %w", err)
		}
		c.MaxSize = n
	}
	if c.MaxSize > 0 && c.MinSize > c.MaxSize {
		return c, fmt.Errorf("--min-size %s is larger than --max-size %s", o.minSize, o.maxSize)
	}
	return c, nil
}

// resolveLayout lets -t and -w win over --layout.
func (o *options) resolveLayout() (ui.Layout, error) {
	switch {
	case o.tree:
		return ui.LayoutTree, nil
	case o.wide:
		return ui.LayoutWide, nil
	}
	return ui.ParseLayout(o.layout)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// setupLogging installs the default logger and returns a func that closes
// the log file, if any.
func setupLogging(stderr io.Writer, o options) func() {
	level := slog.LevelWarn
	switch {
	case o.debug || o.verbosity >= 2:
		level = slog.LevelDebug
	case o.verbosity == 1:
		level = slog.LevelInfo
	}

	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	var logHandler slog.Handler = textHandler
	closeLog := func() {}
	if o.logFile != "" {
		lf := &lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    10,
			MaxBackups: 3,
			Compress:   true,
		}
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
		closeLog = func() { _ = lf.Close() } //nolint:errcheck // best-effort close on exit
	}
	slog.SetDefault(slog.New(logHandler))
	return closeLog
}

// logEvents records engine events until the channel closes, passing each
// one on to forward when it is set.
func logEvents(events <-chan event.Event, forward chan<- event.Event) {
	ctx := context.Background()
	for ev := range events {
		slog.LogAttrs(ctx, ev.Level(), "dirx.event", ev.Attrs()...)
		if forward != nil {
			forward <- ev
		}
	}
	if forward != nil {
		close(forward)
	}
}

// showProgress reports whether a recursive walk should draw a progress
// line: only when stderr is a terminal and the listing goes elsewhere.
func (o *options) showProgress(stdout, stderr io.Writer, cfg engine.Config) bool {
	if o.noProgress || !(cfg.Recursive || cfg.Tree) {
		return false
	}
	errFile, ok := stderr.(*os.File)
	if !ok || !ui.IsTTY(errFile.Fd()) {
		return false
	}
	if outFile, ok := stdout.(*os.File); ok && ui.IsTTY(outFile.Fd()) {
		return false
	}
	return true
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, o *options) {
	changed := cmd.Flags().Changed
	if !changed("recursive") && defaults.Recursive != nil {
		o.recursive = *defaults.Recursive
	}
	if !changed("workers") && defaults.Workers != nil {
		o.workers = *defaults.Workers
	}
	if !changed("no-threads") && defaults.Threads != nil {
		o.noThreads = !*defaults.Threads
	}
	if !changed("sort") && defaults.Sort != nil {
		o.sortSpec = *defaults.Sort
	}
	if !changed("layout") && !changed("wide") && !changed("tree") && defaults.Layout != nil {
		o.layout = *defaults.Layout
	}
	if !changed("depth") && defaults.Depth != nil {
		o.depth = *defaults.Depth
	}
	if !changed("icons") && defaults.Icons != nil {
		o.icons = *defaults.Icons
	}
	if !changed("attributes") && defaults.Attributes != nil {
		o.attrSpec = *defaults.Attributes
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
