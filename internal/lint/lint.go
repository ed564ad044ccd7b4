// Package lint wires file discovery, the tag index, the dispatcher and the
// findings store into a single run.
package lint

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"lintrun/internal/checker"
	"lintrun/internal/config"
	"lintrun/internal/dispatch"
	"lintrun/internal/store"
	"lintrun/internal/suppress"
	"lintrun/internal/tags"
	"lintrun/internal/tags/languages"
	"lintrun/internal/walker"
)

// Options holds the per-invocation inputs that are not part of lintrun.toml.
type Options struct {
	// Root is the tree being checked; the checker runs from here.
	Root     string
	Settings config.Config
	// DBPath enables recording findings when non-empty.
	DBPath     string
	Sinks      []dispatch.Sink
	OnProgress dispatch.ProgressFunc
}

// Linter is the public API for one checking run.
type Linter struct {
	opts    Options
	filter  *suppress.Filter
	source  tags.SymbolSource
	checker checker.Checker
	store   *store.SQLiteStore
}

// New validates settings and opens the findings store if requested.
func New(opts Options) (*Linter, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	opts.Root = root
	s := opts.Settings
	if err := s.Validate(); err != nil {
		return nil, err
	}

	filter, err := suppress.Compile(s.Suppress)
	if err != nil {
		return nil, err
	}

	l := &Linter{
		opts:   opts,
		filter: filter,
		source: NewSymbolSource(s.Tags, root),
		checker: &checker.Exec{
			Command:    s.Checker.Command,
			Args:       s.Checker.Args,
			IgnoreFlag: s.Checker.IgnoreFlag,
			Dir:        root,
		},
	}
	if opts.DBPath != "" {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		l.store = st
	}
	return l, nil
}

// NewSymbolSource returns the configured symbol source, or nil when symbol
// attribution is turned off.
func NewSymbolSource(cfg config.Tags, root string) tags.SymbolSource {
	var src tags.SymbolSource
	switch cfg.Source {
	case "ctags":
		src = &tags.Ctags{Command: cfg.Command, Args: cfg.Args, Dir: root}
	case "treesitter":
		reg := tags.NewRegistry()
		languages.RegisterAll(reg)
		src = &tags.TreeSitter{Registry: reg, Dir: root}
	default:
		return nil
	}
	if cfg.CacheDir != "" {
		dir := cfg.CacheDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		src = &tags.Cached{Source: src, Name: cfg.Source, Dir: dir, Root: root}
	}
	return src
}

// Discover lists the candidate files under root for the given settings.
func Discover(root string, s config.Config) ([]string, error) {
	files, err := walker.Walk(root, walker.Options{
		Extensions: s.Run.Extensions,
		Ignore:     s.Run.Ignore,
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Files lists the candidate files of the tree.
func (l *Linter) Files() ([]string, error) {
	return Discover(l.opts.Root, l.opts.Settings)
}

// Run discovers files, builds the tag index and dispatches the checker.
func (l *Linter) Run(ctx context.Context) (*dispatch.Stats, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}
	return l.RunFiles(ctx, files)
}

// RunFiles checks exactly the given root-relative files.
func (l *Linter) RunFiles(ctx context.Context, files []string) (*dispatch.Stats, error) {
	s := l.opts.Settings
	workers := s.Run.Workers
	if workers <= 0 {
		workers = dispatch.DefaultWorkers()
	}

	var idx *tags.Index
	if l.source != nil {
		var err error
		idx, err = tags.Build(ctx, l.source, files, tags.WithWorkers(workers))
		if err != nil {
			return nil, fmt.Errorf("build tag index: %w", err)
		}
	}

	sinks := append([]dispatch.Sink(nil), l.opts.Sinks...)
	var (
		rec   *store.Recorder
		runID int64
	)
	if l.store != nil {
		var err error
		runID, err = l.store.BeginRun(l.opts.Root, time.Now())
		if err != nil {
			return nil, err
		}
		rec = store.NewRecorder(l.store, runID)
		sinks = append(sinks, rec)
	}

	stats, runErr := dispatch.Run(ctx, dispatch.Config{
		Workers:    workers,
		Checker:    l.checker,
		Index:      idx,
		Filter:     l.filter,
		PathFilter: !s.Run.NoPathFilter,
		Sinks:      sinks,
		OnProgress: l.opts.OnProgress,
	}, files)

	if rec != nil {
		if err := rec.Close(); err != nil && runErr == nil {
			runErr = err
		}
		totals := store.RunTotals{
			Files:      stats.Files,
			Warnings:   stats.Warnings,
			Suppressed: stats.Suppressed,
			Failed:     runErr != nil,
		}
		if err := l.store.FinishRun(runID, totals); err != nil {
			slog.Warn("lint.finish_run", "run", runID, "err", err)
		}
	}
	return stats, runErr
}

// Close releases resources.
func (l *Linter) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
