// Package dispatch runs the checker over a fixed set of files with a pool of
// workers and reports every warning that survives attribution and
// suppression.
package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"lintrun/internal/checker"
	"lintrun/internal/suppress"
	"lintrun/internal/tags"
	"lintrun/internal/warning"
)

// Workers spend most of their time blocked on the checker process, so the
// pool is sized slightly above the CPU count.
const (
	workerHeadroom  = 2
	fallbackWorkers = 4
)

// ProgressFunc is called after each file completes.
type ProgressFunc func(done, total int)

// Config is the immutable input of Run.
type Config struct {
	// Workers is the pool size; zero means DefaultWorkers.
	Workers int
	Checker checker.Checker
	// Index is shared read-only by all workers; nil disables attribution.
	Index  *tags.Index
	Filter *suppress.Filter
	// PathFilter drops warnings reported against files outside the run.
	PathFilter bool
	Sinks      []Sink
	OnProgress ProgressFunc
}

// Stats reports the outcome of a run.
type Stats struct {
	Files           int
	Warnings        int
	Suppressed      int
	Filtered        int
	CheckerFailures int
	Elapsed         time.Duration
}

// DefaultWorkers is the CPU count plus headroom.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return fallbackWorkers
	}
	return n + workerHeadroom
}

type counters struct {
	files, warnings, suppressed, filtered, failures atomic.Int64
}

// Run checks every file exactly once and blocks until all workers are done.
//
// Each worker loops: claim a path from the queue, run the checker on it and
// wait for it to exit, then parse, attribute and filter its output line by
// line, emitting survivors in order. A worker stops when the queue is empty.
//
// A line that does not parse is fatal. The failing worker returns the error,
// the others finish the file they are on and stop claiming new ones, and Run
// returns that error once every worker has exited. Checker failures are only
// counted; whatever the checker printed is still parsed.
func Run(ctx context.Context, cfg Config, files []string) (*Stats, error) {
	start := time.Now()
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	workers = max(1, min(workers, len(files)))

	d := &dispatcher{
		cfg:    cfg,
		queue:  NewQueue(files),
		total:  len(files),
		ignore: cfg.Filter.Global(),
	}
	if cfg.PathFilter {
		d.candidates = make(map[string]bool, len(files))
		for _, f := range files {
			d.candidates[f] = true
		}
	}

	slog.Info("dispatch.start", "files", len(files), "workers", workers, "ignore", strings.Join(d.ignore, ","))

	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			return d.work(gctx)
		})
	}
	err := g.Wait()

	stats := &Stats{
		Files:           int(d.n.files.Load()),
		Warnings:        int(d.n.warnings.Load()),
		Suppressed:      int(d.n.suppressed.Load()),
		Filtered:        int(d.n.filtered.Load()),
		CheckerFailures: int(d.n.failures.Load()),
		Elapsed:         time.Since(start),
	}
	slog.Info("dispatch.done",
		"files", stats.Files,
		"warnings", stats.Warnings,
		"suppressed", stats.Suppressed,
		"filtered", stats.Filtered,
		"checker_failures", stats.CheckerFailures,
		"elapsed", stats.Elapsed.Round(time.Millisecond),
	)
	return stats, err
}

type dispatcher struct {
	cfg        Config
	queue      *Queue
	total      int
	ignore     []string
	candidates map[string]bool
	n          counters
}

func (d *dispatcher) work(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, ok := d.queue.Next()
		if !ok {
			return nil
		}
		if err := d.checkFile(ctx, path); err != nil {
			return err
		}
		done := d.n.files.Add(1)
		if d.cfg.OnProgress != nil {
			d.cfg.OnProgress(int(done), d.total)
		}
	}
}

func (d *dispatcher) checkFile(ctx context.Context, path string) error {
	res, err := d.cfg.Checker.Check(ctx, path, d.ignore)
	if err != nil {
		d.n.failures.Add(1)
		slog.Warn("dispatch.checker", "path", path, "err", err, "stdout_bytes", len(res.Stdout))
	}

	sc := bufio.NewScanner(bytes.NewReader(res.Stdout))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		w, err := warning.Parse(line)
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if err := d.report(w); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading checker output for %s: %w", path, err)
	}
	return nil
}

func (d *dispatcher) report(w warning.Warning) error {
	w.Path = strings.TrimPrefix(w.Path, "./")
	if d.candidates != nil && !d.candidates[w.Path] {
		d.n.filtered.Add(1)
		return nil
	}
	if sym, ok := d.cfg.Index.Attribute(w.Path, w.Line); ok {
		w = w.WithSymbol(sym)
	}
	if d.cfg.Filter.Suppressed(w) {
		d.n.suppressed.Add(1)
		return nil
	}
	for _, s := range d.cfg.Sinks {
		if err := s.Emit(w); err != nil {
			return err
		}
	}
	d.n.warnings.Add(1)
	return nil
}
