package tags

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrUnsupported is returned by a SymbolSource that cannot index a file type.
var ErrUnsupported = errors.New("unsupported file type")

// SymbolSource lists the symbol definitions of one file, in any order.
type SymbolSource interface {
	Symbols(ctx context.Context, path string) ([]Tag, error)
}

// SourceFunc adapts a function to SymbolSource.
type SourceFunc func(ctx context.Context, path string) ([]Tag, error)

func (f SourceFunc) Symbols(ctx context.Context, path string) ([]Tag, error) {
	return f(ctx, path)
}

type buildOptions struct {
	workers int
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithWorkers bounds how many files are indexed at once.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Build queries src for every indexable path and returns the resulting Index.
// A file the source fails on is left out of the index; only cancellation of
// ctx fails the build.
func Build(ctx context.Context, src SymbolSource, paths []string, opts ...BuildOption) (*Index, error) {
	o := buildOptions{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	idx := &Index{tables: make(map[string]Table, len(paths))}
	var (
		mu      sync.Mutex
		skipped int
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, path := range paths {
		if !Indexable(path) {
			skipped++
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tags, err := src.Symbols(gctx, path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if errors.Is(err, ErrUnsupported) {
					slog.Debug("tags.unsupported", "path", path)
				} else {
					slog.Warn("tags.failed", "path", path, "err", err)
				}
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			table := sortTable(tags)

			mu.Lock()
			idx.tables[path] = table
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("tags.build",
		"indexed", idx.Len(),
		"skipped", skipped,
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return idx, nil
}
