package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lintrun/internal/warning"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "findings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	latest, err := s.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)

	id, err := s.BeginRun("/src/linux", time.Now())
	require.NoError(t, err)

	latest, err = s.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id, latest.ID)
	assert.Equal(t, "running", latest.Status)
	assert.Nil(t, latest.FinishedAt)

	require.NoError(t, s.FinishRun(id, RunTotals{Files: 5, Warnings: 2, Suppressed: 1}))

	latest, err = s.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, "ok", latest.Status)
	assert.Equal(t, 5, latest.Files)
	assert.Equal(t, 2, latest.Warnings)
	assert.Equal(t, 1, latest.Suppressed)
	assert.NotNil(t, latest.FinishedAt)

	assert.Error(t, s.FinishRun(id+100, RunTotals{}))

	got, err := s.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/src/linux", got.Root)

	missing, err := s.GetRun(id + 100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListRuns_NewestFirst(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	first, err := s.BeginRun("/a", time.Now())
	require.NoError(t, err)
	second, err := s.BeginRun("/b", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(second, RunTotals{Failed: true}))

	runs, err := s.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, first, runs[1].ID)
}

func TestListFindings_Filters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	id, err := s.BeginRun("/src", time.Now())
	require.NoError(t, err)

	require.NoError(t, s.InsertFindings(id, []Finding{
		{Path: "drivers/b.c", Line: 9, Kind: "LONG_LINE", Message: "m1", Symbol: "probe"},
		{Path: "drivers/a.c", Line: 3, Kind: "SPACING", Message: "m2", Symbol: "init_x"},
		{Path: "drivers/a.c", Line: 1, Kind: "LONG_LINE", Message: "m3"},
		{Path: "lib/drivers_c.c", Line: 1, Kind: "LONG_LINE", Message: "m4"},
	}))

	all, err := s.ListFindings(id, Query{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "drivers/a.c", all[0].Path)
	assert.Equal(t, 1, all[0].Line)

	byPath, err := s.ListFindings(id, Query{Path: "drivers/"})
	require.NoError(t, err)
	assert.Len(t, byPath, 3)

	byKind, err := s.ListFindings(id, Query{Kind: "LONG_LINE", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, byKind, 2)

	bySymbol, err := s.ListFindings(id, Query{Symbol: "init"})
	require.NoError(t, err)
	require.Len(t, bySymbol, 1)
	assert.Equal(t, "m2", bySymbol[0].Message)

	wildcard, err := s.ListFindings(id, Query{Path: "lib/drivers_"})
	require.NoError(t, err)
	assert.Len(t, wildcard, 1)

	counts, err := s.KindCounts(id)
	require.NoError(t, err)
	assert.Equal(t, []KindCount{{"LONG_LINE", 3}, {"SPACING", 1}}, counts)
}

func TestRecorder_StoresConcurrentEmits(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	id, err := s.BeginRun("/src", time.Now())
	require.NoError(t, err)

	r := NewRecorder(s, id)
	var wg sync.WaitGroup
	for worker := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 300 {
				w := warning.Warning{Path: fmt.Sprintf("w%d.c", worker), Line: i + 1, Kind: "K", Message: "m"}
				if i%2 == 0 {
					w = w.WithSymbol("fn")
				}
				assert.NoError(t, r.Emit(w))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, r.Close())

	all, err := s.ListFindings(id, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 1200)

	sym, err := s.ListFindings(id, Query{Symbol: "fn"})
	require.NoError(t, err)
	assert.Len(t, sym, 600)
}

type failingStore struct {
	Store
}

func (failingStore) InsertFindings(int64, []Finding) error { return errors.New("disk full") }

func TestRecorder_WriteErrorSurfaces(t *testing.T) {
	t.Parallel()
	r := NewRecorder(failingStore{}, 1)

	require.NoError(t, r.Emit(warning.Warning{Path: "a.c", Line: 1}))
	err := r.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
