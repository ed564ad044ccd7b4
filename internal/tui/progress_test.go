package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lintrun/internal/dispatch"
)

func TestProgressModel_CountsFilesAndWarnings(t *testing.T) {
	t.Parallel()
	var m tea.Model = newProgressModel("lintrun /src", 4)

	m, _ = m.Update(fileDoneMsg{done: 1, total: 4})
	m, _ = m.Update(warningMsg{})
	m, _ = m.Update(warningMsg{})

	pm := m.(progressModel)
	assert.Equal(t, 1, pm.done)
	assert.Equal(t, 2, pm.warnings)
	assert.InDelta(t, 0.25, pm.percent(), 1e-9)

	view := pm.View()
	assert.Contains(t, view, "1 / 4 files")
	assert.Contains(t, view, "2 warnings")
}

func TestProgressModel_EmptyRunIsComplete(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.0, newProgressModel("x", 0).percent())
}

func TestProgressModel_DoneQuits(t *testing.T) {
	t.Parallel()
	m, cmd := newProgressModel("x", 2).Update(runDoneMsg{
		stats: &dispatch.Stats{Files: 2, Warnings: 3, Suppressed: 1, CheckerFailures: 1, Elapsed: time.Second},
	})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	view := m.View()
	assert.Contains(t, view, "2 files checked")
	assert.Contains(t, view, "3 reported, 1 suppressed")
	assert.Contains(t, view, "1 checker invocations failed")
}

func TestProgressModel_DoneWithError(t *testing.T) {
	t.Parallel()
	m, _ := newProgressModel("x", 2).Update(runDoneMsg{err: errors.New("malformed checker output")})
	assert.Contains(t, m.View(), "malformed checker output")
}
