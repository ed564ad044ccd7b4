package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"lintrun/internal/dispatch"
)

type progressModel struct {
	title    string
	spinner  spinner.Model
	bar      progress.Model
	done     int
	total    int
	warnings int
	started  time.Time
	finished bool
	stats    *dispatch.Stats
	err      error
}

func newProgressModel(title string, total int) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return progressModel{
		title:   title,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total:   total,
		started: time.Now(),
	}
}

// fileDoneMsg is sent after each file is checked.
type fileDoneMsg struct {
	done  int
	total int
}

// warningMsg counts a reported warning.
type warningMsg struct{}

// runDoneMsg is sent when the dispatcher returns.
type runDoneMsg struct {
	stats *dispatch.Stats
	err   error
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileDoneMsg:
		m.done = msg.done
		m.total = msg.total
		return m, nil
	case warningMsg:
		m.warnings++
		return m, nil
	case runDoneMsg:
		m.finished = true
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  "+m.title) + "\n")

	if m.finished {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("  ✗ %v", m.err)) + "\n")
			return b.String()
		}
		if m.stats != nil {
			b.WriteString(successStyle.Render(fmt.Sprintf("  ✓ %d files checked in %s", m.stats.Files, m.stats.Elapsed.Round(time.Millisecond))) + "\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("    %d reported, %d suppressed, %d outside the tree",
				m.stats.Warnings, m.stats.Suppressed, m.stats.Filtered)) + "\n")
			if m.stats.CheckerFailures > 0 {
				b.WriteString(warnStyle.Render(fmt.Sprintf("    %d checker invocations failed", m.stats.CheckerFailures)) + "\n")
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "  %s %s\n", m.spinner.View(), m.bar.ViewAs(m.percent()))
	fmt.Fprintf(&b, "  %d / %d files", m.done, m.total)
	if m.warnings > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  %d warnings", m.warnings)))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s elapsed", time.Since(m.started).Round(time.Second))) + "\n")
	return b.String()
}
