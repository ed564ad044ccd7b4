// Package tui renders live progress of a run on a terminal.
package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"lintrun/internal/dispatch"
	"lintrun/internal/warning"
)

// Progress drives a Bubble Tea program showing how many files have been
// checked. It is safe to use from the dispatcher's workers.
type Progress struct {
	p          *tea.Program
	done       chan struct{}
	printLines bool
}

// StartProgress renders on out. When printLines is set, warnings passed to
// Emit are printed above the progress display instead of being dropped.
func StartProgress(out io.Writer, title string, total int, printLines bool) *Progress {
	pr := &Progress{
		p: tea.NewProgram(newProgressModel(title, total),
			tea.WithOutput(out),
			tea.WithInput(nil),
		),
		done:       make(chan struct{}),
		printLines: printLines,
	}
	go func() {
		defer close(pr.done)
		pr.p.Run()
	}()
	return pr
}

// OnProgress has the dispatch.ProgressFunc signature.
func (pr *Progress) OnProgress(done, total int) {
	pr.p.Send(fileDoneMsg{done: done, total: total})
}

// Emit implements dispatch.Sink.
func (pr *Progress) Emit(w warning.Warning) error {
	if pr.printLines {
		pr.p.Println(w.String())
	}
	pr.p.Send(warningMsg{})
	return nil
}

// Finish shows the summary and waits for the program to exit.
func (pr *Progress) Finish(stats *dispatch.Stats, err error) {
	pr.p.Send(runDoneMsg{stats: stats, err: err})
	<-pr.done
}
