package dispatch

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"lintrun/internal/warning"
)

// Sink receives every warning that survives filtering. Emit is called from
// several workers at once.
type Sink interface {
	Emit(w warning.Warning) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(w warning.Warning) error

func (f SinkFunc) Emit(w warning.Warning) error { return f(w) }

// Printer writes "<path>:<line>: <message>" lines. Lines from different
// workers never interleave mid-line.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	loc *color.Color
}

// NewPrinter returns a Printer writing to out. With colored set the location
// prefix is highlighted regardless of whether out is a terminal.
func NewPrinter(out io.Writer, colored bool) *Printer {
	p := &Printer{out: out}
	if colored {
		p.loc = color.New(color.FgYellow, color.Bold)
		p.loc.EnableColor()
	}
	return p
}

// Emit implements Sink.
func (p *Printer) Emit(w warning.Warning) error {
	var line string
	if p.loc != nil {
		line = p.loc.Sprintf("%s:%d:", w.Path, w.Line) + " " + w.Message + "\n"
	} else {
		line = w.String() + "\n"
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.out, line); err != nil {
		return fmt.Errorf("print warning: %w", err)
	}
	return nil
}
