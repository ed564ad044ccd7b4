package suppress

import (
	"context"
	"log/slog"
	"sync"

	"github.com/risor-io/risor"

	"lintrun/internal/warning"
)

// condition is a Risor expression evaluated against a warning, with the
// globals path, line, kind, message and symbol. Evaluation errors count as
// false and are logged once.
type condition struct {
	source string
	label  string
	warned sync.Once
}

func (c *condition) eval(w warning.Warning) bool {
	result, err := risor.Eval(context.Background(), c.source,
		risor.WithGlobal("path", w.Path),
		risor.WithGlobal("line", int64(w.Line)),
		risor.WithGlobal("kind", w.Kind),
		risor.WithGlobal("message", w.Message),
		risor.WithGlobal("symbol", w.Symbol),
	)
	if err != nil {
		c.warned.Do(func() {
			slog.Warn("suppress.when", "rule", c.label, "expr", c.source, "err", err)
		})
		return false
	}
	return result.IsTruthy()
}
