// Package warning parses one line of checker output into a Warning.
package warning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("malformed checker output")

// lineRe matches "<path>:<line>: <severity>:<kind>: <message>".
var lineRe = regexp.MustCompile(`^([^:]+):([0-9]+): [^:]*:([^:\s]+): (.*)$`)

// Warning is one diagnostic emitted by the checker. Symbol is only meaningful
// when HasSymbol is set.
type Warning struct {
	Path      string
	Line      int
	Kind      string
	Message   string
	Symbol    string
	HasSymbol bool
}

// WithSymbol returns a copy of w attributed to sym.
func (w Warning) WithSymbol(sym string) Warning {
	w.Symbol = sym
	w.HasSymbol = true
	return w
}

// String renders the report form "<path>:<line>: <message>".
func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Path, w.Line, w.Message)
}

// ParseError reports a checker line that does not have the expected shape.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %q", ErrMalformed, e.Reason, e.Line)
}

func (e *ParseError) Unwrap() error { return ErrMalformed }

// Parse turns raw into a Warning with no symbol attached.
func Parse(raw string) (Warning, error) {
	raw = strings.TrimRight(raw, "\r")
	m := lineRe.FindStringSubmatch(raw)
	if m == nil {
		return Warning{}, &ParseError{Line: raw, Reason: "unexpected shape"}
	}
	line, err := strconv.Atoi(m[2])
	if err != nil || line < 1 {
		return Warning{}, &ParseError{Line: raw, Reason: "line number out of range"}
	}
	return Warning{
		Path:    m[1],
		Line:    line,
		Kind:    m[3],
		Message: m[4],
	}, nil
}
