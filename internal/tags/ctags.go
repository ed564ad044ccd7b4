package tags

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Ctags runs an external symbol tool per file. The tool must print one
// record per line whose first field is the symbol name and second field the
// 1-based line number, e.g. `ctags -x --_xformat="%N %n"`.
type Ctags struct {
	Command string
	Args    []string
	// Dir is the working directory; paths are passed relative to it.
	Dir string
}

// Symbols implements SymbolSource.
func (c *Ctags) Symbols(ctx context.Context, path string) ([]Tag, error) {
	args := append(append([]string(nil), c.Args...), path)
	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.Dir = c.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", c.Command, path, err, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", c.Command, path, err)
	}
	tags, err := ParseXref(out)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.Command, path, err)
	}
	return tags, nil
}

// ParseXref reads "<symbol> <line> ..." records. Blank lines are skipped; any
// other record without a positive line number is an error.
func ParseXref(out []byte) ([]Tag, error) {
	var tags []Tag
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("record %d: want <symbol> <line>, got %q", n, sc.Text())
		}
		line, err := strconv.Atoi(fields[1])
		if err != nil || line < 1 {
			return nil, fmt.Errorf("record %d: bad line number %q", n, fields[1])
		}
		tags = append(tags, Tag{Line: line, Symbol: fields[0]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}
