package checker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Build runs a full-tree compile and streams its combined output through a
// line filter.
type Build struct {
	Command string
	Args    []string
	Dir     string
}

// Run executes the build, writing every line accepted by keep to w. It
// returns the number of lines written. A non-zero build exit is returned as
// an error after all output has been filtered.
func (b *Build) Run(ctx context.Context, w io.Writer, keep func(string) bool) (int, error) {
	cmd := exec.CommandContext(ctx, b.Command, b.Args...)
	cmd.Dir = b.Dir
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", b.Command, err)
	}

	type filtered struct {
		n   int
		err error
	}
	done := make(chan filtered, 1)
	go func() {
		n, err := FilterLines(pr, w, keep)
		// Drain so the build never blocks on a full pipe after a write error.
		io.Copy(io.Discard, pr)
		done <- filtered{n, err}
	}()

	waitErr := cmd.Wait()
	pw.Close()
	res := <-done
	if res.err != nil {
		return res.n, res.err
	}
	if waitErr != nil {
		return res.n, fmt.Errorf("%s: %w", b.Command, waitErr)
	}
	return res.n, nil
}

// FilterLines copies the lines of r accepted by keep to w. A nil keep accepts
// every line.
func FilterLines(r io.Reader, w io.Writer, keep func(string) bool) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	n := 0
	for sc.Scan() {
		line := sc.Text()
		if keep != nil && !keep(line) {
			continue
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}

// PathPrefix returns a filter accepting lines of the form "<path>:..." where
// path is one of paths. A leading "./" on the line is ignored.
func PathPrefix(paths []string) func(string) bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(line string) bool {
		line = strings.TrimPrefix(line, "./")
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return false
		}
		return set[line[:i]]
	}
}
