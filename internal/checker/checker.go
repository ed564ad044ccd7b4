// Package checker runs the external per-file checker and the full-tree build.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is what one checker invocation produced.
type Result struct {
	Stdout   []byte
	ExitCode int
}

// Checker runs an analysis tool on a single file. ignore lists warning kinds
// the tool must not report.
type Checker interface {
	Check(ctx context.Context, path string, ignore []string) (Result, error)
}

// Func adapts a function to Checker.
type Func func(ctx context.Context, path string, ignore []string) (Result, error)

func (f Func) Check(ctx context.Context, path string, ignore []string) (Result, error) {
	return f(ctx, path, ignore)
}

// ExitError reports a checker that ran but exited non-zero. The Result
// returned alongside it still carries whatever the checker printed.
type ExitError struct {
	Path   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("checker exited %d on %s: %s", e.Code, e.Path, e.Stderr)
	}
	return fmt.Sprintf("checker exited %d on %s", e.Code, e.Path)
}

// Exec runs Command once per file as
//
//	Command Args... [IgnoreFlag kind1,kind2,...] path
//
// The process always runs to completion; there is no timeout and ctx does
// not kill it.
type Exec struct {
	Command    string
	Args       []string
	IgnoreFlag string
	// Dir is the working directory; paths are passed relative to it.
	Dir string
}

// Argv returns the arguments passed to Command for path.
func (e *Exec) Argv(path string, ignore []string) []string {
	argv := append([]string(nil), e.Args...)
	if len(ignore) > 0 && e.IgnoreFlag != "" {
		argv = append(argv, e.IgnoreFlag, strings.Join(ignore, ","))
	}
	return append(argv, path)
}

// Check implements Checker.
func (e *Exec) Check(_ context.Context, path string, ignore []string) (Result, error) {
	cmd := exec.Command(e.Command, e.Argv(path, ignore)...)
	cmd.Dir = e.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes()}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{Path: path, Code: res.ExitCode, Stderr: strings.TrimSpace(stderr.String())}
	}
	return res, fmt.Errorf("run %s on %s: %w", e.Command, path, err)
}
