package store

import "time"

// Run is one recorded lintrun invocation.
type Run struct {
	ID         int64
	Root       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Files      int
	Warnings   int
	Suppressed int
	// Status is "running", "ok" or "failed".
	Status string
}

// Finding is a stored warning.
type Finding struct {
	ID      int64
	RunID   int64
	Path    string
	Line    int
	Kind    string
	Message string
	// Symbol is empty when the warning was not attributed.
	Symbol string
}

// Query narrows ListFindings. Empty fields match everything; Path and Symbol
// match as prefixes.
type Query struct {
	Path   string
	Kind   string
	Symbol string
	Limit  int
}

// KindCount is the number of findings of one kind in a run.
type KindCount struct {
	Kind  string
	Count int
}

// RunTotals are the final counters written by FinishRun.
type RunTotals struct {
	Files      int
	Warnings   int
	Suppressed int
	Failed     bool
}
