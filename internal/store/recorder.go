package store

import (
	"fmt"
	"sync"

	"lintrun/internal/warning"
)

const recordBatchSize = 256

// Recorder stores warnings as they are reported. Emit may be called from
// many goroutines; a single writer goroutine commits findings in batches.
// Close must be called once, after the last Emit.
type Recorder struct {
	store Store
	runID int64
	ch    chan Finding
	done  chan struct{}

	mu  sync.Mutex
	err error
}

// NewRecorder starts a recorder writing into runID.
func NewRecorder(s Store, runID int64) *Recorder {
	r := &Recorder{
		store: s,
		runID: runID,
		ch:    make(chan Finding, recordBatchSize),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Emit queues w for storage. It fails once a previous batch could not be written.
func (r *Recorder) Emit(w warning.Warning) error {
	if err := r.failure(); err != nil {
		return err
	}
	r.ch <- Finding{
		RunID:   r.runID,
		Path:    w.Path,
		Line:    w.Line,
		Kind:    w.Kind,
		Message: w.Message,
		Symbol:  w.Symbol,
	}
	return nil
}

// Close flushes pending findings and returns the first write error.
func (r *Recorder) Close() error {
	close(r.ch)
	<-r.done
	return r.failure()
}

func (r *Recorder) failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) loop() {
	defer close(r.done)
	batch := make([]Finding, 0, recordBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if r.failure() == nil {
			if err := r.store.InsertFindings(r.runID, batch); err != nil {
				r.mu.Lock()
				r.err = fmt.Errorf("record findings: %w", err)
				r.mu.Unlock()
			}
		}
		batch = batch[:0]
	}
	for f := range r.ch {
		batch = append(batch, f)
		if len(batch) == cap(batch) {
			flush()
		}
		// Flush whenever the queue runs dry so findings land promptly.
		if len(r.ch) == 0 {
			flush()
		}
	}
	flush()
}
