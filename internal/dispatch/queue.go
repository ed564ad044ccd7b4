package dispatch

// Queue is the shared pool of pending file paths. It is filled once at
// construction and only drained afterwards: each path is handed to exactly
// one caller of Next, and Next never blocks.
type Queue struct {
	ch chan string
}

// NewQueue returns a queue holding paths.
func NewQueue(paths []string) *Queue {
	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)
	return &Queue{ch: ch}
}

// Next claims the next pending path. It reports false once the queue is empty.
func (q *Queue) Next() (string, bool) {
	p, ok := <-q.ch
	return p, ok
}

// Len is the number of paths not yet claimed.
func (q *Queue) Len() int {
	return len(q.ch)
}
