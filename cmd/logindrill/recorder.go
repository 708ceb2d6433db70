package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/gignut/logindrill/internal/scenario"
)

// tallyRecorder prints one line per classified attempt and keeps running
// totals for the final summary. Safe for concurrent use.
type tallyRecorder struct {
	mu     sync.Mutex
	out    io.Writer
	ok     int
	failed int
}

func newTallyRecorder(out io.Writer) *tallyRecorder {
	return &tallyRecorder{out: out}
}

func (r *tallyRecorder) Record(res scenario.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Outcome.OK {
		r.ok++
	} else {
		r.failed++
	}
	fmt.Fprintf(r.out, "[logindrill] attempt %d %s: %s\n", res.Attempt, res.Email, res.Outcome)
}

// Failed reports how many recorded attempts were classified as failures.
func (r *tallyRecorder) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *tallyRecorder) summarize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "[logindrill] done: %d attempts, %d ok, %d failed\n", r.ok+r.failed, r.ok, r.failed)
}
