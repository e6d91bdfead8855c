package packer

import (
	"fmt"
	"sync"
)

// Report collects what a pack or unpack run wrote and what it had to skip.
// It is safe for concurrent use.
type Report struct {
	mu      sync.Mutex
	Written []string
	Skipped []error
}

func (r *Report) wrote(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written = append(r.Written, path)
}

func (r *Report) skip(errs ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped = append(r.Skipped, errs...)
}

// Failed returns how many sheets or sprites were skipped.
func (r *Report) Failed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Skipped)
}

// Summary is a one-line description of the run, suitable for logging.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("%d images written, %d skipped", len(r.Written), len(r.Skipped))
}
