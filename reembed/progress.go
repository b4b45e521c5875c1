package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports how many entities a batch job has embedded and
// how many it had to give up on. It is safe for concurrent use, so pool
// workers may report their batches directly.
type ProgressTracker struct {
	mu           sync.Mutex
	writer       io.Writer
	phase        string
	total        int
	done         int
	failed       int
	every        int
	lastReported int
	start        time.Time
	started      bool
}

// ProgressSummary is the final state of a tracked job.
type ProgressSummary struct {
	Phase   string
	Total   int
	Done    int
	Failed  int
	Elapsed time.Duration
}

// Rate returns embedded entities per second.
func (s ProgressSummary) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Done) / s.Elapsed.Seconds()
}

func (s ProgressSummary) String() string {
	return fmt.Sprintf("%s: %d/%d entities embedded, %d failed in %v (%.1f entities/s)",
		s.Phase, s.Done, s.Total, s.Failed, s.Elapsed.Round(time.Millisecond), s.Rate())
}

// NewProgressTracker creates a tracker for total entities that prints a
// status line to writer every time another `every` entities are settled.
// A nil writer discards output.
func NewProgressTracker(writer io.Writer, phase string, total, every int) *ProgressTracker {
	if writer == nil {
		writer = io.Discard
	}
	if every < 1 {
		every = 1
	}
	return &ProgressTracker{
		writer: writer,
		phase:  phase,
		total:  total,
		every:  every,
	}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.start = time.Now()
	p.started = true
	p.done, p.failed, p.lastReported = 0, 0, 0
}

// Done records n entities embedded and indexed.
func (p *ProgressTracker) Done(n int) {
	p.add(n, 0)
}

// Failed records n entities whose batch could not be embedded.
func (p *ProgressTracker) Failed(n int) {
	p.add(0, n)
}

func (p *ProgressTracker) add(done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.done += done
	p.failed += failed
	if settled := p.done + p.failed; settled-p.lastReported >= p.every {
		p.report()
		p.lastReported = settled
	}
}

// Finish prints the final status line and returns the summary. Entities
// never reported are neither done nor failed.
func (p *ProgressTracker) Finish() ProgressSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	summary := ProgressSummary{Phase: p.phase, Total: p.total, Done: p.done, Failed: p.failed}
	if !p.started {
		return summary
	}
	summary.Elapsed = time.Since(p.start)
	p.report()
	fmt.Fprintln(p.writer)
	return summary
}

// report prints the status line. Must be called with the lock held.
func (p *ProgressTracker) report() {
	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.done+p.failed) / float64(p.total) * 100.0
	}
	rate := 0.0
	if elapsed := time.Since(p.start); elapsed > 0 {
		rate = float64(p.done) / elapsed.Seconds()
	}

	fmt.Fprintf(p.writer, "\r%s: %d/%d entities (%.1f%%), %d failed, %.1f entities/s",
		p.phase, p.done, p.total, percentage, p.failed, rate)
}
