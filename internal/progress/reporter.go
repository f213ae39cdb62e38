package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Goal is the target number of acquired resources, existing included.
	Goal int

	// Existing is the number of resources already present at startup.
	Existing int

	// BatchSize is the per-round concurrency (for display).
	BatchSize int

	// Endpoint is the probed URL template (for display).
	Endpoint string

	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress information. Counter updates are
// atomic so fetch goroutines may report in-flight state while the engine's
// control goroutine reports folded outcomes.
type Reporter struct {
	opts Options

	acquired  atomic.Int64 // newly acquired this run
	failed    atomic.Int64
	attempted atomic.Int64
	inFlight  atomic.Int32

	mu        sync.Mutex
	startTime time.Time
	stopCh    chan struct{}
	stopped   bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()

	fmt.Fprintf(r.opts.Output, "[beerscape] Probing: %s\n", r.opts.Endpoint)
	fmt.Fprintf(r.opts.Output, "[beerscape] Goal: %d | Existing: %d | Batch size: %d\n",
		r.opts.Goal,
		r.opts.Existing,
		r.opts.BatchSize,
	)

	go r.updateLoop()
}

// Stop stops the progress reporter and prints a final status line.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
}

// FetchStarted marks a probe as in flight.
func (r *Reporter) FetchStarted() {
	r.inFlight.Add(1)
}

// FetchFinished marks a probe as no longer in flight.
func (r *Reporter) FetchFinished() {
	r.inFlight.Add(-1)
}

// Acquired records one successfully acquired resource.
func (r *Reporter) Acquired() {
	r.acquired.Add(1)
	r.attempted.Add(1)
}

// Failed records one failed attempt.
func (r *Reporter) Failed() {
	r.failed.Add(1)
	r.attempted.Add(1)
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	acquired := r.acquired.Load()
	failed := r.failed.Load()
	inFlight := r.inFlight.Load()
	position := int64(r.opts.Existing) + acquired

	var percent float64
	if r.opts.Goal > 0 {
		percent = float64(position) / float64(r.opts.Goal) * 100
	}

	elapsed := time.Since(r.startTime).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	rate := float64(acquired) / elapsed

	eta := "calculating..."
	if rate > 0 {
		remaining := float64(int64(r.opts.Goal) - position)
		if remaining < 0 {
			remaining = 0
		}
		eta = formatDuration(time.Duration(remaining / rate * float64(time.Second)))
	}

	fmt.Fprintf(r.opts.Output, "\r[beerscape] Progress: %d/%d (%.1f%%) | Failed: %d | In-flight: %d | Rate: %.1f/s | ETA: %s    ",
		position,
		r.opts.Goal,
		percent,
		failed,
		inFlight,
		rate,
		eta,
	)
}

// printFinalStatus outputs the final status line.
func (r *Reporter) printFinalStatus() {
	acquired := r.acquired.Load()
	position := int64(r.opts.Existing) + acquired
	duration := time.Since(r.startTime)

	var percent float64
	if r.opts.Goal > 0 {
		percent = float64(position) / float64(r.opts.Goal) * 100
	}

	fmt.Fprintf(r.opts.Output, "\r[beerscape] Progress: %d/%d (%.1f%%) | Failed: %d | Elapsed: %s    \n",
		position,
		r.opts.Goal,
		percent,
		r.failed.Load(),
		formatDuration(duration),
	)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
