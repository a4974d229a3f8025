package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// Options configures the progress reporter.
type Options struct {
	// Total is the number of URLs in the batch.
	Total int

	// Workers is the number of parallel workers (for display).
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to refresh the bar description.
	// Default: 500ms
	UpdateInterval time.Duration

	// Destination is the output location (for display).
	Destination string

	// Quiet disables all terminal output. Counters are still maintained.
	Quiet bool
}

// Reporter tracks batch progress and renders it as a terminal bar.
//
// All counter methods are safe for concurrent use. The progress counter
// proper (Completed) advances only through FileCompleted; skipped and failed
// files are tracked separately.
type Reporter struct {
	opts Options
	bar  *progressbar.ProgressBar

	completed  atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	inProgress atomic.Int64
	bytes      atomic.Int64

	mu        sync.Mutex
	startTime time.Time
	started   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopped   bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}
	if opts.Quiet {
		opts.Output = io.Discard
	}

	r := &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	r.bar = progressbar.NewOptions(opts.Total,
		progressbar.OptionSetWriter(opts.Output),
		progressbar.OptionSetDescription("[skyfetch] Downloading..."),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return r
}

// Start prints the header and begins refreshing the display.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.startTime = time.Now()

	fmt.Fprintf(r.opts.Output, "[skyfetch] Fetching %d URLs into %s | Workers: %d\n",
		r.opts.Total, r.opts.Destination, r.opts.Workers)
	r.bar.RenderBlank()

	go r.updateLoop()
}

// Stop stops the reporter and prints the final status. Safe to call more
// than once, and without a prior Start.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	close(r.stopCh)
	if started {
		<-r.doneCh
	}
}

// FileStarted marks a fetch as in progress.
func (r *Reporter) FileStarted() {
	r.inProgress.Add(1)
}

// FileCompleted marks a fetch as finished and advances the progress counter
// by exactly one.
func (r *Reporter) FileCompleted() {
	r.completed.Add(1)
	r.inProgress.Add(-1)
	r.bar.Add(1)
}

// FileFailed marks an in-progress fetch as failed.
func (r *Reporter) FileFailed() {
	r.failed.Add(1)
	r.inProgress.Add(-1)
}

// FileRejected records a URL that failed before any transfer started.
func (r *Reporter) FileRejected() {
	r.failed.Add(1)
}

// FileSkipped records a URL whose target already existed. It does not
// advance the progress counter.
func (r *Reporter) FileSkipped() {
	r.skipped.Add(1)
}

// FileDropped marks an in-progress fetch whose result was discarded because
// the target appeared in the meantime. It counts as skipped.
func (r *Reporter) FileDropped() {
	r.skipped.Add(1)
	r.inProgress.Add(-1)
}

// BytesWritten adds n to the byte count.
func (r *Reporter) BytesWritten(n int64) {
	r.bytes.Add(n)
}

// Completed returns the progress counter: the number of files fetched.
func (r *Reporter) Completed() int64 { return r.completed.Load() }

// Skipped returns the number of files skipped because they already existed.
func (r *Reporter) Skipped() int64 { return r.skipped.Load() }

// Failed returns the number of fetches that failed.
func (r *Reporter) Failed() int64 { return r.failed.Load() }

// Bytes returns the total number of bytes written.
func (r *Reporter) Bytes() int64 { return r.bytes.Load() }

// updateLoop periodically refreshes the bar description.
func (r *Reporter) updateLoop() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.bar.Describe(r.description())
		}
	}
}

func (r *Reporter) description() string {
	return fmt.Sprintf("[skyfetch] %s | %d skipped | %d failed | %d active",
		humanize.IBytes(uint64(r.bytes.Load())),
		r.skipped.Load(),
		r.failed.Load(),
		r.inProgress.Load(),
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	r.bar.Describe(r.description())
	r.bar.Exit()

	duration := time.Since(r.startTime)
	bytes := r.bytes.Load()
	var avgSpeed uint64
	if secs := duration.Seconds(); secs > 0 {
		avgSpeed = uint64(float64(bytes) / secs)
	}

	fmt.Fprintf(r.opts.Output, "\n[skyfetch] Fetched: %d | Skipped: %d | Failed: %d | Total: %d\n",
		r.completed.Load(),
		r.skipped.Load(),
		r.failed.Load(),
		r.opts.Total,
	)
	fmt.Fprintf(r.opts.Output, "[skyfetch] Total time: %s | %s written | Average speed: %s/s\n",
		duration.Round(time.Second),
		humanize.IBytes(uint64(bytes)),
		humanize.IBytes(avgSpeed),
	)
}
