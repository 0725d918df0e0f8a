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
	// TotalFiles is the number of files queued for download.
	TotalFiles int

	// Workers is the number of parallel workers.
	Workers int

	// Label names the batch being downloaded (for display).
	Label string

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter outputs human-readable progress information.
type Reporter struct {
	opts Options

	mu             sync.Mutex
	completedBytes atomic.Int64
	completedFiles atomic.Int32
	failedFiles    atomic.Int32
	inProgress     atomic.Int32
	startTime      time.Time
	stopCh         chan struct{}
	stopped        bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
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

	fmt.Fprintf(r.opts.Output, "[sfdump] Downloading: %s | Files: %d | Workers: %d\n",
		r.opts.Label, r.opts.TotalFiles, r.opts.Workers)

	go r.updateLoop()
}

// Stop stops the progress reporter.
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

// FileStarted marks a file as in progress.
func (r *Reporter) FileStarted() {
	r.inProgress.Add(1)
}

// FileCompleted marks a file as completed.
func (r *Reporter) FileCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedFiles.Add(1)
	r.inProgress.Add(-1)
}

// FileFailed marks a file as failed (removes from in-progress).
func (r *Reporter) FileFailed() {
	r.failedFiles.Add(1)
	r.inProgress.Add(-1)
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
	completed := int(r.completedFiles.Load())
	failed := int(r.failedFiles.Load())
	inProgress := int(r.inProgress.Load())
	bytes := r.completedBytes.Load()

	pending := r.opts.TotalFiles - completed - failed - inProgress
	if pending < 0 {
		pending = 0
	}

	fmt.Fprintf(r.opts.Output,
		"\r[sfdump] Files: %d/%d done | %d failed | %d in-progress | %d pending | %s    ",
		completed, r.opts.TotalFiles, failed, inProgress, pending, FormatBytes(bytes))
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	completed := int(r.completedFiles.Load())
	failed := int(r.failedFiles.Load())
	bytes := r.completedBytes.Load()
	duration := time.Since(r.startTime)

	fmt.Fprintf(r.opts.Output,
		"\r[sfdump] Files: %d done | %d failed | %s in %s    \n",
		completed, failed, FormatBytes(bytes), FormatDuration(duration))
}

// FormatBytes formats a byte count as a human-readable string.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats a duration as a compact human-readable string.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return d.String()
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
