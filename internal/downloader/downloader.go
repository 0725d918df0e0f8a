package downloader

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ksteptoe/sfdump-sub001/internal/entity"
	"github.com/ksteptoe/sfdump-sub001/internal/progress"
	"github.com/ksteptoe/sfdump-sub001/pkg/sharded"
)

// Fetcher opens the remote binary stream for a candidate. Implementations
// return typed errors for not-found/denied/network failures; the executor
// records them, it never interprets them.
type Fetcher interface {
	Open(ctx context.Context, c entity.CandidateRecord) (io.ReadCloser, error)
}

// Options configures a Run.
type Options struct {
	// Workers is the number of parallel download workers.
	// Default: 8
	Workers int

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// Log receives per-item failure warnings and the run summary.
	Log *slog.Logger
}

// stats tracks run accounting across workers.
type stats struct {
	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	bytes      atomic.Int64
}

// Run downloads every candidate into the store with bounded concurrency and
// returns exactly one outcome per candidate, indexed by input position.
//
// A failure while retrieving or writing a single candidate is recorded in
// that candidate's outcome and never aborts the batch. There is no automatic
// retry; re-attempting failed items is the backfill pass's job. Files already
// present in the store are rehashed and recorded without a fetch, so re-runs
// never overwrite previously downloaded data.
func Run(ctx context.Context, candidates []entity.CandidateRecord, fetcher Fetcher, store *sharded.Store, opts Options) []entity.DownloadOutcome {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	outcomes := make([]entity.DownloadOutcome, len(candidates))
	jobs := make(chan int)
	var st stats
	var wg sync.WaitGroup

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				// Workers write to disjoint slice slots; no lock needed.
				outcomes[idx] = download(ctx, candidates[idx], fetcher, store, log, opts.Progress, &st)
			}
		}()
	}

	for idx := range candidates {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	log.Info("download run complete",
		"candidates", len(candidates),
		"downloaded", st.downloaded.Load(),
		"skipped_existing", st.skipped.Load(),
		"errors", st.failed.Load(),
		"bytes", st.bytes.Load(),
	)

	return outcomes
}

// download processes a single candidate. All errors end up in the outcome.
func download(ctx context.Context, c entity.CandidateRecord, fetcher Fetcher, store *sharded.Store, log *slog.Logger, reporter *progress.Reporter, st *stats) entity.DownloadOutcome {
	if reporter != nil {
		reporter.FileStarted()
	}

	out := entity.DownloadOutcome{Candidate: c}

	filename := sharded.Filename(c.FileID, c.FileName, c.FileExtension)
	key := sharded.Key(c.FileSource.KindDir(), filename)

	// Resume: a non-empty blob from a previous run is recorded as-is.
	if exists, err := store.Exists(ctx, key); err == nil && exists {
		if hash, n, err := store.Rehash(ctx, key); err == nil {
			out.LocalPath = key
			out.ContentHash = hash
			out.ByteCount = n
			st.skipped.Add(1)
			st.bytes.Add(n)
			if reporter != nil {
				reporter.FileCompleted(n)
			}
			return out
		}
		// Unreadable blob: fall through and fetch it again.
	}

	body, err := fetcher.Open(ctx, c)
	if err != nil {
		return fail(out, err, log, reporter, st)
	}
	defer body.Close()

	hash, n, err := store.Write(ctx, key, body)
	if err != nil {
		return fail(out, err, log, reporter, st)
	}

	out.LocalPath = key
	out.ContentHash = hash
	out.ByteCount = n
	st.downloaded.Add(1)
	st.bytes.Add(n)
	if reporter != nil {
		reporter.FileCompleted(n)
	}
	return out
}

func fail(out entity.DownloadOutcome, err error, log *slog.Logger, reporter *progress.Reporter, st *stats) entity.DownloadOutcome {
	out.Error = err.Error()
	st.failed.Add(1)
	log.Warn("download failed",
		"file_id", out.Candidate.FileID,
		"file_name", out.Candidate.FileName,
		"source", string(out.Candidate.FileSource),
		"error", err,
	)
	if reporter != nil {
		reporter.FileFailed()
	}
	return out
}
