// Package backfill reconciles the master documents index against local
// storage, re-attempting retrieval only for entries still missing a local
// copy.
//
// Backfill is a single-shot remediation pass, not a parallel batch job: it
// takes the missing set in index order, optionally limited, and reuses the
// download executor with its own worker count. Entries that fail again are
// left missing for a future pass; the pass itself is idempotent.
package backfill

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/ksteptoe/sfdump-sub001/internal/downloader"
	"github.com/ksteptoe/sfdump-sub001/internal/entity"
	"github.com/ksteptoe/sfdump-sub001/internal/index"
	"github.com/ksteptoe/sfdump-sub001/pkg/sharded"
)

// Options configures a backfill pass.
type Options struct {
	// Limit caps how many missing entries are processed. 0 = unbounded.
	Limit int

	// DryRun performs selection and reporting only: no network calls, no
	// filesystem writes, no index mutation.
	DryRun bool

	// Workers is the executor worker count for this pass.
	// Default: 16
	Workers int
}

// Result summarizes one backfill pass.
type Result struct {
	Missing   int // entries still missing in the index
	Attempted int // entries selected this pass (after Limit)
	Succeeded int // downloads that succeeded; index updated
	Failed    int // downloads that failed; left missing
	Skipped   int // already on disk; index repaired without a fetch
}

// Coordinator runs backfill passes against one master index.
type Coordinator struct {
	index   *index.Store
	fetcher downloader.Fetcher
	store   *sharded.Store
	log     *slog.Logger
}

// New creates a coordinator.
func New(idx *index.Store, fetcher downloader.Fetcher, store *sharded.Store, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{index: idx, fetcher: fetcher, store: store, log: log}
}

// Run selects index entries with file_source == File and an empty local
// path, then downloads them and updates the index for every success. A
// missing index file is not an error; there is simply nothing to do.
func (c *Coordinator) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Workers <= 0 {
		opts.Workers = 16
	}

	entries, err := c.index.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log.Warn("master index not found, nothing to backfill", "path", c.index.Path())
			return Result{}, nil
		}
		return Result{}, err
	}

	// Select still-missing modern files, preserving index order.
	var missing []int
	for i, e := range entries {
		if e.FileSource == entity.SourceFile && e.LocalPath == "" {
			missing = append(missing, i)
		}
	}

	res := Result{Missing: len(missing)}

	todo := missing
	if opts.Limit > 0 && len(todo) > opts.Limit {
		todo = todo[:opts.Limit]
	}
	res.Attempted = len(todo)

	c.log.Info("backfill selection",
		"missing", res.Missing, "selected", res.Attempted,
		"limit", opts.Limit, "dry_run", opts.DryRun)

	if opts.DryRun || len(todo) == 0 {
		return res, nil
	}

	// Entries whose file is already on disk just get their path repaired.
	var fetchIdx []int
	var candidates []entity.CandidateRecord
	for _, i := range todo {
		e := entries[i]
		key := sharded.Key(e.FileSource.KindDir(), sharded.Filename(e.FileID, e.FileName, e.FileExtension))
		if exists, err := c.store.Exists(ctx, key); err == nil && exists {
			entries[i].LocalPath = key
			res.Skipped++
			continue
		}
		fetchIdx = append(fetchIdx, i)
		candidates = append(candidates, entity.CandidateRecord{
			ObjectType:    e.ObjectType,
			RecordID:      e.RecordID,
			FileID:        e.FileID,
			FileName:      e.FileName,
			FileExtension: e.FileExtension,
			FileSource:    e.FileSource,
		})
	}

	outcomes := downloader.Run(ctx, candidates, c.fetcher, c.store, downloader.Options{
		Workers: opts.Workers,
		Log:     c.log,
	})

	for i, out := range outcomes {
		if out.Failed() {
			res.Failed++
			continue
		}
		entries[fetchIdx[i]].LocalPath = out.LocalPath
		res.Succeeded++
	}

	if res.Succeeded > 0 || res.Skipped > 0 {
		if err := c.index.Save(entries); err != nil {
			return res, err
		}
		c.log.Info("master index updated",
			"path", c.index.Path(), "new_paths", res.Succeeded+res.Skipped)
	}

	return res, nil
}
