// Package progress provides progress reporting for bulk file downloads.
//
// This package outputs human-readable progress information to stderr:
// completed, failed, in-progress and pending file counts, plus total bytes.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalFiles: len(candidates),
//	    Workers:    8,
//	    Label:      "ContentVersion",
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as files complete
//	reporter.FileCompleted(size)
package progress
