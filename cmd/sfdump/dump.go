package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ksteptoe/sfdump-sub001/internal/downloader"
	"github.com/ksteptoe/sfdump-sub001/internal/entity"
	"github.com/ksteptoe/sfdump-sub001/internal/metadata"
	"github.com/ksteptoe/sfdump-sub001/internal/partition"
	"github.com/ksteptoe/sfdump-sub001/internal/progress"
	"github.com/ksteptoe/sfdump-sub001/internal/salesforce"
	"github.com/ksteptoe/sfdump-sub001/pkg/sharded"
)

var (
	dumpKind     string
	dumpWhere    string
	dumpOrder    string
	dumpWorkers  int
	dumpProgress bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Download file binaries and record metadata CSVs",
	Long: `Enumerate Attachment and/or ContentVersion records, download their
binaries into sharded storage under the export root and record one metadata
row per candidate. Individual download failures never abort the run; they
are recorded in the metadata for a later audit/backfill cycle.

Set chunk.total/chunk.index (or SFDUMP_FILES_CHUNK_TOTAL/_INDEX) to split the
candidate set deterministically across multiple worker processes.`,
	RunE: runDump,
}

func init() {
	f := dumpCmd.Flags()
	f.StringVar(&dumpKind, "kind", "all", "what to dump: attachments, files or all")
	f.StringVar(&dumpWhere, "where", "", "optional SOQL filter for enumeration")
	f.StringVar(&dumpOrder, "order", "", "candidate ordering by id: asc or desc")
	f.IntVar(&dumpWorkers, "workers", 0, "parallel download workers (default from config)")
	f.BoolVar(&dumpProgress, "progress", false, "show download progress")
}

func runDump(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if dumpKind != "all" && dumpKind != "attachments" && dumpKind != "files" {
		return fmt.Errorf("invalid --kind %q", dumpKind)
	}
	if dumpWhere == "" {
		dumpWhere = cfg.Where
	}
	if dumpOrder == "" {
		dumpOrder = cfg.Order
	}
	workers := cfg.Workers
	if dumpWorkers > 0 {
		workers = dumpWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := log.With("run_id", uuid.NewString())

	client := newClient()
	enum := salesforce.NewEnumerator(client, salesforce.DefaultPrefixes(), dumpOrder, log)
	fetcher := &salesforce.CandidateFetcher{Client: client}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	spec := partition.Parse(cfg.Chunk.Total, cfg.Chunk.Index, log)
	if spec.Active() {
		log.Info("partitioning enabled", "total", spec.Total(), "index", spec.Index())
	}

	writer := metadata.NewWriter(afero.NewOsFs())

	if dumpKind == "all" || dumpKind == "attachments" {
		if err := dumpAttachments(ctx, enum, fetcher, store, writer, spec, workers, log); err != nil {
			return err
		}
	}
	if dumpKind == "all" || dumpKind == "files" {
		if err := dumpContentFiles(ctx, enum, fetcher, store, writer, spec, workers, log); err != nil {
			return err
		}
	}
	return nil
}

// dumpContentFiles exports the modern file representation plus its link table.
func dumpContentFiles(ctx context.Context, enum *salesforce.Enumerator, fetcher downloader.Fetcher, store *sharded.Store, writer *metadata.Writer, spec partition.Spec, workers int, log *slog.Logger) error {
	candidates, err := enum.ContentFiles(ctx, dumpWhere)
	if err != nil {
		return err // enumeration failures abort the run
	}
	candidates = spec.Select(candidates)

	outcomes := runExecutor(ctx, "ContentVersion", candidates, fetcher, store, workers, log)

	// Links are fetched for every enumerated document, independent of
	// download success.
	seen := make(map[string]bool)
	var docIDs []string
	for _, c := range candidates {
		if c.FileLinkID != "" && !seen[c.FileLinkID] {
			seen[c.FileLinkID] = true
			docIDs = append(docIDs, c.FileLinkID)
		}
	}
	links, err := enum.Links(ctx, docIDs)
	if err != nil {
		return err
	}

	metaPath := exportPath("links", "content_versions.csv")
	linksPath := exportPath("links", "content_document_links.csv")
	res, err := writer.Write(entity.SourceFile, outcomes, links, metaPath, linksPath)
	if err != nil {
		return err
	}

	log.Info("content files recorded",
		"count", res.Count,
		"bytes", res.TotalBytes,
		"links", len(links),
		"meta_csv", metaPath,
		"links_csv", linksPath,
	)
	return nil
}

// dumpAttachments exports the legacy attachment representation. Its link
// table exists for tooling symmetry but is always header-only.
func dumpAttachments(ctx context.Context, enum *salesforce.Enumerator, fetcher downloader.Fetcher, store *sharded.Store, writer *metadata.Writer, spec partition.Spec, workers int, log *slog.Logger) error {
	candidates, err := enum.Attachments(ctx, dumpWhere)
	if err != nil {
		return err
	}
	candidates = spec.Select(candidates)

	outcomes := runExecutor(ctx, "Attachment", candidates, fetcher, store, workers, log)

	metaPath := exportPath("links", "attachments.csv")
	linksPath := exportPath("links", "attachment_links.csv")
	res, err := writer.Write(entity.SourceAttachment, outcomes, nil, metaPath, linksPath)
	if err != nil {
		return err
	}

	log.Info("attachments recorded",
		"count", res.Count,
		"bytes", res.TotalBytes,
		"meta_csv", metaPath,
	)
	return nil
}

func runExecutor(ctx context.Context, label string, candidates []entity.CandidateRecord, fetcher downloader.Fetcher, store *sharded.Store, workers int, log *slog.Logger) []entity.DownloadOutcome {
	var reporter *progress.Reporter
	if dumpProgress {
		reporter = progress.NewReporter(progress.Options{
			TotalFiles: len(candidates),
			Workers:    workers,
			Label:      label,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	return downloader.Run(ctx, candidates, fetcher, store, downloader.Options{
		Workers:  workers,
		Progress: reporter,
		Log:      log,
	})
}
