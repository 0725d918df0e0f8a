package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ksteptoe/sfdump-sub001/internal/backfill"
	"github.com/ksteptoe/sfdump-sub001/internal/index"
	"github.com/ksteptoe/sfdump-sub001/internal/salesforce"
)

var (
	backfillIndex   string
	backfillLimit   int
	backfillDryRun  bool
	backfillWorkers int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Re-attempt downloads for index entries missing a local file",
	Long: `Load the master documents index, select file entries that still have no
local path and download them, updating the index atomically for every file
that lands on disk. Safe to re-run; already-present files are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := log.With("run_id", uuid.NewString())

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if backfillIndex == "" {
			backfillIndex = exportPath("meta", "master_documents_index.csv")
		}
		idx := index.NewStore(afero.NewOsFs(), backfillIndex)

		workers := backfillWorkers
		if workers <= 0 {
			workers = cfg.Backfill.Workers
		}

		coord := backfill.New(idx, &salesforce.CandidateFetcher{Client: newClient()}, store, log)
		res, err := coord.Run(ctx, backfill.Options{
			Limit:   backfillLimit,
			DryRun:  backfillDryRun,
			Workers: workers,
		})
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Missing", "Attempted", "Succeeded", "Failed", "Skipped"})
		table.Append([]string{
			strconv.Itoa(res.Missing),
			strconv.Itoa(res.Attempted),
			strconv.Itoa(res.Succeeded),
			strconv.Itoa(res.Failed),
			strconv.Itoa(res.Skipped),
		})
		table.Render()
		return nil
	},
}

func init() {
	f := backfillCmd.Flags()
	f.StringVar(&backfillIndex, "index", "", "master index CSV (default <out>/meta/master_documents_index.csv)")
	f.IntVar(&backfillLimit, "limit", 0, "max entries to process this pass (0 = all)")
	f.BoolVar(&backfillDryRun, "dry-run", false, "report what would be fetched without downloading")
	f.IntVar(&backfillWorkers, "workers", 0, "parallel download workers (default from config)")
}
