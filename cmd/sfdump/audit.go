package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ksteptoe/sfdump-sub001/internal/audit"
	"github.com/ksteptoe/sfdump-sub001/internal/metadata"
	"github.com/ksteptoe/sfdump-sub001/internal/salesforce"
)

var auditInput string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Summarize failed downloads by parent object type",
	Long: `Read a recorded metadata CSV, extract the rows whose download failed and
group them by the 3-character record-id prefix. Writes the failed detail and
the per-prefix summary under <out>/meta/ and prints the summary table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()

		if auditInput == "" {
			auditInput = exportPath("links", "attachments.csv")
		}
		rows, err := metadata.ReadOutcomes(fs, auditInput)
		if err != nil {
			return err
		}

		failed, summary := audit.Run(rows, salesforce.DefaultPrefixes())

		detailPath := exportPath("meta", "attachments_download_failed.csv")
		if err := metadata.WriteRows(fs, detailPath, failed); err != nil {
			return err
		}
		summaryPath := exportPath("meta", "attachments_download_failed_summary.csv")
		if err := audit.WriteSummary(fs, summaryPath, summary); err != nil {
			return err
		}

		log.Info("audit written",
			"source", auditInput,
			"rows", len(rows),
			"failed", len(failed),
			"detail_csv", detailPath,
			"summary_csv", summaryPath,
		)

		if len(summary) == 0 {
			fmt.Println("No failed downloads recorded.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Prefix", "Object Type", "Failed"})
		total := 0
		for _, s := range summary {
			table.Append([]string{s.ParentObjectPrefix, s.ObjectType, strconv.Itoa(s.FailedCount)})
			total += s.FailedCount
		}
		table.SetFooter([]string{"", "Total", strconv.Itoa(total)})
		table.Render()
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditInput, "input", "", "metadata CSV to audit (default <out>/links/attachments.csv)")
}
