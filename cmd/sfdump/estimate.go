package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ksteptoe/sfdump-sub001/internal/progress"
	"github.com/ksteptoe/sfdump-sub001/internal/salesforce"
)

var estimateWhere string

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Report candidate counts and total bytes without downloading",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if estimateWhere == "" {
			estimateWhere = cfg.Where
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		enum := salesforce.NewEnumerator(newClient(), salesforce.DefaultPrefixes(), "", log)

		attachments, err := enum.EstimateAttachments(ctx, estimateWhere)
		if err != nil {
			return err
		}
		files, err := enum.EstimateContentFiles(ctx, estimateWhere)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Kind", "Count", "Total Size"})
		table.Append([]string{"Attachments", strconv.Itoa(attachments.Count), progress.FormatBytes(attachments.TotalBytes)})
		table.Append([]string{"Files", strconv.Itoa(files.Count), progress.FormatBytes(files.TotalBytes)})
		table.Append([]string{
			"Total",
			strconv.Itoa(attachments.Count + files.Count),
			progress.FormatBytes(attachments.TotalBytes + files.TotalBytes),
		})
		table.Render()
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateWhere, "where", "", "optional SOQL filter for enumeration")
}
