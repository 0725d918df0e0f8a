// Package main implements the sfdump CLI: bulk export of Salesforce file
// binaries into sharded local storage with auditable metadata.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ksteptoe/sfdump-sub001/internal/config"
	"github.com/ksteptoe/sfdump-sub001/internal/logging"
)

// Version is injected at build time.
var Version = "dev"

var (
	flagConfig  string
	flagEnvFile string
	flagOut     string
	flagLevel   string
	flagFormat  string

	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sfdump",
	Short: "Bulk-export Salesforce file binaries to local sharded storage",
	Long: `sfdump bulk-retrieves Attachment and ContentVersion binaries from a
Salesforce org, persists them to sharded local storage and records durable
CSV metadata describing what was retrieved, what failed and what is still
missing. Failed items are never retried in-run; run "sfdump audit" to see
why they failed and "sfdump backfill" to re-attempt them.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML config file")
	pf.StringVar(&flagEnvFile, "env-file", "", ".env file to load (default: ./.env if present)")
	pf.StringVar(&flagOut, "out", "", "export root directory")
	pf.StringVar(&flagLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagFormat, "log-format", "", "log format (text, json)")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup assembles configuration (flags > env > file > defaults) and the logger.
func setup(cmd *cobra.Command, args []string) error {
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		// Best effort: a local .env is optional.
		_ = godotenv.Load()
	}

	if flagConfig != "" {
		loaded, err := config.LoadFromFile(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}

	if flagOut != "" {
		cfg.OutDir = flagOut
	}
	if flagLevel != "" {
		cfg.Log.Level = flagLevel
	}
	if flagFormat != "" {
		cfg.Log.Format = flagFormat
	}

	log = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sfdump version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stdout, "sfdump", Version)
	},
}
