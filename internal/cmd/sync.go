package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/devac/seed"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-parse the working tree and re-write the seed",
	Long: `sync re-runs the Parser Orchestrator and Effect Mapper over every tracked
file and replaces the base seed partition's rows with the fresh result
(§4.4's "base is a live replace-in-place view").`,
	Example: `  devac sync`,
	RunE:    runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return err
	}

	seedDir := seedPathFor(repoRoot)
	if _, statErr := os.Stat(seedDir); os.IsNotExist(statErr) {
		return fmt.Errorf("no seed at %s; run `devac init` first", seedDir)
	}

	log := newLogger()
	result, err := runScan(context.Background(), repoRoot, seed.Base(seedDir), cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "synced %s: %d files scanned, %d failed\n", seedDir, result.FilesScanned, result.Failed)
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}
	}
	return nil
}
