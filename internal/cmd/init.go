package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/devac/seed"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .devac/seed and .devac/config.yaml in the current repo",
	Long: `init writes a default .devac/config.yaml (if one doesn't already exist)
and performs a first scan into .devac/seed/base, the seed's "first commit".`,
	Example: `  devac init
  devac init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Re-initialize even if .devac already exists")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	configDir := repoRoot + string(os.PathSeparator) + config.ConfigDirName
	if _, statErr := os.Stat(configDir); statErr == nil && !initForce {
		return fmt.Errorf("%s already exists; pass --force to re-initialize", configDir)
	}

	if _, err := config.SaveDefault(repoRoot); err != nil && !os.IsExist(err) {
		if !initForce {
			fmt.Fprintf(cmd.OutOrStdout(), "config already present, skipping: %v\n", err)
		}
	}

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return err
	}

	log := newLogger()
	seedDir := seedPathFor(repoRoot)
	result, err := runScan(context.Background(), repoRoot, seed.Base(seedDir), cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "initialized %s: %d files scanned, %d failed\n", seedDir, result.FilesScanned, result.Failed)
	return nil
}
