package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/devac/seed"
	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage feature-branch seed partitions",
}

var branchCreateCmd = &cobra.Command{
	Use:     "create <name>",
	Short:   "Scan the working tree into a named branch partition",
	Args:    cobra.ExactArgs(1),
	Example: `  devac branch create feature-x`,
	RunE:    runBranchCreate,
}

var branchPromoteCmd = &cobra.Command{
	Use:   "promote <name>",
	Short: "Re-scan the working tree into the base partition once a branch exists",
	Long: `promote is the only command that writes base on a branch's behalf (an
Open Question this implementation resolves explicitly, §9): sync never
touches branch partitions. promote checks that the named branch partition
exists, then runs a fresh scan of the current working tree straight into
base. The branch partition's own files are not read or copied.`,
	Args:    cobra.ExactArgs(1),
	Example: `  devac branch promote feature-x`,
	RunE:    runBranchPromote,
}

func init() {
	branchCmd.AddCommand(branchCreateCmd, branchPromoteCmd)
	rootCmd.AddCommand(branchCmd)
}

func runBranchCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return err
	}

	seedDir := seedPathFor(repoRoot)
	log := newLogger()
	result, err := runScan(context.Background(), repoRoot, seed.Branch(seedDir, name), cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "branch %q: %d files scanned, %d failed\n", name, result.FilesScanned, result.Failed)
	return nil
}

func runBranchPromote(cmd *cobra.Command, args []string) error {
	name := args[0]
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	seedDir := seedPathFor(repoRoot)
	branchDir := filepath.Join(seedDir, "branches", name)
	if _, statErr := os.Stat(branchDir); os.IsNotExist(statErr) {
		return fmt.Errorf("no branch %q at %s; run `devac branch create %s` first", name, branchDir, name)
	}

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return err
	}

	log := newLogger()
	result, err := runScan(context.Background(), repoRoot, seed.Base(seedDir), cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "promoted %q to base: %d files scanned, %d failed\n", name, result.FilesScanned, result.Failed)
	return nil
}
