package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/seed"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Confirm the seed's partitions match meta.json's checksum",
	Long: `verify walks base plus every branch under .devac/seed and reports whether
each partition set's committed files still match meta.json's checksum
(§4.4's atomic-commit contract) — a non-zero exit means a prior write did
not fully commit.`,
	Example: `  devac verify`,
	RunE:    runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}
	seedDir := seedPathFor(repoRoot)

	partitions := []string{filepath.Join(seedDir, "base")}
	branchesDir := filepath.Join(seedDir, "branches")
	if entries, readErr := os.ReadDir(branchesDir); readErr == nil {
		for _, e := range entries {
			if e.IsDir() {
				partitions = append(partitions, filepath.Join(branchesDir, e.Name()))
			}
		}
	}

	allOK := true
	for _, dir := range partitions {
		ok, verifyErr := seed.VerifyChecksum(dir)
		if verifyErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: error: %v\n", dir, verifyErr)
			allOK = false
			continue
		}
		status := "ok"
		if !ok {
			status = "CORRUPT"
			allOK = false
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", dir, status)
	}

	if !allOK {
		return &devacerr.StorageError{Kind: devacerr.StorageCorruptPartition, Seed: seedDir, Detail: "one or more partitions failed checksum verification"}
	}
	return nil
}
