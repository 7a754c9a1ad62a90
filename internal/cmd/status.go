package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/devac/internal/devac/seed"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the current seed's statistics and partition integrity",
	Long: `status opens the base seed partition, verifies its checksum against
meta.json (§4.4's "atomic rename" contract), and reports node/edge/effect
counts plus how many edges are still unresolved.`,
	Example: `  devac status`,
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	SeedDir          string `json:"seedDir" yaml:"seedDir"`
	ChecksumOK       bool   `json:"checksumOk" yaml:"checksumOk"`
	NodeCount        int    `json:"nodeCount" yaml:"nodeCount"`
	EdgeCount        int    `json:"edgeCount" yaml:"edgeCount"`
	ExternalRefCount int    `json:"externalRefCount" yaml:"externalRefCount"`
	EffectCount      int    `json:"effectCount" yaml:"effectCount"`
	FileCount        int    `json:"fileCount" yaml:"fileCount"`
	UnresolvedEdges  int    `json:"unresolvedEdges" yaml:"unresolvedEdges"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	seedDir := seedPathFor(repoRoot)
	baseDir := filepath.Join(seedDir, "base")

	ok, err := seed.VerifyChecksum(baseDir)
	if err != nil {
		return err
	}

	r, err := seed.Open(baseDir)
	if err != nil {
		return err
	}
	defer r.Close()

	stats := r.GetStatistics()
	report := statusReport{
		SeedDir:          seedDir,
		ChecksumOK:       ok,
		NodeCount:        stats.NodeCount,
		EdgeCount:        stats.EdgeCount,
		ExternalRefCount: stats.ExternalRefCount,
		EffectCount:      stats.EffectCount,
		FileCount:        stats.FileCount,
		UnresolvedEdges:  stats.UnresolvedEdgeCount,
	}

	return printReport(cmd, report)
}

func printReport(cmd *cobra.Command, v interface{}) error {
	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
