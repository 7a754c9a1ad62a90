package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/devac/hub"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const hubFileName = "hub.db"

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SQL query against the federation hub",
	Long: `query opens (creating if absent) the hub database at .devac/hub.db,
registers the current repo if it isn't already, and runs sql against the
union of every active package's seed (§4.6 "Queries").`,
	Args: cobra.ExactArgs(1),
	Example: `  devac query "SELECT name, kind FROM nodes WHERE kind = 'function'"
  devac query "SELECT effect_type, COUNT(*) FROM effects GROUP BY effect_type"`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	h, err := hub.Open(filepath.Join(repoRoot, config.ConfigDirName, hubFileName), hub.Options{})
	if err != nil {
		return err
	}
	defer h.Close()

	if _, err := h.RegisterRepo(repoRoot); err != nil {
		return err
	}

	result, err := h.Query(args[0])
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
