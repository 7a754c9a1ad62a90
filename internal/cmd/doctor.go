package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/anthropics/devac/internal/config"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check prerequisites sync/query need before they run",
	Long: `doctor checks the things a bad environment would otherwise surface as a
confusing mid-scan failure: that .devac is writable, that the configured
subprocess front-ends (anything beyond "go") resolve on PATH, and that the
workspace config parses.`,
	Example: `  devac doctor`,
	RunE:    runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return err
	}

	cfg, err := config.Load(repoRoot)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] config: %v\n", err)
		return fmt.Errorf("doctor found prerequisite failures")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "[ok] config loads")

	ok := true
	configDir := filepath.Join(repoRoot, config.ConfigDirName)
	if statErr := checkWritable(configDir); statErr != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] %s is not writable: %v\n", configDir, statErr)
		ok = false
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "[ok] %s is writable\n", configDir)
	}

	for _, lang := range cfg.Scan.Languages {
		if lang == "go" {
			fmt.Fprintln(cmd.OutOrStdout(), "[ok] go: in-process front-end")
			continue
		}
		binary := lang + "-devac-frontend"
		if _, lookErr := exec.LookPath(binary); lookErr != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "[FAIL] %s: expected subprocess front-end %q not found on PATH\n", lang, binary)
			ok = false
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[ok] %s: found %s on PATH\n", lang, binary)
	}

	if !ok {
		return fmt.Errorf("doctor found prerequisite failures")
	}
	return nil
}

// checkWritable creates configDir if absent, then confirms a temp file can
// be created and removed inside it.
func checkWritable(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	probe := filepath.Join(configDir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
