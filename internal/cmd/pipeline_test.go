package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/devac/devaclog"
	"github.com/anthropics/devac/internal/devac/seed"
)

const sampleGoSource = `package sample

func Helper() int {
	return inner()
}

func inner() int {
	return 1
}
`

func TestRunScanWritesBaseSeed(t *testing.T) {
	repoRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(repoRoot, "sample.go"), []byte(sampleGoSource), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := config.DefaultConfig()
	seedDir := seedPathFor(repoRoot)

	result, err := runScan(context.Background(), repoRoot, seed.Base(seedDir), cfg, devaclog.Nop())
	if err != nil {
		t.Fatalf("runScan: %v", err)
	}
	if result.FilesScanned != 1 {
		t.Fatalf("expected 1 file scanned, got %d", result.FilesScanned)
	}
	if !result.Success {
		t.Fatalf("expected scan to succeed, errors: %v", result.Errors)
	}

	r, err := seed.Open(filepath.Join(seedDir, "base"))
	if err != nil {
		t.Fatalf("opening seed: %v", err)
	}
	defer r.Close()

	stats := r.GetStatistics()
	if stats.NodeCount != 2 {
		t.Fatalf("expected 2 nodes (Helper, inner), got %d", stats.NodeCount)
	}
}

func TestIsExcludedMatchesTestFiles(t *testing.T) {
	repoRoot := "/repo"
	patterns := config.DefaultConfig().Scan.Exclude
	cases := map[string]bool{
		"/repo/foo_test.go":           true,
		"/repo/vendor/lib/pkg.go":     true,
		"/repo/.devac/seed/base.json": true,
		"/repo/main.go":               false,
	}
	for path, want := range cases {
		if got := isExcluded(path, repoRoot, patterns); got != want {
			t.Errorf("isExcluded(%q) = %v, want %v", path, got, want)
		}
	}
}
