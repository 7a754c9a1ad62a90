package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/devaclog"
	"github.com/anthropics/devac/internal/devac/effectmap"
	"github.com/anthropics/devac/internal/devac/golang"
	"github.com/anthropics/devac/internal/devac/parserorch"
	"github.com/anthropics/devac/internal/devac/seed"
	"go.uber.org/zap"
)

const (
	seedDirName       = "seed"
	effectMappingFile = "effects.yaml"
)

// seedPathFor returns <repoRoot>/.devac/seed, the canonical per-package seed
// location every CLI command writes to and reads from (§4.4 "Layout").
func seedPathFor(repoRoot string) string {
	return filepath.Join(repoRoot, config.ConfigDirName, seedDirName)
}

// buildOrchestrator registers every front-end cfg.Scan.Languages names. Only
// "go" has an in-process front-end today; any other configured language is
// skipped with a warning rather than failing the whole scan, mirroring §4.1's
// "a file that fails to parse is recorded with warnings" posture applied one
// level up, at the language-registration boundary.
func buildOrchestrator(repoRoot string, cfg *config.Config, log *zap.SugaredLogger) *parserorch.Orchestrator {
	registry := parserorch.NewRegistry()
	for _, lang := range cfg.Scan.Languages {
		switch lang {
		case "go":
			registry.Register(golang.New(repoRoot))
		default:
			log.Warnw("no in-process front-end for configured language; skipping", "language", lang)
		}
	}
	return parserorch.New(registry, time.Duration(cfg.Parser.TimeoutSeconds)*time.Second, log)
}

// scanResult summarizes one runScan invocation for status/sync reporting.
type scanResult struct {
	devacerr.BulkResult
	FilesScanned int
}

// runScan walks repoRoot, parses every file a registered front-end claims,
// applies the effect mapper's workspace/package merge, and writes the
// accumulated results through writer (the base partition, or a named
// branch's). Files under cfg.Scan.Exclude globs (or .devac itself) are
// skipped before ever reaching the orchestrator.
func runScan(ctx context.Context, repoRoot string, writer *seed.Writer, cfg *config.Config, log *zap.SugaredLogger) (*scanResult, error) {
	orch := buildOrchestrator(repoRoot, cfg, log)

	workspaceMappings, err := effectmap.LoadFile(filepath.Join(repoRoot, config.ConfigDirName, effectMappingFile))
	if err != nil {
		log.Warnw("ignoring unreadable workspace effect mapping file", "err", err)
		workspaceMappings = effectmap.PackageEffectMappings{}
	}

	result := &scanResult{}
	walkErr := filepath.Walk(repoRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if shouldSkipDir(path, repoRoot) {
				return filepath.SkipDir
			}
			return nil
		}
		if !orch.CanParse(path) {
			return nil
		}
		if isExcluded(path, repoRoot, cfg.Scan.Exclude) {
			return nil
		}

		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			rel = path
		}

		parseResult, parseErr := orch.Parse(ctx, path, parserorch.Config{})
		if parseErr != nil {
			result.Record(parseErr)
			return nil
		}
		parseResult.FilePath = rel

		packageMappings, loadErr := effectmap.LoadFile(filepath.Join(filepath.Dir(path), effectMappingFile))
		if loadErr != nil {
			packageMappings = effectmap.PackageEffectMappings{}
		}
		parseResult.Effects = effectmap.Apply(parseResult.Effects, effectmap.Merge(workspaceMappings, packageMappings))

		if writeErr := writer.WriteFile(parseResult); writeErr != nil {
			result.Record(writeErr)
			return nil
		}
		result.Record(nil)
		result.FilesScanned++
		return nil
	})
	if walkErr != nil {
		return nil, &devacerr.StorageError{Kind: devacerr.StorageCorruptPartition, Seed: repoRoot, Detail: "walking " + repoRoot, Err: walkErr}
	}

	result.Success = result.Failed == 0
	return result, nil
}

func shouldSkipDir(path, repoRoot string) bool {
	base := filepath.Base(path)
	if base == config.ConfigDirName || base == ".git" || base == "node_modules" {
		return path != repoRoot
	}
	return false
}

func isExcluded(path, repoRoot string, patterns []string) bool {
	rel, err := filepath.Rel(repoRoot, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(pattern, "/**")
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(rel)); ok {
			return true
		}
		if strings.HasPrefix(rel, pattern+"/") {
			return true
		}
	}
	return false
}

func newLogger() *zap.SugaredLogger {
	if verbose {
		return devaclog.New()
	}
	return devaclog.Nop()
}
