package hub

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const manifestFileName = "manifest.json"

// Manifest is written at a repo's root on registration, recording which
// packages the hub has discovered under it (§4.6 "Registration").
type Manifest struct {
	RepoID   string          `json:"repoId"`
	Path     string          `json:"path"`
	Packages []ManifestEntry `json:"packages"`
}

// ManifestEntry is one discovered package within a registered repo.
type ManifestEntry struct {
	PackagePath string `json:"packagePath"`
	SeedDir     string `json:"seedDir"`
}

func readManifest(repoRoot string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, manifestFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func writeManifest(repoRoot string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(repoRoot, manifestFileName), data, 0o644)
}

// discoverPackages walks repoRoot looking for `.devac/seed` directories,
// one per package, the way go.mod/package.json discovery walks a workspace
// in the teacher's scan command.
func discoverPackages(repoRoot string) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	err := filepath.Walk(repoRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == "node_modules" || info.Name() == ".git" {
			return filepath.SkipDir
		}
		seedDir := filepath.Join(path, ".devac", "seed")
		if st, statErr := os.Stat(seedDir); statErr == nil && st.IsDir() {
			rel, relErr := filepath.Rel(repoRoot, path)
			if relErr != nil {
				rel = path
			}
			entries = append(entries, ManifestEntry{PackagePath: rel, SeedDir: seedDir})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
