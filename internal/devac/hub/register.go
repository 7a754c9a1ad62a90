package hub

import (
	"path/filepath"
	"time"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/seed"
)

// RegisterRepo discovers repo_id, packages, and each package's seed stats
// under path, then writes manifest.json and upserts repos/packages
// (§4.6 "Registration"). Registering an existing repo_id updates in place.
func (h *Hub) RegisterRepo(path string) (string, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	repoID := normalizeRepoID(path)

	entries, err := discoverPackages(path)
	if err != nil {
		return "", &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "discovering packages under " + path, Err: err}
	}

	manifest := &Manifest{RepoID: repoID, Path: path, Packages: entries}
	if err := writeManifest(path, manifest); err != nil {
		return "", &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "writing manifest.json", Err: err}
	}

	now := time.Now().Unix()
	if _, err := h.db.Exec(`
		INSERT INTO repos (repo_id, path, status, registered_at, last_synced_at)
		VALUES (?, ?, 'active', ?, ?)
		ON CONFLICT(repo_id) DO UPDATE SET
			path = excluded.path,
			status = 'active',
			last_synced_at = excluded.last_synced_at
	`, repoID, path, now, now); err != nil {
		return "", &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "upserting repo row", Err: err}
	}

	for _, e := range entries {
		if err := h.upsertPackage(repoID, e, now); err != nil {
			return "", err
		}
	}

	h.invalidateCache()
	return repoID, nil
}

func (h *Hub) upsertPackage(repoID string, e ManifestEntry, syncedAt int64) error {
	nodeCount, edgeCount, digest := 0, 0, ""
	if r, err := seed.Open(filepath.Join(e.SeedDir, "base")); err == nil {
		stats := r.GetStatistics()
		nodeCount, edgeCount = stats.NodeCount, stats.EdgeCount
		digest = r.FileHashDigest()
		r.Close()
	}

	_, err := h.db.Exec(`
		INSERT INTO packages (package_path, repo_id, seed_dir, node_count, edge_count, file_hash_sum, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, package_path) DO UPDATE SET
			seed_dir = excluded.seed_dir,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			file_hash_sum = excluded.file_hash_sum,
			last_synced_at = excluded.last_synced_at
	`, e.PackagePath, repoID, e.SeedDir, nodeCount, edgeCount, digest, syncedAt)
	if err != nil {
		return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "upserting package row for " + e.PackagePath, Err: err}
	}
	return nil
}

// UnregisterRepo removes a repo and its packages from the hub (cascades via
// the packages table's foreign key) and invalidates the query cache.
func (h *Hub) UnregisterRepo(repoID string) error {
	if _, err := h.db.Exec(`DELETE FROM repos WHERE repo_id = ?`, repoID); err != nil {
		return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "deleting repo", Err: err}
	}
	h.invalidateCache()
	return nil
}
