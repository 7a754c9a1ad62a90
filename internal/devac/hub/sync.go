package hub

import (
	"os"
	"path/filepath"
	"time"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/seed"
)

// RepoStatus mirrors §4.6's Status enum.
type RepoStatus string

const (
	StatusActive  RepoStatus = "active"
	StatusMissing RepoStatus = "missing"
	StatusStale   RepoStatus = "stale"
)

// Sync walks every registered repo's manifest and refreshes its status and
// its packages' row counts (§4.6 "sync() walks the manifest and refreshes
// statuses").
func (h *Hub) Sync() error {
	rows, err := h.db.Query(`SELECT repo_id, path FROM repos`)
	if err != nil {
		return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, Detail: "listing repos for sync", Err: err}
	}
	type repoRow struct{ id, path string }
	var repos []repoRow
	for rows.Next() {
		var r repoRow
		if err := rows.Scan(&r.id, &r.path); err != nil {
			rows.Close()
			return err
		}
		repos = append(repos, r)
	}
	rows.Close()

	for _, r := range repos {
		if err := h.RefreshRepo(r.id); err != nil {
			return err
		}
	}
	return nil
}

// RefreshRepo recomputes one repo's status and its packages' stats, then
// invalidates the query cache.
func (h *Hub) RefreshRepo(repoID string) error {
	var path string
	if err := h.db.QueryRow(`SELECT path FROM repos WHERE repo_id = ?`, repoID).Scan(&path); err != nil {
		return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "repo not registered", Err: err}
	}

	status := h.computeStatus(repoID, path)
	now := time.Now().Unix()
	if _, err := h.db.Exec(`UPDATE repos SET status = ?, last_synced_at = ? WHERE repo_id = ?`, status, now, repoID); err != nil {
		return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "updating repo status", Err: err}
	}

	if status == StatusActive {
		entries, err := discoverPackages(path)
		if err == nil {
			for _, e := range entries {
				h.upsertPackage(repoID, e, now)
			}
		}
	}

	h.invalidateCache()
	return nil
}

// RefreshAll is Sync's public alias, matching spec naming (§4.6 cache
// invalidation list: "refreshRepo(repoId), refreshAll()").
func (h *Hub) RefreshAll() error { return h.Sync() }

func (h *Hub) computeStatus(repoID, path string) RepoStatus {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return StatusMissing
	}

	rows, err := h.db.Query(`SELECT seed_dir, file_hash_sum FROM packages WHERE repo_id = ?`, repoID)
	if err != nil {
		return StatusActive
	}
	defer rows.Close()

	type pending struct{ seedDir, recordedSum string }
	var pkgs []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.seedDir, &p.recordedSum); err != nil {
			continue
		}
		pkgs = append(pkgs, p)
	}
	rows.Close()

	for _, p := range pkgs {
		r, err := seed.Open(filepath.Join(p.seedDir, "base"))
		if err != nil {
			continue
		}
		digest := r.FileHashDigest()
		r.Close()
		if p.recordedSum != "" && digest != p.recordedSum {
			return StatusStale
		}
	}
	return StatusActive
}
