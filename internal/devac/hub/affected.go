package hub

import (
	"path/filepath"
	"time"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/seed"
)

// AffectedResult is getAffectedRepos' return shape (§4.6 "Affected-repo
// analysis"): the repos whose seeds hold an edge pointing directly at one
// of the supplied entity IDs, plus how long the trace took.
type AffectedResult struct {
	RepoIDs   []string `json:"repoIds"`
	ElapsedMs int64    `json:"elapsedMs"`
}

// GetAffectedRepos scans the base seed of every active package (the
// targets' own packages included) for edges of any type whose target is one
// of entityIDs, and returns the repos holding such an edge. Only direct
// edges are followed: repos that reach a target through an intermediate
// entity are not reported, and external refs are not consulted.
func (h *Hub) GetAffectedRepos(entityIDs []string) (*AffectedResult, error) {
	start := time.Now()

	targets := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		targets[id] = true
	}

	rows, err := h.db.Query(`
		SELECT p.repo_id, p.seed_dir FROM packages p
		JOIN repos r ON r.repo_id = p.repo_id
		WHERE r.status = 'active'
	`)
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubUnknownRepo, Detail: "listing active packages for affected-repo analysis", Err: err}
	}
	type pkg struct{ repoID, seedDir string }
	var pkgs []pkg
	for rows.Next() {
		var p pkg
		if err := rows.Scan(&p.repoID, &p.seedDir); err != nil {
			rows.Close()
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	rows.Close()

	affected := map[string]bool{}
	for _, p := range pkgs {
		r, err := seed.Open(filepath.Join(p.seedDir, "base"))
		if err != nil {
			continue
		}
		for id := range targets {
			if len(r.ReadByTargetEntity(id)) > 0 {
				affected[p.repoID] = true
				break
			}
		}
		r.Close()
	}

	ids := make([]string, 0, len(affected))
	for id := range affected {
		ids = append(ids, id)
	}

	return &AffectedResult{RepoIDs: ids, ElapsedMs: time.Since(start).Milliseconds()}, nil
}
