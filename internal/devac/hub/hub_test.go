package hub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/anthropics/devac/internal/devac/model"
	"github.com/anthropics/devac/internal/devac/seed"
)

func newTestRepo(t *testing.T, entityPrefix string) string {
	t.Helper()
	root := t.TempDir()
	seedDir := filepath.Join(root, "pkg", ".devac", "seed")
	w := seed.Base(seedDir)

	result := &model.StructuralParseResult{
		FilePath:       "pkg/foo.go",
		SourceFileHash: "hash1",
		Nodes: []model.Node{
			{EntityID: entityPrefix + ":function:abc", Name: "Foo", FilePath: "pkg/foo.go", StartLine: 1, EndLine: 3},
		},
		Edges: []model.Edge{
			{SourceEntityID: entityPrefix + ":function:abc", TargetEntityID: model.Unresolved("Bar"), EdgeType: string(model.EdgeCalls), SourceFilePath: "pkg/foo.go", SourceLine: 2},
		},
		Effects: []model.Effect{
			{EffectID: "e1", EffectType: string(model.EffectFunctionCall), SourceEntityID: entityPrefix + ":function:abc", SourceFilePath: "pkg/foo.go", SourceLine: 2, CalleeName: "Bar"},
		},
	}
	if err := w.WriteFile(result); err != nil {
		t.Fatalf("seeding test repo: %v", err)
	}
	return root
}

func openTestHub(t *testing.T) *Hub {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hub.db")
	h, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestRegisterRepoIsIdempotent(t *testing.T) {
	h := openTestHub(t)
	repoPath := newTestRepo(t, "repoA")

	id1, err := h.RegisterRepo(repoPath)
	if err != nil {
		t.Fatalf("RegisterRepo 1: %v", err)
	}
	id2, err := h.RegisterRepo(repoPath)
	if err != nil {
		t.Fatalf("RegisterRepo 2: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected stable repo_id across re-registration, got %q then %q", id1, id2)
	}

	var count int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM repos WHERE repo_id = ?`, id1).Scan(&count); err != nil {
		t.Fatalf("counting repos: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected registering twice to update in place, not duplicate; got %d rows", count)
	}

	if _, err := os.Stat(filepath.Join(repoPath, manifestFileName)); err != nil {
		t.Fatalf("expected manifest.json to be written: %v", err)
	}
}

func TestRegisterRepoDiscoversPackages(t *testing.T) {
	h := openTestHub(t)
	repoPath := newTestRepo(t, "repoA")

	repoID, err := h.RegisterRepo(repoPath)
	if err != nil {
		t.Fatalf("RegisterRepo: %v", err)
	}

	var nodeCount int
	if err := h.db.QueryRow(`SELECT node_count FROM packages WHERE repo_id = ?`, repoID).Scan(&nodeCount); err != nil {
		t.Fatalf("reading package row: %v", err)
	}
	if nodeCount != 1 {
		t.Fatalf("expected discovered package to carry its seed's node count, got %d", nodeCount)
	}
}

func TestQueryUnionsAcrossActivePackages(t *testing.T) {
	h := openTestHub(t)
	repoA := newTestRepo(t, "repoA")
	repoB := newTestRepo(t, "repoB")

	if _, err := h.RegisterRepo(repoA); err != nil {
		t.Fatalf("RegisterRepo A: %v", err)
	}
	if _, err := h.RegisterRepo(repoB); err != nil {
		t.Fatalf("RegisterRepo B: %v", err)
	}

	result, err := h.Query("SELECT entity_id FROM nodes")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected the query to union one node from each registered repo, got %d rows", len(result.Rows))
	}
}

// TestQueryAggregatesAcrossActivePackages guards Testable Property 8: an
// aggregate must reflect the union of all active packages as one row, not
// one row per package.
func TestQueryAggregatesAcrossActivePackages(t *testing.T) {
	h := openTestHub(t)
	repoA := newTestRepo(t, "repoA")
	repoB := newTestRepo(t, "repoB")

	if _, err := h.RegisterRepo(repoA); err != nil {
		t.Fatalf("RegisterRepo A: %v", err)
	}
	if _, err := h.RegisterRepo(repoB); err != nil {
		t.Fatalf("RegisterRepo B: %v", err)
	}

	result, err := h.Query("SELECT COUNT(*) FROM nodes")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected one aggregate row for the whole union, got %d rows", len(result.Rows))
	}
	count, ok := result.Rows[0][0].(int64)
	if !ok {
		t.Fatalf("expected COUNT(*) to scan as int64, got %T", result.Rows[0][0])
	}
	if count != 2 {
		t.Fatalf("expected COUNT(*) to equal the sum of per-package node counts (2), got %d", count)
	}
}

func TestQueryResultIsMemoized(t *testing.T) {
	h := openTestHub(t)
	repoPath := newTestRepo(t, "repoA")
	if _, err := h.RegisterRepo(repoPath); err != nil {
		t.Fatalf("RegisterRepo: %v", err)
	}

	if _, err := h.Query("SELECT entity_id FROM nodes"); err != nil {
		t.Fatalf("Query 1: %v", err)
	}

	var cached int
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM query_cache WHERE query_text = ?`, "SELECT entity_id FROM nodes").Scan(&cached); err != nil {
		t.Fatalf("checking cache: %v", err)
	}
	if cached != 1 {
		t.Fatalf("expected the query text to be memoized, got %d cache rows", cached)
	}
}

func TestRegisterRepoInvalidatesCache(t *testing.T) {
	h := openTestHub(t)
	repoA := newTestRepo(t, "repoA")
	if _, err := h.RegisterRepo(repoA); err != nil {
		t.Fatalf("RegisterRepo: %v", err)
	}
	if _, err := h.Query("SELECT entity_id FROM nodes"); err != nil {
		t.Fatalf("Query: %v", err)
	}

	repoB := newTestRepo(t, "repoB")
	if _, err := h.RegisterRepo(repoB); err != nil {
		t.Fatalf("RegisterRepo B: %v", err)
	}

	var cached int
	h.db.QueryRow(`SELECT COUNT(*) FROM query_cache`).Scan(&cached)
	if cached != 0 {
		t.Fatalf("expected registerRepo to invalidate the query cache, got %d cached rows", cached)
	}
}

func TestSyncMarksMissingRepo(t *testing.T) {
	h := openTestHub(t)
	repoPath := newTestRepo(t, "repoA")
	repoID, err := h.RegisterRepo(repoPath)
	if err != nil {
		t.Fatalf("RegisterRepo: %v", err)
	}

	if err := os.RemoveAll(repoPath); err != nil {
		t.Fatalf("removing repo path: %v", err)
	}
	if err := h.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	var status string
	if err := h.db.QueryRow(`SELECT status FROM repos WHERE repo_id = ?`, repoID).Scan(&status); err != nil {
		t.Fatalf("reading status: %v", err)
	}
	if status != string(StatusMissing) {
		t.Fatalf("expected status=missing after the repo path disappeared, got %q", status)
	}
}

func TestUnregisterRepoRemovesPackages(t *testing.T) {
	h := openTestHub(t)
	repoPath := newTestRepo(t, "repoA")
	repoID, err := h.RegisterRepo(repoPath)
	if err != nil {
		t.Fatalf("RegisterRepo: %v", err)
	}

	if err := h.UnregisterRepo(repoID); err != nil {
		t.Fatalf("UnregisterRepo: %v", err)
	}

	var repoCount, pkgCount int
	h.db.QueryRow(`SELECT COUNT(*) FROM repos WHERE repo_id = ?`, repoID).Scan(&repoCount)
	h.db.QueryRow(`SELECT COUNT(*) FROM packages WHERE repo_id = ?`, repoID).Scan(&pkgCount)
	if repoCount != 0 || pkgCount != 0 {
		t.Fatalf("expected unregistering to cascade-delete packages, got repos=%d packages=%d", repoCount, pkgCount)
	}
}

func TestDiagnosticsPushAndClear(t *testing.T) {
	h := openTestHub(t)
	err := h.PushDiagnostics([]Diagnostic{
		{RepoID: "repoA", Source: "lint", Severity: SeverityError, Category: "style", File: "a.go", Line: 1, Message: "bad"},
		{RepoID: "repoA", Source: "lint", Severity: SeverityWarning, Category: "style", File: "b.go", Line: 2, Message: "meh"},
	})
	if err != nil {
		t.Fatalf("PushDiagnostics: %v", err)
	}

	errs, err := h.GetValidationErrors(DiagnosticFilter{Severity: SeverityError})
	if err != nil {
		t.Fatalf("GetValidationErrors: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error-severity diagnostic, got %d", len(errs))
	}

	counts, err := h.GetValidationCounts()
	if err != nil {
		t.Fatalf("GetValidationCounts: %v", err)
	}
	if counts.Error != 1 || counts.Warning != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	if err := h.ClearDiagnostics("repoA", "lint"); err != nil {
		t.Fatalf("ClearDiagnostics: %v", err)
	}
	var remaining int
	h.db.QueryRow(`SELECT COUNT(*) FROM unified_diagnostics WHERE repo_id = ?`, "repoA").Scan(&remaining)
	if remaining != 0 {
		t.Fatalf("expected ClearDiagnostics to remove all of that source's rows, got %d remaining", remaining)
	}
}

func TestNormalizeRepoIDFallsBackToLocalDir(t *testing.T) {
	dir := t.TempDir()
	id := normalizeRepoID(dir)
	want := "local/" + filepath.Base(dir)
	if id != want {
		t.Fatalf("expected fallback repo_id %q, got %q", want, id)
	}
}

func TestNormalizeOriginURL(t *testing.T) {
	cases := map[string]string{
		"git@github.com:acme/widgets.git": "github.com/acme/widgets",
		"git@github.com:acme/widgets":     "github.com/acme/widgets",
		"https://github.com/acme/widgets.git": "github.com/acme/widgets",
		"https://github.com/acme/widgets":     "github.com/acme/widgets",
	}
	for origin, want := range cases {
		if got := normalizeOriginURL(origin); got != want {
			t.Errorf("normalizeOriginURL(%q) = %q, want %q", origin, got, want)
		}
	}
}
