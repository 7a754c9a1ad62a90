package hub

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/seed"
)

// QueryResult is the hub's flattened result shape: column names plus rows
// of driver-native values, suitable for JSON re-encoding by a CLI or MCP
// caller.
type QueryResult struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Query executes querySQL against the union of every active package's seed
// (§4.6 "unqualified references to nodes/edges/external_refs/effects union
// across all active packages"). Every active package's rows are loaded into
// one shared connection's nodes/edges/external_refs/effects tables before
// querySQL runs once against it — so an aggregate like
// "SELECT COUNT(*) FROM nodes" reflects the true union (Testable Property 8)
// rather than one row per package. Results are memoized by the exact SQL
// text (§4.6 "Queries").
func (h *Hub) Query(querySQL string) (*QueryResult, error) {
	if cached, ok := h.cacheLookup(querySQL); ok {
		return cached, nil
	}

	seedDirs, err := h.activeSeedDirs()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "opening union connection", Err: err}
	}
	defer db.Close()

	if err := seed.EnsureSchema(db); err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "creating union connection schema", Err: err}
	}

	for _, dir := range seedDirs {
		r, err := seed.Open(filepath.Join(dir, "base"))
		if err != nil {
			continue
		}
		err = r.MaterializeInto(db)
		r.Close()
		if err != nil {
			return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "materializing " + dir + " into union connection", Err: err}
		}
	}

	rows, err := db.Query(querySQL)
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "query: " + querySQL, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "reading result columns", Err: err}
	}

	var result QueryResult
	result.Columns = cols
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "scanning result row", Err: err}
		}
		result.Rows = append(result.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "iterating result rows", Err: err}
	}

	h.cacheStore(querySQL, &result)
	return &result, nil
}

func (h *Hub) activeSeedDirs() ([]string, error) {
	rows, err := h.db.Query(`
		SELECT p.seed_dir FROM packages p
		JOIN repos r ON r.repo_id = p.repo_id
		WHERE r.status = 'active'
	`)
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubUnknownRepo, Detail: "listing active packages", Err: err}
	}
	defer rows.Close()

	var dirs []string
	for rows.Next() {
		var dir string
		if err := rows.Scan(&dir); err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}

func (h *Hub) cacheLookup(querySQL string) (*QueryResult, bool) {
	var resultJSON string
	err := h.db.QueryRow(`SELECT result_json FROM query_cache WHERE query_text = ?`, querySQL).Scan(&resultJSON)
	if err != nil {
		return nil, false
	}
	var result QueryResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (h *Hub) cacheStore(querySQL string, result *QueryResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	h.db.Exec(`
		INSERT INTO query_cache (query_text, result_json, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(query_text) DO UPDATE SET result_json = excluded.result_json, cached_at = excluded.cached_at
	`, querySQL, string(data), time.Now().Unix())
}

// invalidateCache drops every memoized query result (§4.6 "The cache is
// invalidated by refreshRepo(repoId), refreshAll(), registerRepo, and
// unregisterRepo").
func (h *Hub) invalidateCache() {
	h.db.Exec(`DELETE FROM query_cache`)
}
