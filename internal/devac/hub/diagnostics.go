package hub

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anthropics/devac/internal/devac/devacerr"
)

// Severity enumerates unified_diagnostics.severity (§4.6 "Validation
// diagnostics").
type Severity string

const (
	SeverityCritical   Severity = "critical"
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeverityNote       Severity = "note"
	SeveritySuggestion Severity = "suggestion"
)

// Diagnostic is one row of the hub's unified_diagnostics relation. ID is a
// client-generated uuid rather than a rowid, so a batch from several
// detectors (PushDiagnostics) can stamp an identity on each row before it's
// ever written — useful to a caller that wants to reference a diagnostic
// (e.g. to resolve it later) without round-tripping through SQLite first.
type Diagnostic struct {
	ID             string
	RepoID         string
	Source         string
	Severity       Severity
	Category       string
	File           string
	Line           int32
	Message        string
	GitHubPRNumber *int64
	Resolved       bool
	CreatedAt      int64
}

// PushDiagnostics inserts a batch of diagnostics; each carries its own
// repo_id and source so a mixed batch from several detectors is fine.
func (h *Hub) PushDiagnostics(diagnostics []Diagnostic) error {
	now := time.Now().Unix()
	stmt, err := h.db.Prepare(`
		INSERT INTO unified_diagnostics
			(id, repo_id, source, severity, category, file, line, message, github_pr_number, resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, Detail: "preparing diagnostics insert", Err: err}
	}
	defer stmt.Close()

	for i := range diagnostics {
		d := &diagnostics[i]
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		resolved := 0
		if d.Resolved {
			resolved = 1
		}
		if _, err := stmt.Exec(d.ID, d.RepoID, d.Source, string(d.Severity), d.Category, d.File, d.Line, d.Message, d.GitHubPRNumber, resolved, now); err != nil {
			return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: d.RepoID, Detail: "inserting diagnostic", Err: err}
		}
	}
	return nil
}

// ClearDiagnostics replaces the rows matching repoID/source atomically; an
// empty filter clears nothing, matching the "clearing by source replaces
// that source's rows atomically" contract without accidentally wiping the
// whole table on an unfiltered call.
func (h *Hub) ClearDiagnostics(repoID, source string) error {
	if repoID == "" && source == "" {
		return nil
	}

	var where []string
	var args []interface{}
	if repoID != "" {
		where = append(where, "repo_id = ?")
		args = append(args, repoID)
	}
	if source != "" {
		where = append(where, "source = ?")
		args = append(args, source)
	}

	query := "DELETE FROM unified_diagnostics WHERE " + strings.Join(where, " AND ")
	if _, err := h.db.Exec(query, args...); err != nil {
		return &devacerr.HubError{Kind: devacerr.HubUnknownRepo, RepoID: repoID, Detail: "clearing diagnostics", Err: err}
	}
	return nil
}

// DiagnosticFilter narrows GetValidationErrors.
type DiagnosticFilter struct {
	RepoID   string
	Source   string
	Severity Severity
	Resolved *bool
}

// GetValidationErrors returns diagnostics matching filter, most recent
// first.
func (h *Hub) GetValidationErrors(filter DiagnosticFilter) ([]Diagnostic, error) {
	var where []string
	var args []interface{}
	if filter.RepoID != "" {
		where = append(where, "repo_id = ?")
		args = append(args, filter.RepoID)
	}
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Resolved != nil {
		resolved := 0
		if *filter.Resolved {
			resolved = 1
		}
		where = append(where, "resolved = ?")
		args = append(args, resolved)
	}

	query := `SELECT id, repo_id, source, severity, category, file, line, message, github_pr_number, resolved, created_at FROM unified_diagnostics`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubUnknownRepo, Detail: "querying diagnostics", Err: err}
	}
	defer rows.Close()

	var out []Diagnostic
	for rows.Next() {
		var d Diagnostic
		var severity string
		var resolved int
		var pr sql.NullInt64
		if err := rows.Scan(&d.ID, &d.RepoID, &d.Source, &severity, &d.Category, &d.File, &d.Line, &d.Message, &pr, &resolved, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Severity = Severity(severity)
		d.Resolved = resolved != 0
		if pr.Valid {
			v := pr.Int64
			d.GitHubPRNumber = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetValidationSummary groups unresolved diagnostic counts by groupBy,
// which must name a column of unified_diagnostics (severity, category,
// source, or repo_id).
func (h *Hub) GetValidationSummary(groupBy string) (map[string]int, error) {
	switch groupBy {
	case "severity", "category", "source", "repo_id":
	default:
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: fmt.Sprintf("unsupported groupBy column %q", groupBy)}
	}

	rows, err := h.db.Query(fmt.Sprintf(`SELECT %s, COUNT(*) FROM unified_diagnostics WHERE resolved = 0 GROUP BY %s`, groupBy, groupBy))
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "grouping diagnostics", Err: err}
	}
	defer rows.Close()

	summary := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		summary[key] = count
	}
	return summary, rows.Err()
}

// ValidationCounts is getValidationCounts' return shape.
type ValidationCounts struct {
	Critical   int `json:"critical"`
	Error      int `json:"error"`
	Warning    int `json:"warning"`
	Note       int `json:"note"`
	Suggestion int `json:"suggestion"`
}

// GetValidationCounts reports unresolved diagnostic counts per severity.
func (h *Hub) GetValidationCounts() (*ValidationCounts, error) {
	summary, err := h.GetValidationSummary("severity")
	if err != nil {
		return nil, err
	}
	return &ValidationCounts{
		Critical:   summary[string(SeverityCritical)],
		Error:      summary[string(SeverityError)],
		Warning:    summary[string(SeverityWarning)],
		Note:       summary[string(SeverityNote)],
		Suggestion: summary[string(SeveritySuggestion)],
	}, nil
}
