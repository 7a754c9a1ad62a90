package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/model"
)

// Reader exposes one seed directory's committed partitions as queryable
// relations (§4.5). Reads are snapshot-consistent: a Reader loads its view
// once at construction, matching the last commit of the §4.4 protocol.
type Reader struct {
	dir     string
	snap    *snapshot
	db      *sql.DB
	includeDeleted bool
}

// Open loads dir's current partition set (a seed's base or one of its
// branches) into a queryable snapshot.
func Open(dir string) (*Reader, error) {
	ok, err := VerifyChecksum(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &devacerr.StorageError{Kind: devacerr.StorageCorruptPartition, Seed: dir, Detail: "partition set does not match meta.json checksum; a prior write may not have fully committed"}
	}

	snap, err := loadSnapshot(dir)
	if err != nil {
		return nil, err
	}
	return &Reader{dir: dir, snap: snap}, nil
}

// Close releases the reader's query connection, if one was opened.
func (r *Reader) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// IncludeDeleted changes whether subsequent reads surface soft-deleted
// rows; the default is to filter them out (§4.5 "Soft-deleted rows are
// filtered by default").
func (r *Reader) IncludeDeleted(include bool) {
	r.includeDeleted = include
}

// Query executes sql against in-memory views named exactly after the
// partitions (nodes, edges, external_refs, effects), materialized from the
// loaded snapshot on the first call and reused by later calls until Close
// (§4.5 "Query context").
func (r *Reader) Query(querySQL string) (*sql.Rows, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(querySQL)
	if err != nil {
		return nil, &devacerr.HubError{Kind: devacerr.HubQueryCompileFailure, Detail: "query: " + querySQL, Err: err}
	}
	return rows, nil
}

func (r *Reader) ensureDB() error {
	if r.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return &devacerr.StorageError{Kind: devacerr.StorageCorruptPartition, Seed: r.dir, Detail: "opening query connection", Err: err}
	}
	if err := materialize(db, r.snap); err != nil {
		db.Close()
		return err
	}
	r.db = db
	return nil
}

// MaterializeInto inserts this reader's snapshot into db's
// nodes/edges/external_refs/effects tables, creating them first if absent.
// A caller can call this once per reader against one shared connection to
// build a true single-table union across several seeds before running its
// own query — see the Federation Hub's Query, which needs an aggregate
// (COUNT/SUM/GROUP BY) to run over the whole union rather than once per
// seed.
func (r *Reader) MaterializeInto(db *sql.DB) error {
	return materialize(db, r.snap)
}

// EffectFilter is the §4.5 readEffects parameter set.
type EffectFilter struct {
	EffectType        string
	SourceEntityID    string
	SourceFilePath    string
	IsExternal        *bool
	CalleeNamePattern string
	Limit             int
	Offset            int
}

// EffectPage is the §4.5 readEffects result shape.
type EffectPage struct {
	Effects    []model.Effect
	TotalCount int
	HasMore    bool
}

// ReadEffects filters effects in memory; a missing partition (zero
// effects) is not an error (§4.5).
func (r *Reader) ReadEffects(f EffectFilter) EffectPage {
	var matched []model.Effect
	for _, e := range r.snap.effects {
		if !r.includeDeleted && e.IsDeleted {
			continue
		}
		if f.EffectType != "" && e.EffectType != f.EffectType {
			continue
		}
		if f.SourceEntityID != "" && e.SourceEntityID != f.SourceEntityID {
			continue
		}
		if f.SourceFilePath != "" && e.SourceFilePath != f.SourceFilePath {
			continue
		}
		if f.IsExternal != nil && e.IsExternal != *f.IsExternal {
			continue
		}
		if f.CalleeNamePattern != "" && !strings.Contains(e.CalleeName, f.CalleeNamePattern) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	page := matched[start:end]
	return EffectPage{Effects: page, TotalCount: total, HasMore: end < total}
}

// ReadByType returns every effect of the given EffectType.
func (r *Reader) ReadByType(effectType string) []model.Effect {
	return r.ReadEffects(EffectFilter{EffectType: effectType, Limit: 0}).Effects
}

// ReadBySourceEntity returns every effect originating from sourceEntityID.
func (r *Reader) ReadBySourceEntity(sourceEntityID string) []model.Effect {
	return r.ReadEffects(EffectFilter{SourceEntityID: sourceEntityID}).Effects
}

// ReadByTargetEntity returns every edge whose target is targetEntityID —
// the complement operation to ReadBySourceEntity (§4.5).
func (r *Reader) ReadByTargetEntity(targetEntityID string) []model.Edge {
	var out []model.Edge
	for _, e := range r.snap.edges {
		if !r.includeDeleted && e.IsDeleted {
			continue
		}
		if e.TargetEntityID == targetEntityID {
			out = append(out, e)
		}
	}
	return out
}

// ReadFunctionCalls returns every FunctionCall-variant effect still
// untouched by the Effect Mapper.
func (r *Reader) ReadFunctionCalls() []model.Effect {
	return r.ReadByType(string(model.EffectFunctionCall))
}

// ReadExternalCalls returns every effect flagged is_external.
func (r *Reader) ReadExternalCalls() []model.Effect {
	external := true
	return r.ReadEffects(EffectFilter{IsExternal: &external}).Effects
}

// Statistics summarizes a seed's row counts (§4.5 getStatistics).
type Statistics struct {
	NodeCount    int
	EdgeCount    int
	ExternalRefCount int
	EffectCount  int
	FileCount    int
	UnresolvedEdgeCount int
}

// GetStatistics reports row counts over the non-deleted rows (unless
// IncludeDeleted was set).
func (r *Reader) GetStatistics() Statistics {
	var stats Statistics
	for _, n := range r.snap.nodes {
		if r.includeDeleted || !n.IsDeleted {
			stats.NodeCount++
		}
	}
	for _, e := range r.snap.edges {
		if !r.includeDeleted && e.IsDeleted {
			continue
		}
		stats.EdgeCount++
		if model.IsUnresolved(e.TargetEntityID) {
			stats.UnresolvedEdgeCount++
		}
	}
	for _, ref := range r.snap.refs {
		if r.includeDeleted || !ref.IsDeleted {
			stats.ExternalRefCount++
		}
	}
	for _, e := range r.snap.effects {
		if r.includeDeleted || !e.IsDeleted {
			stats.EffectCount++
		}
	}
	stats.FileCount = len(r.snap.fileHashes)
	return stats
}

// FileHashDigest summarizes every tracked file's (path, hash, branch) into
// one checksum, so a caller (the Federation Hub's staleness check, §4.6)
// can detect that a package's source content changed without re-reading
// every row.
func (r *Reader) FileHashDigest() string {
	rows := make([]fileHashRow, len(r.snap.fileHashes))
	copy(rows, r.snap.fileHashes)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FilePath != rows[j].FilePath {
			return rows[i].FilePath < rows[j].FilePath
		}
		return rows[i].Branch < rows[j].Branch
	})

	h := sha256.New()
	for _, row := range rows {
		h.Write([]byte(row.FilePath + "|" + row.Hash + "|" + row.Branch + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// EnsureSchema creates the nodes/edges/external_refs/effects tables on db
// if absent, without inserting any rows. Callers that query a shared
// connection before any reader has materialized into it (e.g. the
// Federation Hub's Query with zero active packages) need the tables to
// exist so the query doesn't fail on a missing relation.
func EnsureSchema(db *sql.DB) error {
	return materialize(db, &snapshot{})
}

// materialize creates and populates nodes/edges/external_refs/effects
// tables in db from snap, naming columns after the model structs' JSON-ish
// field names so ad-hoc SQL reads naturally (§4.5 "logical views").
func materialize(db *sql.DB, snap *snapshot) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nodes (entity_id TEXT, name TEXT, qualified_name TEXT, kind TEXT, file_path TEXT, start_line INTEGER, end_line INTEGER, is_exported INTEGER, visibility TEXT, is_deleted INTEGER)`,
		`CREATE TABLE IF NOT EXISTS edges (source_entity_id TEXT, target_entity_id TEXT, edge_type TEXT, source_file_path TEXT, source_line INTEGER, is_deleted INTEGER)`,
		`CREATE TABLE IF NOT EXISTS external_refs (source_entity_id TEXT, module_specifier TEXT, imported_symbol TEXT, is_resolved INTEGER, target_entity_id TEXT, is_deleted INTEGER)`,
		`CREATE TABLE IF NOT EXISTS effects (effect_id TEXT, effect_type TEXT, source_entity_id TEXT, callee_name TEXT, is_external INTEGER, is_deleted INTEGER)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return &devacerr.StorageError{Kind: devacerr.StorageSchemaMismatch, Detail: "materializing view: " + stmt, Err: err}
		}
	}

	insertNode, err := db.Prepare(`INSERT INTO nodes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertNode.Close()
	for _, n := range snap.nodes {
		if _, err := insertNode.Exec(n.EntityID, n.Name, n.QualifiedName, n.Kind, n.FilePath, n.StartLine, n.EndLine, n.IsExported, n.Visibility, n.IsDeleted); err != nil {
			return err
		}
	}

	insertEdge, err := db.Prepare(`INSERT INTO edges VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertEdge.Close()
	for _, e := range snap.edges {
		if _, err := insertEdge.Exec(e.SourceEntityID, e.TargetEntityID, e.EdgeType, e.SourceFilePath, e.SourceLine, e.IsDeleted); err != nil {
			return err
		}
	}

	insertRef, err := db.Prepare(`INSERT INTO external_refs VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertRef.Close()
	for _, ref := range snap.refs {
		if _, err := insertRef.Exec(ref.SourceEntityID, ref.ModuleSpecifier, ref.ImportedSymbol, ref.IsResolved, ref.TargetEntityID, ref.IsDeleted); err != nil {
			return err
		}
	}

	insertEffect, err := db.Prepare(`INSERT INTO effects VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertEffect.Close()
	for _, e := range snap.effects {
		if _, err := insertEffect.Exec(e.EffectID, e.EffectType, e.SourceEntityID, e.CalleeName, e.IsExternal, e.IsDeleted); err != nil {
			return err
		}
	}

	return nil
}
