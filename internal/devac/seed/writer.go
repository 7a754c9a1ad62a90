// Package seed implements the Seed Writer and Seed Reader (§4.4/§4.5): a
// columnar partition layout per package, committed with the atomic
// lock-stage-rename-fsync protocol §4.4 requires, backed by
// xitongsys/parquet-go(-source) for the partition files and gofrs/flock for
// the cooperative exclusive lock.
package seed

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/model"
)

// lockTimeout bounds how long a writer waits for the seed's exclusive lock
// before giving up with StorageError{LockTimeout} (§4.4 step 1 is
// "blocking" in principle; a bound keeps a wedged writer from hanging a CLI
// invocation forever).
const lockTimeout = 30 * time.Second

// Writer persists StructuralParseResults into one package's seed directory
// (base, or a named branch) following the §4.4 atomicity protocol.
type Writer struct {
	dir    string // <package>/.devac/seed/base or .../branches/<branch>
	branch string // "" for base
}

// Base opens the writer for a package's base partition set at root
// (<package>/.devac/seed).
func Base(root string) *Writer {
	return &Writer{dir: filepath.Join(root, "base")}
}

// Branch opens the writer for a named feature branch's partition set.
func Branch(root, branch string) *Writer {
	return &Writer{dir: filepath.Join(root, "branches", branch), branch: branch}
}

func (w *Writer) withLock(fn func(*snapshot) error) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: w.dir, Detail: "creating seed directory", Err: err}
	}
	cleanupOrphanedTmp(w.dir)

	lock := flock.New(filepath.Join(w.dir, ".lock"))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return &devacerr.StorageError{Kind: devacerr.StorageLockTimeout, Seed: w.dir, Detail: "acquiring seed lock", Err: err}
	}
	if !locked {
		return &devacerr.StorageError{Kind: devacerr.StorageLockTimeout, Seed: w.dir, Detail: "seed lock held by another writer"}
	}
	defer lock.Unlock()

	snap, err := loadSnapshot(w.dir)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return snap.commit(w.dir)
}

// WriteFile persists one file's parse result (§4.4 writeFile). On base,
// all rows for result.FilePath are replaced. On a branch, rows are upserted
// by (source_file_path, source_file_hash) and the prior version is kept
// with is_deleted=true rather than removed outright.
func (w *Writer) WriteFile(result *model.StructuralParseResult) error {
	return w.withLock(func(s *snapshot) error {
		w.applyFile(s, result)
		return nil
	})
}

// UpdateFile is the bulk variant of WriteFile (§4.4 updateFile): every
// result is applied under a single lock acquisition and a single commit.
func (w *Writer) UpdateFile(results []*model.StructuralParseResult) error {
	return w.withLock(func(s *snapshot) error {
		for _, result := range results {
			w.applyFile(s, result)
		}
		return nil
	})
}

func (w *Writer) applyFile(s *snapshot, result *model.StructuralParseResult) {
	if w.branch == "" {
		s.nodes = replaceNodesForFile(s.nodes, result.FilePath, result.Nodes)
		s.edges = replaceEdgesForFile(s.edges, result.FilePath, result.Edges)
		s.refs = replaceRefsForFile(s.refs, result.FilePath, result.ExternalRefs)
		s.effects = replaceEffectsForFile(s.effects, result.FilePath, result.Effects)
		s.fileHashes = upsertFileHash(s.fileHashes, result.FilePath, result.SourceFileHash, w.branch)
		return
	}

	s.nodes = upsertBranchNodes(s.nodes, result.FilePath, result.SourceFileHash, result.Nodes, w.branch)
	s.edges = upsertBranchEdges(s.edges, result.FilePath, result.SourceFileHash, result.Edges, w.branch)
	s.refs = upsertBranchRefs(s.refs, result.FilePath, result.SourceFileHash, result.ExternalRefs, w.branch)
	s.effects = upsertBranchEffects(s.effects, result.FilePath, result.SourceFileHash, result.Effects, w.branch)
	s.fileHashes = upsertFileHash(s.fileHashes, result.FilePath, result.SourceFileHash, w.branch)
}

// DeleteFile removes (base) or soft-deletes (branch) every row belonging
// to the listed files (§4.4 deleteFile).
func (w *Writer) DeleteFile(files []string) error {
	return w.withLock(func(s *snapshot) error {
		set := make(map[string]bool, len(files))
		for _, f := range files {
			set[f] = true
		}

		if w.branch == "" {
			s.nodes = filterNodes(s.nodes, func(n model.Node) bool { return !set[n.FilePath] })
			s.edges = filterEdges(s.edges, func(e model.Edge) bool { return !set[e.SourceFilePath] })
			s.refs = filterRefs(s.refs, func(r model.ExternalRef) bool { return !set[r.SourceFilePath] })
			s.effects = filterEffects(s.effects, func(e model.Effect) bool { return !set[e.SourceFilePath] })
			s.fileHashes = filterFileHashes(s.fileHashes, func(f fileHashRow) bool { return !set[f.FilePath] })
			return nil
		}

		for i := range s.nodes {
			if set[s.nodes[i].FilePath] {
				s.nodes[i].IsDeleted = true
			}
		}
		for i := range s.edges {
			if set[s.edges[i].SourceFilePath] {
				s.edges[i].IsDeleted = true
			}
		}
		for i := range s.refs {
			if set[s.refs[i].SourceFilePath] {
				s.refs[i].IsDeleted = true
			}
		}
		for i := range s.effects {
			if set[s.effects[i].SourceFilePath] {
				s.effects[i].IsDeleted = true
			}
		}
		return nil
	})
}

// UpdateResolvedRefs rewrites the listed ExternalRefs' target_entity_id and
// is_resolved in place, preserving every other column (§4.4).
func (w *Writer) UpdateResolvedRefs(updates []model.ExternalRef) error {
	return w.withLock(func(s *snapshot) error {
		byKey := make(map[string]model.ExternalRef, len(updates))
		for _, u := range updates {
			byKey[refKey(u.SourceEntityID, u.ModuleSpecifier, u.ImportedSymbol)] = u
		}
		for i := range s.refs {
			key := refKey(s.refs[i].SourceEntityID, s.refs[i].ModuleSpecifier, s.refs[i].ImportedSymbol)
			if u, ok := byKey[key]; ok {
				s.refs[i].TargetEntityID = u.TargetEntityID
				s.refs[i].IsResolved = u.IsResolved
			}
		}
		return nil
	})
}

// EdgeUpdate identifies one edge by its natural key (source entity + source
// line) and carries its newly-resolved target.
type EdgeUpdate struct {
	SourceEntityID string
	SourceLine     int32
	TargetEntityID string
}

// UpdateResolvedCallEdges rewrites CALLS edges' target_entity_id in place
// once the callee resolves (§4.4).
func (w *Writer) UpdateResolvedCallEdges(updates []EdgeUpdate) error {
	return w.withLock(func(s *snapshot) error {
		applyEdgeUpdates(s.edges, updates, string(model.EdgeCalls))
		return nil
	})
}

// UpdateResolvedExtendsEdges rewrites EXTENDS edges' target_entity_id in
// place once the base type resolves (§4.4), the escape hatch out of the
// unresolved sentinel described in Testable Scenario E1.
func (w *Writer) UpdateResolvedExtendsEdges(updates []EdgeUpdate) error {
	return w.withLock(func(s *snapshot) error {
		applyEdgeUpdates(s.edges, updates, string(model.EdgeExtends))
		return nil
	})
}

func applyEdgeUpdates(edges []model.Edge, updates []EdgeUpdate, edgeType string) {
	byKey := make(map[string]string, len(updates))
	for _, u := range updates {
		byKey[edgeKey(u.SourceEntityID, u.SourceLine)] = u.TargetEntityID
	}
	for i := range edges {
		if edges[i].EdgeType != edgeType {
			continue
		}
		if target, ok := byKey[edgeKey(edges[i].SourceEntityID, edges[i].SourceLine)]; ok {
			edges[i].TargetEntityID = target
		}
	}
}

func edgeKey(sourceEntityID string, line int32) string {
	return sourceEntityID + "@" + strconv.Itoa(int(line))
}

func refKey(sourceEntityID, module, symbol string) string {
	return sourceEntityID + "|" + module + "|" + symbol
}
