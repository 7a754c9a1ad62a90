package seed

import "github.com/anthropics/devac/internal/devac/model"

// replaceNodesForFile drops every existing row for filePath and appends
// fresh ones — the base writeFile semantics (§4.4): base has no history, so
// a rewrite is a plain replace.
func replaceNodesForFile(existing []model.Node, filePath string, fresh []model.Node) []model.Node {
	out := filterNodes(existing, func(n model.Node) bool { return n.FilePath != filePath })
	return append(out, fresh...)
}

func replaceEdgesForFile(existing []model.Edge, filePath string, fresh []model.Edge) []model.Edge {
	out := filterEdges(existing, func(e model.Edge) bool { return e.SourceFilePath != filePath })
	return append(out, fresh...)
}

func replaceRefsForFile(existing []model.ExternalRef, filePath string, fresh []model.ExternalRef) []model.ExternalRef {
	out := filterRefs(existing, func(r model.ExternalRef) bool { return r.SourceFilePath != filePath })
	return append(out, fresh...)
}

func replaceEffectsForFile(existing []model.Effect, filePath string, fresh []model.Effect) []model.Effect {
	out := filterEffects(existing, func(e model.Effect) bool { return e.SourceFilePath != filePath })
	return append(out, fresh...)
}

// upsertBranchNodes implements the branch writeFile semantics (§4.4): rows
// are upserted by (source_file_path, source_file_hash); a prior version of
// filePath under the same branch is kept but marked is_deleted rather than
// removed, preserving branch history.
func upsertBranchNodes(existing []model.Node, filePath, fileHash string, fresh []model.Node, branch string) []model.Node {
	for i := range existing {
		if existing[i].Branch == branch && existing[i].FilePath == filePath && existing[i].SourceFileHash != fileHash {
			existing[i].IsDeleted = true
		}
	}
	out := existing
	for _, n := range fresh {
		n.Branch = branch
		out = append(out, n)
	}
	return out
}

func upsertBranchEdges(existing []model.Edge, filePath, fileHash string, fresh []model.Edge, branch string) []model.Edge {
	for i := range existing {
		if existing[i].Branch == branch && existing[i].SourceFilePath == filePath && existing[i].SourceFileHash != fileHash {
			existing[i].IsDeleted = true
		}
	}
	out := existing
	for _, e := range fresh {
		e.Branch = branch
		out = append(out, e)
	}
	return out
}

func upsertBranchRefs(existing []model.ExternalRef, filePath, fileHash string, fresh []model.ExternalRef, branch string) []model.ExternalRef {
	for i := range existing {
		if existing[i].Branch == branch && existing[i].SourceFilePath == filePath {
			existing[i].IsDeleted = true
		}
	}
	out := existing
	for _, r := range fresh {
		r.Branch = branch
		out = append(out, r)
	}
	return out
}

func upsertBranchEffects(existing []model.Effect, filePath, fileHash string, fresh []model.Effect, branch string) []model.Effect {
	for i := range existing {
		if existing[i].Branch == branch && existing[i].SourceFilePath == filePath {
			existing[i].IsDeleted = true
		}
	}
	out := existing
	for _, e := range fresh {
		e.Branch = branch
		out = append(out, e)
	}
	return out
}

func upsertFileHash(existing []fileHashRow, filePath, hash, branch string) []fileHashRow {
	for i := range existing {
		if existing[i].FilePath == filePath && existing[i].Branch == branch {
			existing[i].Hash = hash
			return existing
		}
	}
	return append(existing, fileHashRow{FilePath: filePath, Hash: hash, Branch: branch})
}

func filterNodes(in []model.Node, keep func(model.Node) bool) []model.Node {
	out := make([]model.Node, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterEdges(in []model.Edge, keep func(model.Edge) bool) []model.Edge {
	out := make([]model.Edge, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterRefs(in []model.ExternalRef, keep func(model.ExternalRef) bool) []model.ExternalRef {
	out := make([]model.ExternalRef, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterEffects(in []model.Effect, keep func(model.Effect) bool) []model.Effect {
	out := make([]model.Effect, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func filterFileHashes(in []fileHashRow, keep func(fileHashRow) bool) []fileHashRow {
	out := make([]fileHashRow, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
