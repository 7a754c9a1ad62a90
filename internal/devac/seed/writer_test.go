package seed

import (
	"path/filepath"
	"testing"

	"github.com/anthropics/devac/internal/devac/model"
)

func sampleResult(file, hash string) *model.StructuralParseResult {
	return &model.StructuralParseResult{
		FilePath:       file,
		SourceFileHash: hash,
		Nodes: []model.Node{
			{EntityID: "repo:" + file + ":function:abc123", Name: "Foo", FilePath: file, StartLine: 1, EndLine: 3},
		},
		Edges: []model.Edge{
			{SourceEntityID: "repo:" + file + ":function:abc123", TargetEntityID: model.Unresolved("Bar"), EdgeType: string(model.EdgeCalls), SourceFilePath: file, SourceLine: 2},
		},
		ExternalRefs: []model.ExternalRef{
			{SourceEntityID: "repo:" + file + ":function:abc123", ModuleSpecifier: "fmt", ImportedSymbol: "Println", SourceFilePath: file, SourceLine: 1},
		},
		Effects: []model.Effect{
			{EffectID: "Bar@" + file + ":2", EffectType: string(model.EffectFunctionCall), SourceEntityID: "repo:" + file + ":function:abc123", SourceFilePath: file, SourceLine: 2, CalleeName: "Bar", IsExternal: true},
		},
	}
}

func TestWriterBaseWriteFileThenRead(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)

	if err := w.WriteFile(sampleResult("pkg/foo.go", "hash1")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(filepath.Join(dir, "base"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	stats := r.GetStatistics()
	if stats.NodeCount != 1 || stats.EdgeCount != 1 || stats.ExternalRefCount != 1 || stats.EffectCount != 1 {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
	if stats.UnresolvedEdgeCount != 1 {
		t.Fatalf("expected 1 unresolved edge, got %d", stats.UnresolvedEdgeCount)
	}
}

func TestWriterBaseWriteFileReplacesPriorRows(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)

	if err := w.WriteFile(sampleResult("pkg/foo.go", "hash1")); err != nil {
		t.Fatalf("WriteFile 1: %v", err)
	}
	second := sampleResult("pkg/foo.go", "hash2")
	second.Nodes[0].Name = "Renamed"
	if err := w.WriteFile(second); err != nil {
		t.Fatalf("WriteFile 2: %v", err)
	}

	r, err := Open(filepath.Join(dir, "base"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	stats := r.GetStatistics()
	if stats.NodeCount != 1 {
		t.Fatalf("expected base rewrite to replace, not accumulate; got %d nodes", stats.NodeCount)
	}
}

func TestWriterBranchWritePreservesHistory(t *testing.T) {
	dir := t.TempDir()
	w := Branch(dir, "feature-x")

	if err := w.WriteFile(sampleResult("pkg/foo.go", "hash1")); err != nil {
		t.Fatalf("WriteFile 1: %v", err)
	}
	if err := w.WriteFile(sampleResult("pkg/foo.go", "hash2")); err != nil {
		t.Fatalf("WriteFile 2: %v", err)
	}

	r, err := Open(filepath.Join(dir, "branches", "feature-x"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	stats := r.GetStatistics()
	if stats.NodeCount != 1 {
		t.Fatalf("expected 1 live node after branch rewrite, got %d", stats.NodeCount)
	}

	r.IncludeDeleted(true)
	all := r.GetStatistics()
	if all.NodeCount != 2 {
		t.Fatalf("expected the superseded branch row to survive as soft-deleted; got %d total nodes", all.NodeCount)
	}
}

func TestWriterDeleteFileOnBase(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	if err := w.WriteFile(sampleResult("pkg/foo.go", "hash1")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := w.DeleteFile([]string{"pkg/foo.go"}); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	r, err := Open(filepath.Join(dir, "base"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	stats := r.GetStatistics()
	if stats.NodeCount != 0 || stats.EdgeCount != 0 {
		t.Fatalf("expected deleted rows gone on base, got %+v", stats)
	}
}

func TestWriterDeleteFileOnBranchSoftDeletes(t *testing.T) {
	dir := t.TempDir()
	w := Branch(dir, "feature-x")
	if err := w.WriteFile(sampleResult("pkg/foo.go", "hash1")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := w.DeleteFile([]string{"pkg/foo.go"}); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	r, err := Open(filepath.Join(dir, "branches", "feature-x"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if stats := r.GetStatistics(); stats.NodeCount != 0 {
		t.Fatalf("expected soft-deleted node hidden by default, got %d", stats.NodeCount)
	}

	r.IncludeDeleted(true)
	if stats := r.GetStatistics(); stats.NodeCount != 1 {
		t.Fatalf("expected soft-deleted node to still exist, got %d", stats.NodeCount)
	}
}

func TestWriterUpdateResolvedCallEdges(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	result := sampleResult("pkg/foo.go", "hash1")
	if err := w.WriteFile(result); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	update := EdgeUpdate{
		SourceEntityID: "repo:pkg/foo.go:function:abc123",
		SourceLine:     2,
		TargetEntityID: "repo:pkg/bar.go:function:def456",
	}
	if err := w.UpdateResolvedCallEdges([]EdgeUpdate{update}); err != nil {
		t.Fatalf("UpdateResolvedCallEdges: %v", err)
	}

	r, err := Open(filepath.Join(dir, "base"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	byTarget := r.ReadByTargetEntity(update.TargetEntityID)
	if len(byTarget) != 1 {
		t.Fatalf("expected the edge to now resolve to the new target, got %d matches", len(byTarget))
	}
}

func TestWriterUpdateResolvedRefs(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	result := sampleResult("pkg/foo.go", "hash1")
	if err := w.WriteFile(result); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	update := model.ExternalRef{
		SourceEntityID:  "repo:pkg/foo.go:function:abc123",
		ModuleSpecifier: "fmt",
		ImportedSymbol:  "Println",
		TargetEntityID:  "stdlib:fmt:function:Println",
		IsResolved:      true,
	}
	if err := w.UpdateResolvedRefs([]model.ExternalRef{update}); err != nil {
		t.Fatalf("UpdateResolvedRefs: %v", err)
	}

	_, err := Open(filepath.Join(dir, "base"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
}

func TestMissingPartitionsReadAsEmpty(t *testing.T) {
	dir := t.TempDir()

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open on an untouched directory should not fail: %v", err)
	}
	defer r.Close()

	stats := r.GetStatistics()
	if stats.NodeCount != 0 || stats.EdgeCount != 0 || stats.EffectCount != 0 {
		t.Fatalf("expected all-zero statistics for a seed with no partitions yet, got %+v", stats)
	}
}
