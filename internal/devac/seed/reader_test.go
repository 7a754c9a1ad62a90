package seed

import (
	"path/filepath"
	"testing"

	"github.com/anthropics/devac/internal/devac/model"
)

func multiEffectResult(file string) *model.StructuralParseResult {
	entity := "repo:" + file + ":function:abc123"
	return &model.StructuralParseResult{
		FilePath:       file,
		SourceFileHash: "hash1",
		Nodes: []model.Node{
			{EntityID: entity, Name: "Foo", FilePath: file, StartLine: 1, EndLine: 10},
		},
		Effects: []model.Effect{
			{EffectID: "e1", EffectType: string(model.EffectStore), SourceEntityID: entity, SourceFilePath: file, SourceLine: 2, CalleeName: "db.Save", IsExternal: true},
			{EffectID: "e2", EffectType: string(model.EffectRetrieve), SourceEntityID: entity, SourceFilePath: file, SourceLine: 3, CalleeName: "db.Find", IsExternal: true},
			{EffectID: "e3", EffectType: string(model.EffectFunctionCall), SourceEntityID: entity, SourceFilePath: file, SourceLine: 4, CalleeName: "helper", IsExternal: false},
		},
	}
}

func openBase(t *testing.T, dir string) *Reader {
	t.Helper()
	r, err := Open(filepath.Join(dir, "base"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestReadEffectsFiltersByType(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	if err := w.WriteFile(multiEffectResult("pkg/foo.go")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := openBase(t, dir)
	page := r.ReadEffects(EffectFilter{EffectType: string(model.EffectStore)})
	if page.TotalCount != 1 || len(page.Effects) != 1 {
		t.Fatalf("expected exactly 1 Store effect, got %+v", page)
	}
	if page.Effects[0].CalleeName != "db.Save" {
		t.Fatalf("unexpected effect returned: %+v", page.Effects[0])
	}
}

func TestReadEffectsFiltersByIsExternal(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	if err := w.WriteFile(multiEffectResult("pkg/foo.go")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := openBase(t, dir)
	internal := false
	page := r.ReadEffects(EffectFilter{IsExternal: &internal})
	if page.TotalCount != 1 {
		t.Fatalf("expected 1 non-external effect, got %d", page.TotalCount)
	}
}

func TestReadEffectsPagination(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	if err := w.WriteFile(multiEffectResult("pkg/foo.go")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := openBase(t, dir)
	page := r.ReadEffects(EffectFilter{Limit: 2})
	if len(page.Effects) != 2 {
		t.Fatalf("expected a page of 2, got %d", len(page.Effects))
	}
	if !page.HasMore {
		t.Fatalf("expected HasMore to be true with 1 effect remaining")
	}
	if page.TotalCount != 3 {
		t.Fatalf("expected TotalCount to report the full match set, got %d", page.TotalCount)
	}

	rest := r.ReadEffects(EffectFilter{Limit: 2, Offset: 2})
	if len(rest.Effects) != 1 || rest.HasMore {
		t.Fatalf("expected the final page to hold the remaining effect with no more after it, got %+v", rest)
	}
}

func TestReadFunctionCallsAndExternalCalls(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	if err := w.WriteFile(multiEffectResult("pkg/foo.go")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := openBase(t, dir)
	if calls := r.ReadFunctionCalls(); len(calls) != 1 {
		t.Fatalf("expected 1 untouched FunctionCall effect, got %d", len(calls))
	}
	if external := r.ReadExternalCalls(); len(external) != 2 {
		t.Fatalf("expected 2 effects flagged external, got %d", len(external))
	}
}

func TestQueryAgainstMaterializedViews(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	if err := w.WriteFile(multiEffectResult("pkg/foo.go")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := openBase(t, dir)
	rows, err := r.Query("SELECT effect_type, COUNT(*) FROM effects GROUP BY effect_type ORDER BY effect_type")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var effectType string
		var n int
		if err := rows.Scan(&effectType, &n); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		counts[effectType] = n
	}
	if counts[string(model.EffectStore)] != 1 || counts[string(model.EffectRetrieve)] != 1 || counts[string(model.EffectFunctionCall)] != 1 {
		t.Fatalf("unexpected grouped counts: %+v", counts)
	}
}

func TestReadBySourceEntity(t *testing.T) {
	dir := t.TempDir()
	w := Base(dir)
	if err := w.WriteFile(multiEffectResult("pkg/foo.go")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := openBase(t, dir)
	effects := r.ReadBySourceEntity("repo:pkg/foo.go:function:abc123")
	if len(effects) != 3 {
		t.Fatalf("expected all 3 effects for the single source entity, got %d", len(effects))
	}
	if empty := r.ReadBySourceEntity("nonexistent"); len(empty) != 0 {
		t.Fatalf("expected no effects for an unknown source entity, got %d", len(empty))
	}
}
