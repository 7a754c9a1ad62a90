package effectmap

import (
	"reflect"
	"testing"

	"github.com/anthropics/devac/internal/devac/model"
)

func functionCallEffect(callee, qualified string) model.Effect {
	return model.Effect{
		EffectType:          string(model.EffectFunctionCall),
		CalleeName:          callee,
		CalleeQualifiedName: qualified,
	}
}

func TestApplyPromotesStoreOperations(t *testing.T) {
	mappings := PackageEffectMappings{
		StoreOperations: []StoreOperation{
			{Pattern: "Save", Match: MatchSubstring, StoreType: "sql", Operation: "insert", TargetResource: "widgets", Provider: "postgres"},
		},
	}

	out := Apply([]model.Effect{functionCallEffect("Save", "db.Save")}, mappings)
	if out[0].EffectType != string(model.EffectStore) {
		t.Fatalf("expected Store effect, got %s", out[0].EffectType)
	}
	if out[0].TargetResource != "widgets" {
		t.Errorf("expected target resource widgets, got %s", out[0].TargetResource)
	}
}

func TestApplyPromotesRetrieveOperations(t *testing.T) {
	mappings := PackageEffectMappings{
		RetrieveOperations: []StoreOperation{
			{Pattern: "FindByID", Match: MatchEquality, StoreType: "sql", Operation: "select"},
		},
	}

	out := Apply([]model.Effect{functionCallEffect("FindByID", "repo.FindByID")}, mappings)
	if out[0].EffectType != string(model.EffectRetrieve) {
		t.Fatalf("expected Retrieve effect, got %s", out[0].EffectType)
	}
}

func TestApplyStoreWinsOverExternalWhenBothMatch(t *testing.T) {
	mappings := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "Send", Match: MatchSubstring, StoreType: "cache"}},
		ExternalCalls:   []ExternalCall{{Pattern: "Send", Match: MatchSubstring, SendType: "http"}},
	}

	out := Apply([]model.Effect{functionCallEffect("SendToCache", "cache.SendToCache")}, mappings)
	if out[0].EffectType != string(model.EffectStore) {
		t.Fatalf("expected store -> retrieve -> external precedence to pick Store, got %s", out[0].EffectType)
	}
}

func TestApplyNormalizesInvalidSendType(t *testing.T) {
	mappings := PackageEffectMappings{
		ExternalCalls: []ExternalCall{{Pattern: "Publish", Match: MatchSubstring, SendType: "carrier-pigeon"}},
	}

	out := Apply([]model.Effect{functionCallEffect("Publish", "bus.Publish")}, mappings)
	if out[0].SendType != "http" {
		t.Errorf("expected invalid send_type to normalize to http, got %s", out[0].SendType)
	}
}

func TestApplyLeavesNonMatchingFunctionCallUnchanged(t *testing.T) {
	mappings := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "Save", Match: MatchSubstring}},
	}

	in := functionCallEffect("Unrelated", "pkg.Unrelated")
	out := Apply([]model.Effect{in}, mappings)
	if !reflect.DeepEqual(out[0], in) {
		t.Errorf("expected unchanged effect, got %+v", out[0])
	}
}

func TestApplyLeavesNonFunctionCallEffectsUnchanged(t *testing.T) {
	in := model.Effect{EffectType: string(model.EffectCondition)}
	mappings := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "anything", Match: MatchSubstring}},
	}

	out := Apply([]model.Effect{in}, mappings)
	if !reflect.DeepEqual(out[0], in) {
		t.Errorf("expected non-FunctionCall effect untouched, got %+v", out[0])
	}
}

func TestMergePackageOverridesWorkspaceOnSamePattern(t *testing.T) {
	workspace := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "Save", StoreType: "sql"}},
	}
	pkg := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "Save", StoreType: "redis"}},
	}

	merged := Merge(workspace, pkg)
	if len(merged.StoreOperations) != 1 {
		t.Fatalf("expected one merged entry for shared pattern, got %d", len(merged.StoreOperations))
	}
	if merged.StoreOperations[0].StoreType != "redis" {
		t.Errorf("expected package mapping to win, got %s", merged.StoreOperations[0].StoreType)
	}
}

func TestMergeKeepsDisjointPatternsFromBothLayers(t *testing.T) {
	workspace := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "Save"}},
	}
	pkg := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "Persist"}},
	}

	merged := Merge(workspace, pkg)
	if len(merged.StoreOperations) != 2 {
		t.Fatalf("expected both disjoint patterns to contribute, got %d", len(merged.StoreOperations))
	}
}

func TestMatchEqualityRequiresExactName(t *testing.T) {
	mappings := PackageEffectMappings{
		StoreOperations: []StoreOperation{{Pattern: "Save", Match: MatchEquality, StoreType: "sql"}},
	}

	out := Apply([]model.Effect{functionCallEffect("SaveAll", "repo.SaveAll")}, mappings)
	if out[0].EffectType != string(model.EffectFunctionCall) {
		t.Fatalf("expected equality match to reject substring, got %s", out[0].EffectType)
	}
}
