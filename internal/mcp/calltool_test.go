package mcp

import (
	"testing"
)

func TestGetToolSchemas(t *testing.T) {
	expectedTools := []string{"devac_query", "devac_affected", "devac_diagnostics"}

	for _, name := range expectedTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(expectedTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(expectedTools))
	}
}

func TestToolSchemaRequiredParams(t *testing.T) {
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"devac_query", "sql"},
		{"devac_affected", "entity_ids"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}
}

func TestToolSchemaDiagnosticsNoRequiredParams(t *testing.T) {
	schema := toolSchemaRegistry["devac_diagnostics"]
	for _, p := range schema.Parameters {
		if p.Required {
			t.Errorf("devac_diagnostics param %s is marked required but should not be", p.Name)
		}
	}
}

func TestSplitTrim(t *testing.T) {
	got := splitTrim(" a, b ,c,")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitTrim: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitTrim[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}
