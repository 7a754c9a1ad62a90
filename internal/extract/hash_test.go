package extract

import "testing"

func TestComputeFileHash(t *testing.T) {
	content := []byte("package main\n\nfunc main() {}")

	hash1 := ComputeFileHash(content)
	hash2 := ComputeFileHash(content)

	if hash1 != hash2 {
		t.Errorf("File hash not deterministic: %s != %s", hash1, hash2)
	}

	if len(hash1) != HashLength {
		t.Errorf("Hash length should be %d, got %d", HashLength, len(hash1))
	}

	// Different content should produce different hash
	content2 := []byte("package main\n\nfunc main() { println() }")
	hash3 := ComputeFileHash(content2)
	if hash1 == hash3 {
		t.Errorf("Different content should produce different hash")
	}
}

func TestEntitySignatureHash_DifferentSignatures(t *testing.T) {
	tests := []struct {
		name    string
		entity1 *Entity
		entity2 *Entity
	}{
		{
			name: "different names",
			entity1: &Entity{
				Kind:    FunctionEntity,
				Name:    "FuncA",
				Params:  []Param{{Type: "int"}},
				Returns: []string{"int"},
			},
			entity2: &Entity{
				Kind:    FunctionEntity,
				Name:    "FuncB",
				Params:  []Param{{Type: "int"}},
				Returns: []string{"int"},
			},
		},
		{
			name: "different params",
			entity1: &Entity{
				Kind:    FunctionEntity,
				Name:    "Process",
				Params:  []Param{{Type: "int"}},
				Returns: []string{"int"},
			},
			entity2: &Entity{
				Kind:    FunctionEntity,
				Name:    "Process",
				Params:  []Param{{Type: "string"}},
				Returns: []string{"int"},
			},
		},
		{
			name: "different returns",
			entity1: &Entity{
				Kind:    FunctionEntity,
				Name:    "Process",
				Params:  []Param{{Type: "int"}},
				Returns: []string{"int"},
			},
			entity2: &Entity{
				Kind:    FunctionEntity,
				Name:    "Process",
				Params:  []Param{{Type: "int"}},
				Returns: []string{"error"},
			},
		},
		{
			name: "different receiver types",
			entity1: &Entity{
				Kind:     MethodEntity,
				Name:     "Process",
				Params:   []Param{{Type: "int"}},
				Returns:  []string{"int"},
				Receiver: "*Server",
			},
			entity2: &Entity{
				Kind:     MethodEntity,
				Name:     "Process",
				Params:   []Param{{Type: "int"}},
				Returns:  []string{"int"},
				Receiver: "Server",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entity1.ComputeHashes()
			tt.entity2.ComputeHashes()

			if tt.entity1.SigHash == tt.entity2.SigHash {
				t.Errorf("Different signatures should produce different hashes: %s == %s",
					tt.entity1.SigHash, tt.entity2.SigHash)
			}
		})
	}
}

func TestEntitySignatureHash_Deterministic(t *testing.T) {
	entity := &Entity{
		Kind:    FunctionEntity,
		Name:    "ProcessData",
		Params:  []Param{{Type: "[]byte"}},
		Returns: []string{"error"},
	}

	entity.ComputeHashes()
	hash1 := entity.SigHash

	entity.SigHash = "" // Reset
	entity.ComputeHashes()
	hash2 := entity.SigHash

	if hash1 != hash2 {
		t.Errorf("Hash not deterministic: %s != %s", hash1, hash2)
	}

	if len(hash1) != HashLength {
		t.Errorf("Hash length should be %d, got %d", HashLength, len(hash1))
	}
}

func TestEntityTypeHash(t *testing.T) {
	entity1 := &Entity{
		Kind:     TypeEntity,
		Name:     "User",
		TypeKind: StructKind,
		Fields: []Field{
			{Name: "ID", Type: "int"},
			{Name: "Name", Type: "string"},
		},
	}

	entity2 := &Entity{
		Kind:     TypeEntity,
		Name:     "User",
		TypeKind: StructKind,
		Fields: []Field{
			{Name: "ID", Type: "int"},
			{Name: "Email", Type: "string"}, // Different field
		},
	}

	entity1.ComputeHashes()
	entity2.ComputeHashes()

	if entity1.SigHash == entity2.SigHash {
		t.Errorf("Different struct fields should produce different hashes")
	}

	// Same entity should be deterministic
	hash1 := entity1.SigHash
	entity1.SigHash = ""
	entity1.ComputeHashes()
	if hash1 != entity1.SigHash {
		t.Errorf("Same entity should produce same hash: %s != %s", hash1, entity1.SigHash)
	}
}
