package golang

import (
	"context"
	"strings"
	"testing"

	"github.com/anthropics/devac/internal/devac/model"
)

const testSource = `package widgets

import "fmt"

type Base struct{}

// Widget renders something.
type Widget struct {
	Base
	Name string
}

func (w *Widget) Render() string {
	fmt.Println(helper())
	return w.Name
}

func helper() string {
	return "ok"
}
`

func TestParseContentProducesNodesAndEdges(t *testing.T) {
	fe := New("myrepo")
	result, err := fe.ParseContent(context.Background(), []byte(testSource), "widgets/widget.go", nil)
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}

	if len(result.Nodes) == 0 {
		t.Fatal("expected at least one node")
	}
	if result.SourceFileHash == "" {
		t.Fatal("expected a non-empty source file hash")
	}

	var sawCall bool
	for _, e := range result.Edges {
		if e.EdgeType == string(model.EdgeCalls) {
			sawCall = true
		}
	}
	if !sawCall {
		t.Fatal("expected a CALLS edge for Render -> helper")
	}
}

func TestParseContentRetainsUnresolvedCalls(t *testing.T) {
	fe := New("myrepo")
	result, err := fe.ParseContent(context.Background(), []byte(testSource), "widgets/widget.go", nil)
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}

	var sawUnresolved bool
	for _, e := range result.Edges {
		if e.EdgeType == string(model.EdgeCalls) && model.IsUnresolved(e.TargetEntityID) {
			sawUnresolved = true
			if !strings.Contains(e.TargetEntityID, "Println") {
				t.Errorf("expected unresolved target to name Println, got %q", e.TargetEntityID)
			}
		}
	}
	if !sawUnresolved {
		t.Fatal("expected fmt.Println to be recorded as an unresolved CALLS edge, not dropped")
	}
}

func TestParseContentEmptyFileNeverFails(t *testing.T) {
	fe := New("myrepo")
	result, err := fe.ParseContent(context.Background(), []byte{}, "empty.go", nil)
	if err != nil {
		t.Fatalf("empty file must never fail: %v", err)
	}
	if result.FilePath != "empty.go" {
		t.Errorf("expected file path to be preserved, got %q", result.FilePath)
	}
}

func TestEntityIDsAreDeterministicAcrossParses(t *testing.T) {
	fe := New("myrepo")
	first, err := fe.ParseContent(context.Background(), []byte(testSource), "widgets/widget.go", nil)
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}
	second, err := fe.ParseContent(context.Background(), []byte(testSource), "widgets/widget.go", nil)
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}

	if len(first.Nodes) != len(second.Nodes) {
		t.Fatalf("expected stable node count, got %d vs %d", len(first.Nodes), len(second.Nodes))
	}
	for i := range first.Nodes {
		if first.Nodes[i].EntityID != second.Nodes[i].EntityID {
			t.Errorf("entity ID not stable across parses: %q vs %q", first.Nodes[i].EntityID, second.Nodes[i].EntityID)
		}
	}
}

func TestExtendsEdgeForEmbeddedStruct(t *testing.T) {
	fe := New("myrepo")
	result, err := fe.ParseContent(context.Background(), []byte(testSource), "widgets/widget.go", nil)
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}

	var sawExtends bool
	for _, e := range result.Edges {
		if e.EdgeType == string(model.EdgeExtends) {
			sawExtends = true
		}
	}
	if !sawExtends {
		t.Fatal("expected an EXTENDS edge for Widget embedding Base")
	}
}
