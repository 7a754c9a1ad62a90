package parserorch

import (
	"context"
	"testing"
	"time"

	"github.com/anthropics/devac/internal/devac/model"
)

type fakeFrontEnd struct {
	lang    string
	exts    []string
	version string
	delay   time.Duration
	warn    []string
	failErr error
}

func (f *fakeFrontEnd) Language() string     { return f.lang }
func (f *fakeFrontEnd) Extensions() []string { return f.exts }
func (f *fakeFrontEnd) Version() string      { return f.version }
func (f *fakeFrontEnd) CanParse(file string) bool {
	ext := extensionOf(file)
	for _, e := range f.exts {
		if normalizeExt(e) == ext {
			return true
		}
	}
	return false
}

func (f *fakeFrontEnd) Parse(ctx context.Context, file string, cfg Config) (*model.StructuralParseResult, error) {
	return f.ParseContent(ctx, nil, file, cfg)
}

func (f *fakeFrontEnd) ParseContent(ctx context.Context, content []byte, file string, cfg Config) (*model.StructuralParseResult, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &model.StructuralParseResult{
		Nodes:    []model.Node{{EntityID: "x:y:function:deadbeef00000000", Name: "Foo"}},
		FilePath: file,
		Warnings: f.warn,
	}, nil
}

func TestOrchestratorDispatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeFrontEnd{lang: "go", exts: []string{".go"}, version: "1"})
	orch := New(reg, 0, nil)

	result, err := orch.ParseContent(context.Background(), []byte("package main"), "main.go", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(result.Nodes))
	}
}

func TestOrchestratorEmptyFileNeverFails(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeFrontEnd{lang: "go", exts: []string{".go"}})
	orch := New(reg, 0, nil)

	result, err := orch.ParseContent(context.Background(), []byte{}, "empty.go", nil)
	if err != nil {
		t.Fatalf("empty file must never fail: %v", err)
	}
	if len(result.Nodes) != 0 {
		t.Fatalf("expected empty result, got %d nodes", len(result.Nodes))
	}
}

func TestOrchestratorUnsupportedExtension(t *testing.T) {
	reg := NewRegistry()
	orch := New(reg, 0, nil)
	if _, err := orch.ParseContent(context.Background(), []byte("x"), "main.rs", nil); err == nil {
		t.Fatal("expected error for unregistered extension")
	}
}

func TestOrchestratorTimeout(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeFrontEnd{lang: "go", exts: []string{".go"}, delay: 50 * time.Millisecond})
	orch := New(reg, 5*time.Millisecond, nil)

	_, err := orch.ParseContent(context.Background(), []byte("package main"), "main.go", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestRegistryCollisionResolvedByRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	first := &fakeFrontEnd{lang: "go-v1", exts: []string{".go"}}
	second := &fakeFrontEnd{lang: "go-v2", exts: []string{".go"}}
	reg.Register(first)
	reg.Register(second)

	fe, ok := reg.Lookup("main.go")
	if !ok || fe.Language() != "go-v1" {
		t.Fatalf("expected first-registered front-end to win, got %v", fe)
	}
	if len(reg.FrontEnds()) != 2 {
		t.Fatalf("expected both front-ends tracked, got %d", len(reg.FrontEnds()))
	}
}
