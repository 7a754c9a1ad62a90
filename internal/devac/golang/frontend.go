// Package golang is the in-process Go front-end (§4.1): it wraps
// internal/parser (tree-sitter) and internal/extract (entity and call-graph
// extraction) behind the parserorch.FrontEnd contract, translating their
// Go-shaped output into the language-agnostic model.StructuralParseResult.
//
// Every other language is expected to arrive as a SubprocessFrontEnd; this
// package is the one worked example of what a front-end does with that
// extracted data before it reaches the rest of the core.
package golang

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/entityid"
	"github.com/anthropics/devac/internal/devac/model"
	"github.com/anthropics/devac/internal/devac/parserorch"
	"github.com/anthropics/devac/internal/extract"
	"github.com/anthropics/devac/internal/parser"
)

// Version identifies this front-end's extraction behavior for cache
// invalidation when the Federation Hub decides whether a seed is stale.
const Version = "1"

// FrontEnd implements parserorch.FrontEnd for Go source files.
type FrontEnd struct {
	repo string
}

// New builds a Go front-end. repo identifies the repository component of
// every entity ID this front-end produces (§4.2).
func New(repo string) *FrontEnd {
	return &FrontEnd{repo: repo}
}

func (f *FrontEnd) Language() string     { return "go" }
func (f *FrontEnd) Extensions() []string { return []string{".go"} }
func (f *FrontEnd) Version() string      { return Version }

func (f *FrontEnd) CanParse(file string) bool {
	return strings.HasSuffix(file, ".go")
}

// Parse reads file and parses it.
func (f *FrontEnd) Parse(ctx context.Context, file string, cfg parserorch.Config) (*model.StructuralParseResult, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseSyntax, File: file, Detail: "reading file", Err: err}
	}
	return f.ParseContent(ctx, content, file, cfg)
}

// ParseContent parses in-memory content as if it were file.
func (f *FrontEnd) ParseContent(ctx context.Context, content []byte, file string, cfg parserorch.Config) (*model.StructuralParseResult, error) {
	start := time.Now()

	p, err := parser.NewParser(parser.Go)
	if err != nil {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseExternalToolFailure, File: file, Detail: "constructing tree-sitter parser", Err: err}
	}
	defer p.Close()

	result, err := p.Parse(content)
	if err != nil {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseSyntax, File: file, Detail: err.Error(), Err: err}
	}
	defer result.Close()
	result.FilePath = file

	var warnings []string
	if result.HasErrors() {
		warnings = append(warnings, "syntax errors present; extraction is partial")
	}

	ex := extract.NewExtractor(result)
	withNodes, err := ex.ExtractAllWithNodes()
	if err != nil {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseSyntax, File: file, Detail: "extracting entities", Err: err}
	}

	packagePath := packagePathFor(file)

	cgEntities := make([]extract.CallGraphEntity, len(withNodes))
	entityIDs := make([]string, len(withNodes))
	for i, ew := range withNodes {
		scoped := entityid.ScopedName(ew.Entity.Name, ancestorsFor(ew.Entity)...)
		id := entityid.Generate(f.repo, packagePath, string(ew.Entity.Kind), file, scoped)
		entityIDs[i] = id

		cg := ew.Entity.ToCallGraphEntity()
		cg.ID = id
		cg.Node = ew.Node
		cgEntities[i] = cg
	}

	cge := extract.NewCallGraphExtractor(result, cgEntities)
	deps, err := cge.ExtractDependencies()
	if err != nil {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseSyntax, File: file, Detail: "extracting call graph", Err: err}
	}

	nodes := make([]model.Node, 0, len(withNodes))
	externalRefs := make([]model.ExternalRef, 0)
	now := time.Now().Unix()
	for i, ew := range withNodes {
		if ew.Entity.Kind == extract.ImportEntity {
			externalRefs = append(externalRefs, toExternalRef(ew.Entity, entityIDs[i], file))
			continue
		}
		nodes = append(nodes, toModelNode(ew.Entity, entityIDs[i], now))
	}

	edges := make([]model.Edge, 0, len(deps))
	effects := make([]model.Effect, 0)
	for _, dep := range deps {
		edges = append(edges, toModelEdge(dep, file))
		if dep.DepType == extract.Calls {
			effects = append(effects, toFunctionCallEffect(dep, file, now))
		}
	}

	return &model.StructuralParseResult{
		Nodes:          nodes,
		Edges:          edges,
		ExternalRefs:   externalRefs,
		Effects:        effects,
		SourceFileHash: extract.ComputeFileHash(content),
		FilePath:       file,
		ParseTimeMs:    time.Since(start).Milliseconds(),
		Warnings:       warnings,
	}, nil
}

// packagePathFor derives the §4.2 package-path component from a file's
// directory, the Go convention for a package's identity.
func packagePathFor(file string) string {
	dir := path.Dir(entityid.Normalize(file))
	if dir == "." {
		return ""
	}
	return dir
}

// ancestorsFor returns the scoped-name ancestor chain for an entity: a
// method's receiver type, or nothing for a free function, type, constant,
// variable or import.
func ancestorsFor(e *extract.Entity) []string {
	if e.Kind != extract.MethodEntity || e.Receiver == "" {
		return nil
	}
	return []string{strings.TrimPrefix(e.Receiver, "*")}
}

func toModelNode(e *extract.Entity, id string, now int64) model.Node {
	qualified := e.Name
	if ancestors := ancestorsFor(e); len(ancestors) > 0 {
		qualified = strings.Join(ancestors, ".") + "." + e.Name
	}

	return model.Node{
		EntityID:      id,
		Name:          e.Name,
		QualifiedName: qualified,
		Kind:          kindFor(e),
		FilePath:      e.File,
		StartLine:     int32(e.StartLine),
		EndLine:       int32(e.EndLine),
		IsExported:    e.Visibility == extract.VisibilityPublic,
		Visibility:    visibilityFor(e.Visibility),
		TypeSignature: e.FormatSignature(),
		Documentation: e.DocComment,
		Properties:    map[string]string{"skeleton": e.Skeleton},
		UpdatedAt:     now,
	}
}

func kindFor(e *extract.Entity) string {
	switch e.Kind {
	case extract.FunctionEntity:
		return string(model.KindFunction)
	case extract.MethodEntity:
		return string(model.KindMethod)
	case extract.TypeEntity:
		switch e.TypeKind {
		case extract.InterfaceKind:
			return string(model.KindInterface)
		default:
			return string(model.KindClass)
		}
	case extract.ConstEntity:
		return string(model.KindConstant)
	case extract.VarEntity:
		return string(model.KindVariable)
	default:
		return string(model.KindUnknown)
	}
}

func visibilityFor(v extract.Visibility) string {
	if v == extract.VisibilityPublic {
		return string(model.VisibilityPublic)
	}
	return string(model.VisibilityPrivate)
}

func toExternalRef(e *extract.Entity, id string, file string) model.ExternalRef {
	return model.ExternalRef{
		SourceEntityID:  id,
		ModuleSpecifier: e.ImportPath,
		ImportedSymbol:  path.Base(e.ImportPath),
		LocalAlias:      e.ImportAlias,
		ImportStyle:     string(model.ImportSideEffect),
		SourceFilePath:  file,
		SourceLine:      int32(e.StartLine),
	}
}

func toModelEdge(dep extract.Dependency, file string) model.Edge {
	target := dep.ToID
	if target == "" {
		symbol := dep.ToQualified
		if symbol == "" {
			symbol = dep.ToName
		}
		target = model.Unresolved(symbol)
	}

	line, _ := parseLocationLine(dep.Location)
	props := map[string]string{}
	if dep.Optional {
		props["optional"] = "true"
	}

	return model.Edge{
		SourceEntityID: dep.FromID,
		TargetEntityID: target,
		EdgeType:       string(edgeTypeFor(dep.DepType)),
		SourceFilePath: file,
		SourceLine:     line,
		Properties:     props,
	}
}

func edgeTypeFor(d extract.DepType) model.EdgeType {
	switch d {
	case extract.Calls:
		return model.EdgeCalls
	case extract.UsesType:
		return model.EdgeReferences
	case extract.Implements:
		return model.EdgeImplements
	case extract.Extends:
		return model.EdgeExtends
	case extract.MethodOf:
		return model.EdgeContains
	case extract.Contains:
		return model.EdgeContains
	default:
		return model.EdgeReferences
	}
}

func toFunctionCallEffect(dep extract.Dependency, file string, now int64) model.Effect {
	line, _ := parseLocationLine(dep.Location)
	calleeName := dep.ToName
	qualified := dep.ToQualified
	if qualified == "" {
		qualified = calleeName
	}

	return model.Effect{
		EffectID:            fmt.Sprintf("%s@%s:%d", calleeName, file, line),
		EffectType:          string(model.EffectFunctionCall),
		Timestamp:           now,
		SourceEntityID:      dep.FromID,
		SourceFilePath:      file,
		SourceLine:          line,
		CalleeName:          calleeName,
		CalleeQualifiedName: qualified,
		IsMethodCall:        strings.Contains(qualified, "."),
		IsExternal:          dep.ToID == "",
		ExternalModule:      externalModuleFor(dep),
	}
}

func externalModuleFor(dep extract.Dependency) string {
	if dep.ToID != "" || !strings.Contains(dep.ToQualified, ".") {
		return ""
	}
	parts := strings.SplitN(dep.ToQualified, ".", 2)
	return parts[0]
}

// parseLocationLine extracts the line number from a "file:line" location
// string built by internal/extract's nodeLocation helper.
func parseLocationLine(loc string) (int32, bool) {
	idx := strings.LastIndex(loc, ":")
	if idx == -1 {
		return 0, false
	}
	var line int
	if _, err := fmt.Sscanf(loc[idx+1:], "%d", &line); err != nil {
		return 0, false
	}
	return int32(line), true
}
