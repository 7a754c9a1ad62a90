// Package parserorch is the Parser Orchestrator (§4.1): a language-agnostic
// driver that dispatches files to per-language front-ends and produces a
// uniform StructuralParseResult. Per §1, the front-ends themselves are
// out-of-core plugins; only this narrow contract and the registry that
// selects among registered front-ends belong to the core.
package parserorch

import (
	"context"

	"github.com/anthropics/devac/internal/devac/model"
)

// Config is passed through to a front-end's parse/parseContent calls. It is
// intentionally opaque here — each front-end interprets the fields it
// understands and ignores the rest, so the orchestrator never needs to know
// a front-end's config shape.
type Config map[string]any

// FrontEnd is the sole plug-in surface (§6 "Language front-end contract"):
// a language, the extensions it claims, a version, and three methods. An
// implementation may run in-process (internal/devac/golang) or out of
// process (NewSubprocessFrontEnd).
type FrontEnd interface {
	Language() string
	Extensions() []string
	Version() string
	Parse(ctx context.Context, file string, cfg Config) (*model.StructuralParseResult, error)
	ParseContent(ctx context.Context, content []byte, file string, cfg Config) (*model.StructuralParseResult, error)
	CanParse(file string) bool
}
