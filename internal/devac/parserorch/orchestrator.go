package parserorch

import (
	"context"
	"os"
	"time"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/model"
	"go.uber.org/zap"
)

// Orchestrator dispatches files to registered front-ends and enforces the
// edge-case policies of §4.1: syntax errors never throw (they come back as
// a partial result with warnings), empty files return an empty result, and
// a per-file timeout fails with ParseError{Timeout}.
type Orchestrator struct {
	registry *Registry
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// New builds an orchestrator. A zero timeout disables the per-file deadline.
func New(registry *Registry, timeout time.Duration, log *zap.SugaredLogger) *Orchestrator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Orchestrator{registry: registry, timeout: timeout, log: log}
}

// CanParse reports whether some registered front-end claims file's extension.
func (o *Orchestrator) CanParse(file string) bool {
	_, ok := o.registry.Lookup(file)
	return ok
}

// Parse dispatches file to its front-end, reading its bytes first so every
// front-end (in-process or subprocess) sees the same content-based path.
func (o *Orchestrator) Parse(ctx context.Context, file string, cfg Config) (*model.StructuralParseResult, error) {
	fe, ok := o.registry.Lookup(file)
	if !ok {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseUnsupported, File: file, Detail: "no front-end registered for extension"}
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseSyntax, File: file, Detail: "reading file", Err: err}
	}

	if len(content) == 0 {
		return emptyResult(file), nil
	}

	return o.dispatch(ctx, fe, content, file, cfg)
}

// ParseContent parses in-memory content as if it were file, without
// touching the filesystem — used for ephemeral fixtures and tests (§4.1).
func (o *Orchestrator) ParseContent(ctx context.Context, content []byte, file string, cfg Config) (*model.StructuralParseResult, error) {
	fe, ok := o.registry.Lookup(file)
	if !ok {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseUnsupported, File: file, Detail: "no front-end registered for extension"}
	}
	if len(content) == 0 {
		return emptyResult(file), nil
	}
	return o.dispatch(ctx, fe, content, file, cfg)
}

func (o *Orchestrator) dispatch(ctx context.Context, fe FrontEnd, content []byte, file string, cfg Config) (*model.StructuralParseResult, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	type outcome struct {
		result *model.StructuralParseResult
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		result, err := fe.ParseContent(ctx, content, file, cfg)
		done <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		o.log.Warnw("parse timeout", "file", file, "language", fe.Language())
		return nil, &devacerr.ParseError{Kind: devacerr.ParseTimeout, File: file, Detail: "exceeded per-file timeout"}
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.result.ParseTimeMs == 0 {
			out.result.ParseTimeMs = time.Since(start).Milliseconds()
		}
		return out.result, nil
	}
}

func emptyResult(file string) *model.StructuralParseResult {
	return &model.StructuralParseResult{
		Nodes:        []model.Node{},
		Edges:        []model.Edge{},
		ExternalRefs: []model.ExternalRef{},
		Effects:      []model.Effect{},
		FilePath:     file,
	}
}
