package parserorch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/model"
)

// wireResponse is the JSON document an out-of-process front-end writes to
// stdout (§6 "Language front-end contract").
type wireResponse struct {
	Nodes          []model.Node        `json:"nodes"`
	Edges          []model.Edge        `json:"edges"`
	ExternalRefs   []model.ExternalRef `json:"externalRefs"`
	Effects        []model.Effect      `json:"effects,omitempty"`
	SourceFileHash string              `json:"sourceFileHash"`
	FilePath       string              `json:"filePath"`
	ParseTimeMs    int64               `json:"parseTimeMs"`
	Warnings       []string            `json:"warnings,omitempty"`
	Error          string              `json:"error,omitempty"`
}

// SubprocessFrontEnd adapts an external binary to the FrontEnd interface.
// One request goes on argv (the file path) plus the content on stdin; one
// JSON response document comes back on stdout. Per §4.1, the orchestrator
// accumulates stdout/stderr fully and parses only after the child exits,
// rejecting on non-zero exit or invalid JSON with
// ParseError{ExternalToolFailure}.
type SubprocessFrontEnd struct {
	language   string
	extensions []string
	version    string
	binary     string
	args       []string
}

// NewSubprocessFrontEnd builds a front-end that shells out to binary. extra
// args (if any) are passed before the file path argument.
func NewSubprocessFrontEnd(language string, extensions []string, version, binary string, extraArgs ...string) *SubprocessFrontEnd {
	return &SubprocessFrontEnd{language: language, extensions: extensions, version: version, binary: binary, args: extraArgs}
}

func (f *SubprocessFrontEnd) Language() string     { return f.language }
func (f *SubprocessFrontEnd) Extensions() []string { return f.extensions }
func (f *SubprocessFrontEnd) Version() string      { return f.version }

func (f *SubprocessFrontEnd) CanParse(file string) bool {
	ext := extensionOf(file)
	for _, want := range f.extensions {
		if normalizeExt(want) == ext {
			return true
		}
	}
	return false
}

func (f *SubprocessFrontEnd) Parse(ctx context.Context, file string, cfg Config) (*model.StructuralParseResult, error) {
	return f.run(ctx, nil, file, cfg)
}

func (f *SubprocessFrontEnd) ParseContent(ctx context.Context, content []byte, file string, cfg Config) (*model.StructuralParseResult, error) {
	return f.run(ctx, content, file, cfg)
}

func (f *SubprocessFrontEnd) run(ctx context.Context, content []byte, file string, cfg Config) (*model.StructuralParseResult, error) {
	argv := append(append([]string{}, f.args...), file)
	cmd := exec.CommandContext(ctx, f.binary, argv...)

	if cfg != nil {
		cfgJSON, err := json.Marshal(cfg)
		if err != nil {
			return nil, &devacerr.ParseError{Kind: devacerr.ParseExternalToolFailure, File: file, Detail: "marshaling config", Err: err}
		}
		cmd.Env = append(cmd.Environ(), "DEVAC_PARSER_CONFIG="+string(cfgJSON))
	}
	if content != nil {
		cmd.Stdin = bytes.NewReader(content)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, &devacerr.ParseError{Kind: devacerr.ParseTimeout, File: file, Detail: "subprocess front-end exceeded timeout"}
		}
		return nil, &devacerr.ParseError{
			Kind:   devacerr.ParseExternalToolFailure,
			File:   file,
			Detail: fmt.Sprintf("%s exited with error: %v, stderr: %s", f.binary, err, stderr.String()),
			Err:    err,
		}
	}

	var resp wireResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, &devacerr.ParseError{
			Kind:   devacerr.ParseExternalToolFailure,
			File:   file,
			Detail: "invalid JSON response from front-end: " + err.Error(),
			Err:    err,
		}
	}
	if resp.Error != "" {
		return nil, &devacerr.ParseError{Kind: devacerr.ParseSyntax, File: file, Detail: resp.Error}
	}

	return &model.StructuralParseResult{
		Nodes:          resp.Nodes,
		Edges:          resp.Edges,
		ExternalRefs:   resp.ExternalRefs,
		Effects:        resp.Effects,
		SourceFileHash: resp.SourceFileHash,
		FilePath:       resp.FilePath,
		ParseTimeMs:    resp.ParseTimeMs,
		Warnings:       resp.Warnings,
	}, nil
}
