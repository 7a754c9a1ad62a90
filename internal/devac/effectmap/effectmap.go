// Package effectmap implements the Effect Mapper (§4.3): it promotes
// generic FunctionCall effects into richer Store/Retrieve/Send/Request
// variants using a declarative pattern catalog, the same substring/equality
// matching style internal/extract's call-graph resolver already uses for
// callee names.
package effectmap

import (
	"strings"

	"github.com/anthropics/devac/internal/devac/model"
)

// MatchKind selects how Pattern.Pattern is compared against a callee name.
type MatchKind string

const (
	// MatchSubstring matches when the pattern occurs anywhere in the callee
	// name or qualified name.
	MatchSubstring MatchKind = "substring"
	// MatchEquality matches only on an exact callee name or qualified name.
	MatchEquality MatchKind = "equality"
)

// StoreOperation maps a callee pattern onto Effect's Store/Retrieve fields.
type StoreOperation struct {
	Pattern        string
	Match          MatchKind
	StoreType      string
	Operation      string
	TargetResource string
	Provider       string
	// IsRetrieve distinguishes a Retrieve-variant mapping from a Store one;
	// both share the same field shape per §4.3.
	IsRetrieve bool
}

// ExternalCall maps a callee pattern onto Effect's Send fields.
type ExternalCall struct {
	Pattern      string
	Match        MatchKind
	SendType     string
	Method       string
	Target       string
	IsThirdParty bool
	ServiceName  string
}

// RequestHandler maps a callee pattern onto Effect's Request/Response fields.
type RequestHandler struct {
	Pattern      string
	Match        MatchKind
	RoutePattern string
	ContentType  string
	Framework    string
}

// PackageEffectMappings is the input pattern catalog (§4.3): four lists,
// each holding pattern -> variant-specific-fields mappings.
type PackageEffectMappings struct {
	StoreOperations    []StoreOperation
	RetrieveOperations []StoreOperation
	ExternalCalls      []ExternalCall
	RequestHandlers    []RequestHandler
}

// validSendTypes is the enumerated domain for Effect.SendType; an
// unrecognized value normalizes to "http" per §4.3's "Invalid values" rule.
var validSendTypes = map[string]bool{
	"http": true, "grpc": true, "websocket": true, "queue": true, "event": true,
}

const defaultSendType = "http"

// Merge applies the §4.3 hierarchical merge: package mappings override
// workspace mappings that share the same pattern key, and mappings unique to
// either layer both contribute.
func Merge(workspace, pkg PackageEffectMappings) PackageEffectMappings {
	return PackageEffectMappings{
		StoreOperations:    mergeStore(workspace.StoreOperations, pkg.StoreOperations),
		RetrieveOperations: mergeStore(workspace.RetrieveOperations, pkg.RetrieveOperations),
		ExternalCalls:      mergeExternal(workspace.ExternalCalls, pkg.ExternalCalls),
		RequestHandlers:    mergeRequest(workspace.RequestHandlers, pkg.RequestHandlers),
	}
}

func mergeStore(workspace, pkg []StoreOperation) []StoreOperation {
	byPattern := make(map[string]StoreOperation, len(workspace)+len(pkg))
	var order []string
	for _, op := range workspace {
		if _, exists := byPattern[op.Pattern]; !exists {
			order = append(order, op.Pattern)
		}
		byPattern[op.Pattern] = op
	}
	for _, op := range pkg {
		if _, exists := byPattern[op.Pattern]; !exists {
			order = append(order, op.Pattern)
		}
		byPattern[op.Pattern] = op
	}
	merged := make([]StoreOperation, 0, len(order))
	for _, p := range order {
		merged = append(merged, byPattern[p])
	}
	return merged
}

func mergeExternal(workspace, pkg []ExternalCall) []ExternalCall {
	byPattern := make(map[string]ExternalCall, len(workspace)+len(pkg))
	var order []string
	for _, op := range workspace {
		if _, exists := byPattern[op.Pattern]; !exists {
			order = append(order, op.Pattern)
		}
		byPattern[op.Pattern] = op
	}
	for _, op := range pkg {
		if _, exists := byPattern[op.Pattern]; !exists {
			order = append(order, op.Pattern)
		}
		byPattern[op.Pattern] = op
	}
	merged := make([]ExternalCall, 0, len(order))
	for _, p := range order {
		merged = append(merged, byPattern[p])
	}
	return merged
}

func mergeRequest(workspace, pkg []RequestHandler) []RequestHandler {
	byPattern := make(map[string]RequestHandler, len(workspace)+len(pkg))
	var order []string
	for _, op := range workspace {
		if _, exists := byPattern[op.Pattern]; !exists {
			order = append(order, op.Pattern)
		}
		byPattern[op.Pattern] = op
	}
	for _, op := range pkg {
		if _, exists := byPattern[op.Pattern]; !exists {
			order = append(order, op.Pattern)
		}
		byPattern[op.Pattern] = op
	}
	merged := make([]RequestHandler, 0, len(order))
	for _, p := range order {
		merged = append(merged, byPattern[p])
	}
	return merged
}

// Apply promotes each FunctionCall effect in effects that matches mappings,
// leaving every other effect (and every non-matching FunctionCall)
// unchanged. Matching is tried in store -> retrieve -> external -> request
// order; the first match wins (§4.3).
func Apply(effects []model.Effect, mappings PackageEffectMappings) []model.Effect {
	out := make([]model.Effect, len(effects))
	for i, e := range effects {
		if e.EffectType != string(model.EffectFunctionCall) {
			out[i] = e
			continue
		}
		out[i] = promote(e, mappings)
	}
	return out
}

func promote(e model.Effect, mappings PackageEffectMappings) model.Effect {
	if op, ok := matchStore(e, mappings.StoreOperations); ok {
		return applyStore(e, op, false)
	}
	if op, ok := matchStore(e, mappings.RetrieveOperations); ok {
		return applyStore(e, op, true)
	}
	if op, ok := matchExternal(e, mappings.ExternalCalls); ok {
		return applyExternal(e, op)
	}
	if op, ok := matchRequest(e, mappings.RequestHandlers); ok {
		return applyRequest(e, op)
	}
	return e
}

func calleeCandidates(e model.Effect) (name, qualified string) {
	return e.CalleeName, e.CalleeQualifiedName
}

func matches(pattern string, kind MatchKind, name, qualified string) bool {
	switch kind {
	case MatchEquality:
		return pattern == name || pattern == qualified
	default:
		return strings.Contains(name, pattern) || strings.Contains(qualified, pattern)
	}
}

func matchStore(e model.Effect, ops []StoreOperation) (StoreOperation, bool) {
	name, qualified := calleeCandidates(e)
	for _, op := range ops {
		if matches(op.Pattern, op.Match, name, qualified) {
			return op, true
		}
	}
	return StoreOperation{}, false
}

func matchExternal(e model.Effect, ops []ExternalCall) (ExternalCall, bool) {
	name, qualified := calleeCandidates(e)
	for _, op := range ops {
		if matches(op.Pattern, op.Match, name, qualified) {
			return op, true
		}
	}
	return ExternalCall{}, false
}

func matchRequest(e model.Effect, ops []RequestHandler) (RequestHandler, bool) {
	name, qualified := calleeCandidates(e)
	for _, op := range ops {
		if matches(op.Pattern, op.Match, name, qualified) {
			return op, true
		}
	}
	return RequestHandler{}, false
}

func applyStore(e model.Effect, op StoreOperation, retrieve bool) model.Effect {
	e.StoreType = op.StoreType
	e.Operation = op.Operation
	e.TargetResource = op.TargetResource
	e.Provider = op.Provider
	if retrieve {
		e.EffectType = string(model.EffectRetrieve)
	} else {
		e.EffectType = string(model.EffectStore)
	}
	return e
}

func applyExternal(e model.Effect, op ExternalCall) model.Effect {
	e.EffectType = string(model.EffectSend)
	e.SendType = normalizeSendType(op.SendType)
	e.Method = op.Method
	e.Target = op.Target
	e.IsThirdParty = op.IsThirdParty
	e.ServiceName = op.ServiceName
	return e
}

func applyRequest(e model.Effect, op RequestHandler) model.Effect {
	e.EffectType = string(model.EffectRequest)
	e.RoutePattern = op.RoutePattern
	e.ContentType = op.ContentType
	e.Framework = op.Framework
	return e
}

// normalizeSendType implements §4.3's "invalid values normalize to the
// enum's default": an unrecognized send_type becomes "http".
func normalizeSendType(sendType string) string {
	if validSendTypes[sendType] {
		return sendType
	}
	return defaultSendType
}
