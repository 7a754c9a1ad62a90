// Package devacerr defines DevAC's error taxonomy as a small set of tagged
// error structs, one per kind-enum, following the convention already used by
// internal/parser/errors.go: exported struct types with an Error() method and
// Unwrap() where there's a wrapped cause, never per-kind subclasses.
package devacerr

import "fmt"

// ParseKind enumerates ParseError variants.
type ParseKind string

const (
	ParseSyntax              ParseKind = "syntax"
	ParseTimeout             ParseKind = "timeout"
	ParseExternalToolFailure ParseKind = "external_tool_failure"
	ParseUnsupported         ParseKind = "unsupported"
)

// ParseError is non-fatal at the orchestrator: a file that fails to parse is
// recorded with warnings and excluded from seed output, never propagated as
// a hard failure by itself.
type ParseError struct {
	Kind   ParseKind
	File   string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error [%s] %s: %s", e.Kind, e.File, e.Detail)
	}
	return fmt.Sprintf("parse error [%s]: %s", e.Kind, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageKind enumerates StorageError variants.
type StorageKind string

const (
	StorageLockTimeout       StorageKind = "lock_timeout"
	StorageCorruptPartition  StorageKind = "corrupt_partition"
	StorageAtomicRenameFail  StorageKind = "atomic_rename_failed"
	StorageSchemaMismatch    StorageKind = "schema_mismatch"
)

// StorageError is fatal per-operation: the seed is left in its
// pre-operation state (see seed.Writer's atomicity protocol).
type StorageError struct {
	Kind   StorageKind
	Seed   string
	Detail string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [%s] seed=%s: %s", e.Kind, e.Seed, e.Detail)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ResolutionKind enumerates ResolutionError variants.
type ResolutionKind string

const (
	ResolutionUnresolvedRef   ResolutionKind = "unresolved_ref"
	ResolutionAmbiguousSymbol ResolutionKind = "ambiguous_symbol"
)

// ResolutionError is recoverable: the ref/edge remains is_resolved=false
// and the unresolved sentinel stays in place.
type ResolutionError struct {
	Kind   ResolutionKind
	Symbol string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolution error [%s]: %s", e.Kind, e.Symbol)
}

// HubKind enumerates HubError variants.
type HubKind string

const (
	HubUnknownRepo          HubKind = "unknown_repo"
	HubMissingSeed          HubKind = "missing_seed"
	HubQueryCompileFailure  HubKind = "query_compile_failure"
)

// HubError is surfaced to the caller; the hub itself stays consistent.
type HubError struct {
	Kind   HubKind
	RepoID string
	Detail string
	Err    error
}

func (e *HubError) Error() string {
	if e.RepoID != "" {
		return fmt.Sprintf("hub error [%s] repo=%s: %s", e.Kind, e.RepoID, e.Detail)
	}
	return fmt.Sprintf("hub error [%s]: %s", e.Kind, e.Detail)
}

func (e *HubError) Unwrap() error { return e.Err }

// ConfigError is fatal at startup.
type ConfigError struct {
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Detail)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// BulkResult is the envelope bulk operations return so partial progress is
// visible to callers even when some items failed (§7 propagation policy).
type BulkResult struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors,omitempty"`
	Applied int      `json:"applied"`
	Failed  int      `json:"failed"`
}

// Record appends err's message (if non-nil) and bumps the applied/failed
// counters accordingly.
func (b *BulkResult) Record(err error) {
	if err == nil {
		b.Applied++
		return
	}
	b.Failed++
	b.Success = false
	b.Errors = append(b.Errors, err.Error())
}
