// Package model defines DevAC's typed property graph: Node, Edge,
// ExternalRef and Effect, plus the StructuralParseResult a language
// front-end emits. These are closed sum types (§9 "tagged variants"):
// Kind/EdgeType/EffectType are represented as plain string enums matched
// exhaustively by callers, never as an open inheritance hierarchy.
package model

// Kind enumerates the Node.kind domain.
type Kind string

const (
	KindModule    Kind = "module"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindProperty  Kind = "property"
	KindVariable  Kind = "variable"
	KindConstant  Kind = "constant"
	KindParameter Kind = "parameter"
	KindType      Kind = "type"
	KindDecorator Kind = "decorator"
	KindStory     Kind = "story"
	KindUnknown   Kind = "unknown"
)

// Visibility enumerates Node.visibility.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Node is one graph vertex (§3).
type Node struct {
	EntityID        string            `parquet:"name=entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name            string            `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	QualifiedName   string            `parquet:"name=qualified_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind            string            `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	FilePath        string            `parquet:"name=file_path, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartLine       int32             `parquet:"name=start_line, type=INT32"`
	EndLine         int32             `parquet:"name=end_line, type=INT32"`
	StartColumn     int32             `parquet:"name=start_column, type=INT32"`
	EndColumn       int32             `parquet:"name=end_column, type=INT32"`
	IsExported      bool              `parquet:"name=is_exported, type=BOOLEAN"`
	IsDefaultExport bool              `parquet:"name=is_default_export, type=BOOLEAN"`
	IsAsync         bool              `parquet:"name=is_async, type=BOOLEAN"`
	IsStatic        bool              `parquet:"name=is_static, type=BOOLEAN"`
	IsAbstract      bool              `parquet:"name=is_abstract, type=BOOLEAN"`
	IsGenerator     bool              `parquet:"name=is_generator, type=BOOLEAN"`
	Visibility      string            `parquet:"name=visibility, type=BYTE_ARRAY, convertedtype=UTF8"`
	TypeSignature   string            `parquet:"name=type_signature, type=BYTE_ARRAY, convertedtype=UTF8"`
	Documentation   string            `parquet:"name=documentation, type=BYTE_ARRAY, convertedtype=UTF8"`
	Decorators      []string          `parquet:"name=decorators, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	TypeParameters  []string          `parquet:"name=type_parameters, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	Properties      map[string]string `parquet:"name=properties, type=MAP, keytype=BYTE_ARRAY, keyconvertedtype=UTF8, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	SourceFileHash  string            `parquet:"name=source_file_hash, type=BYTE_ARRAY, convertedtype=UTF8"`
	Branch          string            `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsDeleted       bool              `parquet:"name=is_deleted, type=BOOLEAN"`
	UpdatedAt       int64             `parquet:"name=updated_at, type=INT64"`
}

// EdgeType enumerates Edge.edge_type.
type EdgeType string

const (
	EdgeContains     EdgeType = "CONTAINS"
	EdgeExtends      EdgeType = "EXTENDS"
	EdgeImplements   EdgeType = "IMPLEMENTS"
	EdgeCalls        EdgeType = "CALLS"
	EdgeReferences   EdgeType = "REFERENCES"
	EdgeDecorates    EdgeType = "DECORATES"
	EdgeParameterOf  EdgeType = "PARAMETER_OF"
	EdgeReturns      EdgeType = "RETURNS"
	EdgeThrows       EdgeType = "THROWS"
)

// UnresolvedPrefix tags a target_entity_id that could not be resolved at
// parse time. The sentinel stays textual so partitions remain self-contained
// (§9 "Unresolved references").
const UnresolvedPrefix = "unresolved:"

// Unresolved builds the sentinel target for a symbol that has no known
// entity yet.
func Unresolved(symbol string) string {
	return UnresolvedPrefix + symbol
}

// IsUnresolved reports whether a target_entity_id is still a sentinel.
func IsUnresolved(targetEntityID string) bool {
	return len(targetEntityID) >= len(UnresolvedPrefix) && targetEntityID[:len(UnresolvedPrefix)] == UnresolvedPrefix
}

// Edge is one directed relationship (§3).
type Edge struct {
	SourceEntityID string            `parquet:"name=source_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TargetEntityID string            `parquet:"name=target_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	EdgeType       string            `parquet:"name=edge_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceFilePath string            `parquet:"name=source_file_path, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceLine     int32             `parquet:"name=source_line, type=INT32"`
	SourceColumn   int32             `parquet:"name=source_column, type=INT32"`
	Properties     map[string]string `parquet:"name=properties, type=MAP, keytype=BYTE_ARRAY, keyconvertedtype=UTF8, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	SourceFileHash string            `parquet:"name=source_file_hash, type=BYTE_ARRAY, convertedtype=UTF8"`
	Branch         string            `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsDeleted      bool              `parquet:"name=is_deleted, type=BOOLEAN"`
}

// ImportStyle enumerates ExternalRef.import_style.
type ImportStyle string

const (
	ImportNamed      ImportStyle = "named"
	ImportDefault    ImportStyle = "default"
	ImportNamespace  ImportStyle = "namespace"
	ImportSideEffect ImportStyle = "side-effect"
)

// ExternalRef is one import binding (§3).
type ExternalRef struct {
	SourceEntityID string `parquet:"name=source_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ModuleSpecifier string `parquet:"name=module_specifier, type=BYTE_ARRAY, convertedtype=UTF8"`
	ImportedSymbol string `parquet:"name=imported_symbol, type=BYTE_ARRAY, convertedtype=UTF8"`
	LocalAlias     string `parquet:"name=local_alias, type=BYTE_ARRAY, convertedtype=UTF8"`
	ImportStyle    string `parquet:"name=import_style, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsTypeOnly     bool   `parquet:"name=is_type_only, type=BOOLEAN"`
	IsReexport     bool   `parquet:"name=is_reexport, type=BOOLEAN"`
	ExportAlias    string `parquet:"name=export_alias, type=BYTE_ARRAY, convertedtype=UTF8"`
	TargetEntityID string `parquet:"name=target_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsResolved     bool   `parquet:"name=is_resolved, type=BOOLEAN"`
	SourceFilePath string `parquet:"name=source_file_path, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceLine     int32  `parquet:"name=source_line, type=INT32"`
	SourceColumn   int32  `parquet:"name=source_column, type=INT32"`
	Branch         string `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsDeleted      bool   `parquet:"name=is_deleted, type=BOOLEAN"`
}

// Validate enforces the ExternalRef invariant from §3: is_resolved=true
// implies a non-null target_entity_id, and vice versa.
func (r *ExternalRef) Validate() error {
	if r.IsResolved && r.TargetEntityID == "" {
		return errInconsistentRef{reason: "is_resolved=true but target_entity_id is empty"}
	}
	if !r.IsResolved && r.TargetEntityID != "" {
		return errInconsistentRef{reason: "is_resolved=false but target_entity_id is set"}
	}
	return nil
}

type errInconsistentRef struct{ reason string }

func (e errInconsistentRef) Error() string { return "external ref invariant violated: " + e.reason }

// EffectType enumerates the Effect tagged-variant discriminator.
type EffectType string

const (
	EffectFunctionCall     EffectType = "FunctionCall"
	EffectStore            EffectType = "Store"
	EffectRetrieve         EffectType = "Retrieve"
	EffectSend             EffectType = "Send"
	EffectRequest          EffectType = "Request"
	EffectResponse         EffectType = "Response"
	EffectCondition        EffectType = "Condition"
	EffectLoop             EffectType = "Loop"
	EffectGroup            EffectType = "Group"
	EffectValidationResult EffectType = "ValidationResult"
	EffectSeedUpdated      EffectType = "SeedUpdated"
	EffectFileChanged      EffectType = "FileChanged"
)

// Effect is one semantically-tagged operation (§3). Variant-specific fields
// live alongside the common ones rather than in a nested union, matching the
// flat-row shape the Parquet partition format requires; callers switch on
// EffectType and only read the fields that variant defines.
type Effect struct {
	EffectID       string            `parquet:"name=effect_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	EffectType     string            `parquet:"name=effect_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Timestamp      int64             `parquet:"name=timestamp, type=INT64"`
	SourceEntityID string            `parquet:"name=source_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceFilePath string            `parquet:"name=source_file_path, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceLine     int32             `parquet:"name=source_line, type=INT32"`
	Branch         string            `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	Properties     map[string]string `parquet:"name=properties, type=MAP, keytype=BYTE_ARRAY, keyconvertedtype=UTF8, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	IsDeleted      bool              `parquet:"name=is_deleted, type=BOOLEAN"`

	// FunctionCall fields.
	CalleeName          string `parquet:"name=callee_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	CalleeQualifiedName string `parquet:"name=callee_qualified_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsMethodCall        bool   `parquet:"name=is_method_call, type=BOOLEAN"`
	IsAsyncCall         bool   `parquet:"name=is_async_call, type=BOOLEAN"`
	IsConstructor       bool   `parquet:"name=is_constructor, type=BOOLEAN"`
	ArgumentCount       int32  `parquet:"name=argument_count, type=INT32"`
	IsExternal          bool   `parquet:"name=is_external, type=BOOLEAN"`
	ExternalModule      string `parquet:"name=external_module, type=BYTE_ARRAY, convertedtype=UTF8"`

	// Store / Retrieve fields.
	StoreType      string `parquet:"name=store_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Operation      string `parquet:"name=operation, type=BYTE_ARRAY, convertedtype=UTF8"`
	TargetResource string `parquet:"name=target_resource, type=BYTE_ARRAY, convertedtype=UTF8"`
	Provider       string `parquet:"name=provider, type=BYTE_ARRAY, convertedtype=UTF8"`

	// Send fields.
	SendType     string `parquet:"name=send_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Method       string `parquet:"name=method, type=BYTE_ARRAY, convertedtype=UTF8"`
	Target       string `parquet:"name=target, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsThirdParty bool   `parquet:"name=is_third_party, type=BOOLEAN"`
	ServiceName  string `parquet:"name=service_name, type=BYTE_ARRAY, convertedtype=UTF8"`

	// Request / Response fields.
	StatusCode   int32  `parquet:"name=status_code, type=INT32"`
	RoutePattern string `parquet:"name=route_pattern, type=BYTE_ARRAY, convertedtype=UTF8"`
	ContentType  string `parquet:"name=content_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Framework    string `parquet:"name=framework, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// StructuralParseResult is what a language front-end emits (§3 Lifecycle,
// §4.1, §6).
type StructuralParseResult struct {
	Nodes          []Node        `json:"nodes"`
	Edges          []Edge        `json:"edges"`
	ExternalRefs   []ExternalRef `json:"externalRefs"`
	Effects        []Effect      `json:"effects,omitempty"`
	SourceFileHash string        `json:"sourceFileHash"`
	FilePath       string        `json:"filePath"`
	ParseTimeMs    int64         `json:"parseTimeMs"`
	Warnings       []string      `json:"warnings,omitempty"`
}
