package effectmap

import (
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of an effect mapping file (§6 "Effect mapping
// file"): a metadata block plus the four pattern lists PackageEffectMappings
// holds, using the declarative file's snake_case keys.
type file struct {
	Metadata struct {
		PackageName string `yaml:"package_name"`
		Verified    bool   `yaml:"verified"`
	} `yaml:"metadata"`
	StoreOperations    []yamlStoreOperation `yaml:"store_operations"`
	RetrieveOperations []yamlStoreOperation `yaml:"retrieve_operations"`
	ExternalCalls      []yamlExternalCall   `yaml:"external_calls"`
	RequestHandlers    []yamlRequestHandler `yaml:"request_handlers"`
	// Groups are parsed so a file carrying the section loads without error;
	// LoadFile does not return them and Apply does not interpret them.
	Groups []map[string]interface{} `yaml:"groups"`
}

type yamlStoreOperation struct {
	Pattern        string `yaml:"pattern"`
	Match          string `yaml:"match"`
	StoreType      string `yaml:"store_type"`
	Operation      string `yaml:"operation"`
	TargetResource string `yaml:"target_resource"`
	Provider       string `yaml:"provider"`
}

type yamlExternalCall struct {
	Pattern      string `yaml:"pattern"`
	Match        string `yaml:"match"`
	SendType     string `yaml:"send_type"`
	Method       string `yaml:"method"`
	Target       string `yaml:"target"`
	IsThirdParty bool   `yaml:"is_third_party"`
	ServiceName  string `yaml:"service_name"`
}

type yamlRequestHandler struct {
	Pattern      string `yaml:"pattern"`
	Match        string `yaml:"match"`
	RoutePattern string `yaml:"route_pattern"`
	ContentType  string `yaml:"content_type"`
	Framework    string `yaml:"framework"`
}

// LoadFile reads a declarative effect mapping YAML file from path. A
// missing file is not an error: it returns an empty PackageEffectMappings,
// matching the workspace-layer-is-optional contract §4.3's hierarchical
// merge assumes.
func LoadFile(path string) (PackageEffectMappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return PackageEffectMappings{}, nil
		}
		return PackageEffectMappings{}, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return PackageEffectMappings{}, err
	}

	return PackageEffectMappings{
		StoreOperations:    toStoreOperations(f.StoreOperations, false),
		RetrieveOperations: toStoreOperations(f.RetrieveOperations, true),
		ExternalCalls:      toExternalCalls(f.ExternalCalls),
		RequestHandlers:    toRequestHandlers(f.RequestHandlers),
	}, nil
}

func matchKind(s string) MatchKind {
	if s == string(MatchEquality) {
		return MatchEquality
	}
	return MatchSubstring
}

func toStoreOperations(in []yamlStoreOperation, retrieve bool) []StoreOperation {
	out := make([]StoreOperation, 0, len(in))
	for _, s := range in {
		out = append(out, StoreOperation{
			Pattern:        s.Pattern,
			Match:          matchKind(s.Match),
			StoreType:      s.StoreType,
			Operation:      s.Operation,
			TargetResource: s.TargetResource,
			Provider:       s.Provider,
			IsRetrieve:     retrieve,
		})
	}
	return out
}

func toExternalCalls(in []yamlExternalCall) []ExternalCall {
	out := make([]ExternalCall, 0, len(in))
	for _, e := range in {
		out = append(out, ExternalCall{
			Pattern:      e.Pattern,
			Match:        matchKind(e.Match),
			SendType:     normalizeSendType(e.SendType),
			Method:       e.Method,
			Target:       e.Target,
			IsThirdParty: e.IsThirdParty,
			ServiceName:  e.ServiceName,
		})
	}
	return out
}

func toRequestHandlers(in []yamlRequestHandler) []RequestHandler {
	out := make([]RequestHandler, 0, len(in))
	for _, r := range in {
		out = append(out, RequestHandler{
			Pattern:      r.Pattern,
			Match:        matchKind(r.Match),
			RoutePattern: r.RoutePattern,
			ContentType:  r.ContentType,
			Framework:    r.Framework,
		})
	}
	return out
}
