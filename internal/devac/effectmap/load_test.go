package effectmap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsEmpty(t *testing.T) {
	mappings, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(mappings.StoreOperations) != 0 {
		t.Fatalf("expected empty mappings for a missing file, got %+v", mappings)
	}
}

func TestLoadFileParsesAllSections(t *testing.T) {
	doc := `
metadata:
  package_name: billing
  verified: true
store_operations:
  - pattern: "db.Save"
    match: substring
    store_type: sql
    operation: write
    target_resource: invoices
    provider: postgres
retrieve_operations:
  - pattern: "db.Find"
    match: equality
    store_type: sql
    operation: read
    target_resource: invoices
    provider: postgres
external_calls:
  - pattern: "http.Post"
    match: substring
    send_type: bogus
    method: POST
    target: payments-api
    is_third_party: true
    service_name: stripe
request_handlers:
  - pattern: "HandleCreate"
    match: substring
    route_pattern: "/invoices"
    content_type: application/json
    framework: net/http
`
	path := filepath.Join(t.TempDir(), "effects.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	mappings, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if len(mappings.StoreOperations) != 1 || mappings.StoreOperations[0].IsRetrieve {
		t.Fatalf("expected one store operation with IsRetrieve=false, got %+v", mappings.StoreOperations)
	}
	if len(mappings.RetrieveOperations) != 1 || !mappings.RetrieveOperations[0].IsRetrieve {
		t.Fatalf("expected one retrieve operation with IsRetrieve=true, got %+v", mappings.RetrieveOperations)
	}
	if len(mappings.ExternalCalls) != 1 || mappings.ExternalCalls[0].SendType != "http" {
		t.Fatalf("expected an unrecognized send_type to normalize to http, got %+v", mappings.ExternalCalls)
	}
	if len(mappings.RequestHandlers) != 1 {
		t.Fatalf("expected one request handler, got %+v", mappings.RequestHandlers)
	}
}
