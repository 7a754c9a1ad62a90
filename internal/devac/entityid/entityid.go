// Package entityid generates and parses DevAC entity IDs (§4.2).
//
// Format: <repo>:<package-path>:<kind>:<scope-hash>
//
// This is a generalization of internal/extract/hash.go's entity-ID scheme
// (there: "sa-<kind>-<pathHash[:6]>-<line>-<name>", 24 bits of path hash,
// not globally unique across repos/packages and line-number-sensitive, so
// it moves when code shifts). DevAC widens the hash to 64 bits, hashes the
// full (file, scoped-name, kind) tuple instead of line number so IDs survive
// line shifts within the same scope, and keeps the first three components
// as plain parseable text instead of hashing them too (§4.2 "Parseable").
package entityid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

// ScopeHashHexLen is 16 hex chars = 64 bits, the minimum collision
// resistance §4.2 requires ("truncated to >= 64 bits").
const ScopeHashHexLen = 16

// Separator joins the four ID components. It must never appear inside a
// repo, package-path or kind value; callers are expected to pass
// already-normalized identifiers (no colons).
const Separator = ":"

// Normalize applies §4.2's path normalization: forward slashes, trimmed
// whitespace, case preserved.
func Normalize(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean("/" + p)[1:]
}

// ScopedName builds the scoped-name component per §4.2's rules:
//   - free functions: name
//   - class members: ClassName.member
//   - nested functions: outer.inner
//   - nested classes: Outer.Inner
//
// ancestors is ordered outermost-to-innermost, excluding name itself.
func ScopedName(name string, ancestors ...string) string {
	if len(ancestors) == 0 {
		return name
	}
	return strings.Join(ancestors, ".") + "." + name
}

// ScopeHash computes the truncated cryptographic hash of the normalized
// (file-path, scoped-name, kind) tuple that §4.2 calls scope-hash.
func ScopeHash(filePath, scopedName, kind string) string {
	norm := Normalize(filePath) + "\x00" + scopedName + "\x00" + kind
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])[:ScopeHashHexLen]
}

// Generate builds a full entity ID. repo and packagePath must already be
// free of the Separator character; Generate does not escape them, matching
// §4.2's "parseable without access to source" guarantee — callers own
// ensuring their inputs are colon-free (repo identifiers and package paths
// both are in every front-end that exists today).
func Generate(repo, packagePath, kind, filePath, scopedName string) string {
	hash := ScopeHash(filePath, scopedName, kind)
	return strings.Join([]string{repo, packagePath, kind, hash}, Separator)
}

// Parsed is the decomposition of an entity ID (Testable Property 2).
type Parsed struct {
	Repo        string
	PackagePath string
	Kind        string
	ScopeHash   string
}

// Parse extracts the four components without needing access to source,
// per §4.2's "Parseable" guarantee.
func Parse(id string) (Parsed, error) {
	parts := strings.SplitN(id, Separator, 4)
	if len(parts) != 4 {
		return Parsed{}, fmt.Errorf("entityid: malformed id %q: expected 4 %q-separated components, got %d", id, Separator, len(parts))
	}
	return Parsed{Repo: parts[0], PackagePath: parts[1], Kind: parts[2], ScopeHash: parts[3]}, nil
}
