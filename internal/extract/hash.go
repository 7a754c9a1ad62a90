// Package extract provides entity extraction and hash computation for code analysis.
//
// Hash computation is used for staleness detection - determining whether
// a source file's content has changed since the last scan. Entity-level
// signature and body hashes are Entity.SigHash/BodyHash (entity.go);
// entityid.ScopeHash is an identity hash over file, scoped name and kind and
// does not change when a function's signature or body does.
package extract

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashLength is the number of hex characters in a truncated hash.
// Hashes are truncated to 8 hex chars (32 bits) for compact storage.
const HashLength = 8

// ComputeFileHash computes a hash of file content for change detection.
// This is used at the file level to skip unchanged files during scanning
// (golang.FrontEnd stamps every StructuralParseResult.SourceFileHash with it).
func ComputeFileHash(content []byte) string {
	return truncateHash(hashBytes(content))
}

// hashBytes computes SHA-256 hash of bytes and returns hex string.
func hashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// truncateHash truncates a hash string to HashLength characters.
func truncateHash(hash string) string {
	if len(hash) <= HashLength {
		return hash
	}
	return hash[:HashLength]
}
