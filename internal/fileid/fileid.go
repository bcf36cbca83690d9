// Package fileid derives deterministic document IDs from source file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "doc_"

// DocID returns a stable document ID for the given path. The same path
// always yields the same ID, so re-ingesting a file replaces its document
// instead of creating a duplicate.
func DocID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:8])
}
