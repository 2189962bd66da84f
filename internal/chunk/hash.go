// Package chunk defines the canonical chunk record, its content hash, and
// the fully-qualified symbol name (FQN) grammar shared by every language
// extractor.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ContentHash is the SHA-256 digest of a chunk's normalised content bytes.
// It uniquely identifies chunk content across branches, commits, and
// repositories; two chunks with identical content always share one hash.
type ContentHash [32]byte

// ZeroHash is the hash of the empty string, used as a sentinel.
var ZeroHash = SumContent("")

// SumContent normalises line endings to LF, then hashes the UTF-8 bytes.
func SumContent(content string) ContentHash {
	normalised := normaliseLineEndings(content)
	return sha256.Sum256([]byte(normalised))
}

// normaliseLineEndings converts CRLF and lone CR into LF so that identical
// logical content hashes identically regardless of source checkout settings.
func normaliseLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// String renders the hash as lowercase hex.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseContentHash parses a hex-encoded hash string.
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("chunk: invalid content hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("chunk: content hash %q has %d bytes, want %d", s, len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// IsZero reports whether h is the zero value (no hash computed).
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// MarshalJSON renders the hash as a quoted hex string.
func (h ContentHash) MarshalJSON() ([]byte, error) {
	return []byte(`"` + h.String() + `"`), nil
}

// UnmarshalJSON parses a quoted hex string into the hash.
func (h *ContentHash) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*h = ContentHash{}
		return nil
	}
	parsed, err := ParseContentHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
