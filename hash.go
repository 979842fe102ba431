package efir

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON serializes a flat field mapping as a compact JSON object with
// keys in ordinal byte order and HTML escaping disabled, so that the same
// field set always yields the same byte sequence regardless of the order the
// caller assembled it in.
func CanonicalJSON(fields map[string]string) ([]byte, error) {
	if fields == nil {
		return nil, fmt.Errorf("canonical json: nil field mapping")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}
	// Encode appends a trailing newline that is not part of the canonical form.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Digest computes the SHA-256 digest of the canonical serialization of a
// record's fields, as lowercase hex. Pure: no I/O, no side effects.
func Digest(fields map[string]string) (string, error) {
	canonical, err := CanonicalJSON(fields)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
