package fingerprint

// Package fingerprint computes the content digests used by the file
// verification pipeline: a SHA-256 fingerprint of raw file bytes, and a
// chain fingerprint that binds a content fingerprint to the time it was
// attested and to the previous attestation of the same file.

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrEmptyFingerprint = errors.New("content fingerprint is empty")

// chainTimeLayout is ISO 8601 with millisecond precision. Whole-second
// formats would make attestations within the same second collide for
// identical content.
const chainTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Sum reads r to EOF and returns the SHA-256 digest of its bytes as a
// lower-case hex string (64 characters). Identical bytes always produce the
// identical string. Read errors propagate unchanged.
func Sum(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("reader is nil")
	}
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Chain derives the verification fingerprint for one attestation:
// SHA-256 over prevChain || contentFingerprint || millisecond-precision
// ISO 8601 UTC timestamp.
//
// prevChain is the chain fingerprint of the file's latest prior
// verification, or empty for the first one. Folding it in makes repeated
// verifications a tamper-evident history rather than independent
// attestations.
func Chain(prevChain, contentFingerprint string, ts time.Time) (string, error) {
	if contentFingerprint == "" {
		return "", ErrEmptyFingerprint
	}
	h := sha256.New()
	h.Write([]byte(prevChain))
	h.Write([]byte(contentFingerprint))
	h.Write([]byte(ts.UTC().Format(chainTimeLayout)))
	return hex.EncodeToString(h.Sum(nil)), nil
}
