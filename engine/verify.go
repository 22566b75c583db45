package engine

import (
	"fmt"
	"reflect"
	"strings"
)

// VerifyTrace recomputes a stored trace from its message and configuration
// and reports whether the digest and every step, field for field, match.
// A malformed document is an error; a mismatch is (false, nil).
func VerifyTrace(stored *TraceDocument) (bool, error) {
	if stored == nil || len(stored.Steps) == 0 {
		return false, fmt.Errorf("invalid stored trace")
	}
	if err := stored.Config.Validate(); err != nil {
		return false, err
	}

	e, err := NewEngine(stored.Config)
	if err != nil {
		return false, err
	}
	recomputed, err := e.Hash(stored.Message)
	if err != nil {
		return false, fmt.Errorf("recomputation failed: %w", err)
	}

	digest, err := Digest(recomputed)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(digest, stored.Digest) {
		return false, nil
	}

	// steps act as checkpoints
	if len(recomputed) != len(stored.Steps) {
		return false, nil
	}
	for i := range recomputed {
		if !reflect.DeepEqual(recomputed[i], stored.Steps[i]) {
			return false, nil
		}
	}
	return true, nil
}

// VerifyDigest hashes message and compares against a hex digest, ignoring case.
func (e *Engine) VerifyDigest(message, expected string) (bool, error) {
	steps, err := e.Hash(message)
	if err != nil {
		return false, err
	}
	got, err := Digest(steps)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(got, strings.TrimSpace(expected)), nil
}
