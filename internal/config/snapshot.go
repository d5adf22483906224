package config

import (
	"crypto/sha256"
	"encoding/hex"
)

// Snapshot computes a stable hash of the serialized configuration. Two
// configurations that marshal identically share a snapshot; callers should
// hash values returned by Parse so normalization and defaults are applied.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	data, err := Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
