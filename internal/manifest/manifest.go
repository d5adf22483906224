package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Build outcomes recorded in Status.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// BuildManifest is the record of one export: what went in, which pages the
// site routes to and the hash of every artifact written.
type BuildManifest struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Version   string      `json:"version"`
	Inputs    Inputs      `json:"inputs"`
	Pages     []PageEntry `json:"pages,omitempty"`
	Outputs   Outputs     `json:"outputs"`
	Status    string      `json:"status"`
	Duration  int64       `json:"duration_ms"`
}

// Inputs captures everything the export was computed from.
type Inputs struct {
	ConfigSources  []string  `json:"config_sources,omitempty"`
	ConfigSnapshot string    `json:"config_snapshot"`
	ContentRoot    string    `json:"content_root,omitempty"`
	Git            *GitInput `json:"git,omitempty"`
}

// GitInput identifies the checkout the content came from.
type GitInput struct {
	Remote string `json:"remote,omitempty"`
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// PageEntry is one routed page and the fingerprint of its content.
type PageEntry struct {
	Route       string `json:"route"`
	Kind        string `json:"kind"`
	Source      string `json:"source,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Outputs captures all outputs from the export.
type Outputs struct {
	ContentHash    string            `json:"content_hash,omitempty"`
	ArtifactHashes map[string]string `json:"artifact_hashes,omitempty"`
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// ContentHash combines the page fingerprints into one digest, independent
// of the order pages were added in.
func ContentHash(pages []PageEntry) string {
	if len(pages) == 0 {
		return ""
	}
	sorted := make([]PageEntry, len(pages))
	copy(sorted, pages)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Route < sorted[j].Route })
	h := sha256.New()
	for _, p := range sorted {
		_, _ = fmt.Fprintf(h, "%s\x00%s\x00%s\n", p.Route, p.Kind, p.Fingerprint)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes a deterministic hash of the manifest's inputs and pages.
// Two exports with the same hash rendered the same configuration over the
// same content.
func (m *BuildManifest) Hash() (string, error) {
	hashInput := struct {
		ConfigSnapshot string    `json:"config_snapshot"`
		Git            *GitInput `json:"git"`
		ContentHash    string    `json:"content_hash"`
	}{
		ConfigSnapshot: m.Inputs.ConfigSnapshot,
		Git:            m.Inputs.Git,
		ContentHash:    ContentHash(m.Pages),
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
