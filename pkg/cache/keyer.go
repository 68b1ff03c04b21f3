package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys for the two kinds of cached value.
type Keyer interface {
	// ResponseKey keys a raw data-source response by namespace and URL.
	ResponseKey(namespace, url string) string
	// ArtifactKey keys a rendered plot.
	ArtifactKey(opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts identifies a rendered plot.
type ArtifactKeyOpts struct {
	Layout     string         `json:"layout"`
	Overrides  map[string]any `json:"overrides,omitempty"`
	Chr        string         `json:"chr"`
	Start      int64          `json:"start"`
	End        int64          `json:"end"`
	LDRefVar   string         `json:"ldrefvar,omitempty"`
	Width      int            `json:"width"`
	Format     string         `json:"format"`
	LayoutHash string         `json:"layout_hash,omitempty"`
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResponseKey returns "response:<namespace>:<sha256(url)>".
func (DefaultKeyer) ResponseKey(namespace, url string) string {
	return "response:" + namespace + ":" + Hash([]byte(url))
}

// ArtifactKey returns "artifact:<layout>:<sha256(opts)>". The layout name
// is kept readable so a backend can be inspected per plot.
func (DefaultKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	raw, _ := json.Marshal(opts)
	return "artifact:" + opts.Layout + ":" + Hash(raw)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
