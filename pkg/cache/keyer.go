package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey identifies the layout produced from a design by an operation.
	LayoutKey(designHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Operation string    `json:"operation"`
	TargetX   float64   `json:"target_x,omitempty"`
	TargetY   float64   `json:"target_y,omitempty"`
	Net       []string  `json:"net,omitempty"`
	Pair      [2]string `json:"pair,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale,omitempty"`
	Labels bool    `json:"labels,omitempty"`
	Cuts   bool    `json:"cuts,omitempty"`
	Font   string  `json:"font,omitempty"`
}

// Hash returns the hex SHA-256 digest of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digest hashes the JSON encoding of a content hash and its options. The
// options are flat structs of strings, numbers and bools, so encoding
// cannot fail.
func digest(hash string, opts any) string {
	h := sha256.New()
	h.Write([]byte(hash))
	h.Write([]byte{0})
	_ = json.NewEncoder(h).Encode(opts)
	return hex.EncodeToString(h.Sum(nil))
}

// DefaultKeyer produces keys of the form "layout:<sha256>" and
// "artifact:<format>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey hashes the design hash together with the layout options.
func (k *DefaultKeyer) LayoutKey(designHash string, opts LayoutKeyOpts) string {
	return "layout:" + digest(designHash, opts)
}

// ArtifactKey hashes the layout hash together with the drawing options.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return "artifact:" + opts.Format + ":" + digest(layoutHash, opts)
}

// ScopedKeyer namespaces the keys of another Keyer, so several floorplanner
// deployments can share one Redis instance without reading each other's
// layouts. Keys take the form "<scope>/<inner key>".
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
// Surrounding slashes of scope are dropped; an empty scope returns inner
// unchanged.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	scope = strings.Trim(scope, "/")
	if scope == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, scope: scope + "/"}
}

// LayoutKey returns the scoped layout key.
func (k *ScopedKeyer) LayoutKey(designHash string, opts LayoutKeyOpts) string {
	return k.scope + k.inner.LayoutKey(designHash, opts)
}

// ArtifactKey returns the scoped artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.scope + k.inner.ArtifactKey(layoutHash, opts)
}

var (
	_ Keyer = (*DefaultKeyer)(nil)
	_ Keyer = (*ScopedKeyer)(nil)
)
