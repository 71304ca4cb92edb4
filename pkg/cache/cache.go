// Package cache provides pluggable result caching for the analysis pipeline.
//
// Three backends are available: FileCache for CLI usage, RedisCache for
// shared deployments, and NullCache to disable caching. Keys are produced by
// a Keyer so the hashing scheme stays in one place; ScopedKeyer prefixes keys
// for namespace isolation.
package cache

import (
	"context"
	"errors"
	"time"
)

// Default TTLs per artifact class. Graphs depend only on source content (the
// content hash is in the key), so they can live long; layouts and rendered
// artifacts are cheap to recompute.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// ErrCacheMiss is returned by helpers that treat a miss as an error.
// The Cache interface itself signals misses through the hit return value.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes the key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts are the analysis options that affect graph output and must be
// part of the graph cache key.
type GraphKeyOpts struct {
	Language string // forced or detected language
}

// LayoutKeyOpts are the layout options that affect layout output.
type LayoutKeyOpts struct {
	Kind string // "pack" or "layered"
}

// ArtifactKeyOpts are the render options that affect artifact bytes.
type ArtifactKeyOpts struct {
	Format   string // "dot", "svg", "png"
	Detailed bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// GraphKey keys a resolved graph by the source content hash and options.
	GraphKey(sourceHash string, opts GraphKeyOpts) string
	// LayoutKey keys a layout by the graph content hash and options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by the layout hash and options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// GraphKey generates a key for a resolved graph.
func (k *DefaultKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return hashKey("graph", sourceHash, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
