// Package image provides the raster operations behind a hero banner
// (canvas, asset compositing, gradient darkening, shapes, encoding) and the
// build cache that lets unchanged banners skip rendering.
package image

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// cacheManifestVersion is bumped when the cache format changes.
const cacheManifestVersion = "2"

// Cache remembers which inputs produced each banner on disk so that an
// unchanged banner is not re-rendered. All methods are safe for concurrent
// use.
type Cache struct {
	mu       sync.Mutex
	dir      string        // e.g. .herogen/cache/
	manifest CacheManifest // loaded from manifest.json
}

// CacheManifest is the top-level structure persisted as manifest.json.
type CacheManifest struct {
	Version string                 `json:"version"`
	Entries map[string]*CacheEntry `json:"entries"` // keyed by primary output path
}

// CacheInputs are the digests of everything a render reads.
type CacheInputs struct {
	AssetHash  string // SHA-256 of the asset file
	ConfigHash string // SHA-256 of the resolved config
	FontHash   string // SHA-256 of the font file, or FallbackFontHash
}

// FallbackFontHash stands in for the font digest when no font file was
// found and the built-in face is drawn.
const FallbackFontHash = "fallback"

// CacheEntry records the inputs and outputs of one banner render.
type CacheEntry struct {
	AssetHash  string         `json:"assetHash"`
	ConfigHash string         `json:"configHash"`
	FontHash   string         `json:"fontHash"`
	Outputs    []CachedOutput `json:"outputs"`
}

func (e *CacheEntry) inputs() CacheInputs {
	return CacheInputs{AssetHash: e.AssetHash, ConfigHash: e.ConfigHash, FontHash: e.FontHash}
}

// CachedOutput is one file written by a render.
type CachedOutput struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// NewCache creates a Cache rooted at cacheDir. If a manifest.json already
// exists there it is loaded; otherwise an empty manifest is initialised.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := &Cache{
		dir: cacheDir,
		manifest: CacheManifest{
			Version: cacheManifestVersion,
			Entries: make(map[string]*CacheEntry),
		},
	}

	manifestPath := filepath.Join(cacheDir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading cache manifest: %w", err)
	}

	var m CacheManifest
	if err := json.Unmarshal(data, &m); err != nil {
		// Corrupt manifest: start fresh.
		return c, nil
	}
	if m.Version != cacheManifestVersion {
		return c, nil
	}
	if m.Entries == nil {
		m.Entries = make(map[string]*CacheEntry)
	}
	c.manifest = m
	return c, nil
}

// Lookup reports whether key was last rendered from the same inputs and
// every recorded output is still on disk unmodified.
func (c *Cache) Lookup(key string, in CacheInputs) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.manifest.Entries[key]
	if !ok {
		return false
	}
	if entry.inputs() != in {
		return false
	}
	if len(entry.Outputs) == 0 {
		return false
	}
	for _, out := range entry.Outputs {
		h, err := HashFile(out.Path)
		if err != nil || h != out.Hash {
			return false
		}
	}
	return true
}

// Store hashes the given output files, records them under key and persists
// the manifest.
func (c *Cache) Store(key string, in CacheInputs, outputs []string) error {
	cached := make([]CachedOutput, 0, len(outputs))
	for _, p := range outputs {
		h, err := HashFile(p)
		if err != nil {
			return fmt.Errorf("hashing output %s: %w", p, err)
		}
		cached = append(cached, CachedOutput{Path: p, Hash: h})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.manifest.Entries[key] = &CacheEntry{
		AssetHash:  in.AssetHash,
		ConfigHash: in.ConfigHash,
		FontHash:   in.FontHash,
		Outputs:    cached,
	}
	return c.SaveManifest()
}

// SaveManifest writes the current manifest to manifest.json in the cache
// directory.
func (c *Cache) SaveManifest() error {
	data, err := json.MarshalIndent(c.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling cache manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(c.dir, "manifest.json"), data, 0o644)
}

// HashFile computes the SHA-256 hex digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// HashValue computes the SHA-256 hex digest of v's JSON encoding.
func HashValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}
