package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/klauspost/compress/zstd"
)

// MemoryCache keeps recently used parsed versions
type MemoryCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewMemoryCache creates a cache holding at most maxEntries versions
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 8
	}
	return &MemoryCache{cache: lru.New(maxEntries)}
}

// Get returns the cached version for hash
func (c *MemoryCache) Get(hash string) (*Version, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	return v.(*Version), true
}

// Add stores a version under its hash
func (c *MemoryCache) Add(v *Version) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(v.Hash(), v)
}

// Len returns the number of cached versions
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

const diskExt = ".json.zst"

// DiskCache persists raw model documents, zstd compressed, so a known
// model can be loaded after a restart without the server
type DiskCache struct {
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewDiskCache opens (creating if needed) a cache directory
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model cache dir: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &DiskCache{dir: dir, enc: enc, dec: dec}, nil
}

func (c *DiskCache) path(hash string) (string, error) {
	if !ValidHash(hash) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return filepath.Join(c.dir, hash+diskExt), nil
}

// Get returns the raw document for hash. A missing entry is (nil, false, nil).
func (c *DiskCache) Get(hash string) ([]byte, bool, error) {
	path, err := c.path(hash)
	if err != nil {
		return nil, false, err
	}

	compressed, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached model: %w", err)
	}

	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress cached model: %w", err)
	}
	return data, true, nil
}

// Put stores data under hash, atomically replacing any previous entry
func (c *DiskCache) Put(hash string, data []byte) error {
	path, err := c.path(hash)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, "model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(c.enc.EncodeAll(data, nil)); err != nil {
		tmp.Close()
		return fmt.Errorf("write cached model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cached model: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store cached model: %w", err)
	}
	return nil
}

// Remove deletes a cached entry
func (c *DiskCache) Remove(hash string) error {
	path, err := c.path(hash)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close releases the codec resources
func (c *DiskCache) Close() error {
	c.dec.Close()
	return c.enc.Close()
}
