package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheEvicts(t *testing.T) {
	cache := NewMemoryCache(2)
	doc := func(hash string) *Version {
		v, err := NewVersion(hash, &Document{})
		require.NoError(t, err)
		return v
	}

	cache.Add(doc("a"))
	cache.Add(doc("b"))
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Add(doc("c"))
	assert.Equal(t, 2, cache.Len())

	_, ok = cache.Get("b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = cache.Get("a")
	assert.True(t, ok)
}

func TestDiskCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(filepath.Join(dir, "models"))
	require.NoError(t, err)
	defer cache.Close()

	hash := ContentHash([]byte(sampleDocument))

	_, ok, err := cache.Get(hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(hash, []byte(sampleDocument)))

	data, ok, err := cache.Get(hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleDocument, string(data))

	raw, err := os.ReadFile(filepath.Join(dir, "models", hash+diskExt))
	require.NoError(t, err)
	assert.Less(t, len(raw), len(sampleDocument))

	require.NoError(t, cache.Remove(hash))
	require.NoError(t, cache.Remove(hash))
	_, ok, err = cache.Get(hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewDiskCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+diskExt), []byte("not zstd"), 0o644))

	_, ok, err := cache.Get("bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDiskCacheRejectsUnsafeHash(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()

	assert.ErrorIs(t, cache.Put("../escape", []byte("{}")), ErrInvalidHash)
}
