package cache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stac-explorer/internal/cache"
)

func TestSearchCacheBasics(t *testing.T) {
	c, err := cache.NewSearchCache(4)
	require.NoError(t, err)

	key := cache.Key("search", "earth_search", "sentinel-2-l2a")

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Put(key, []byte(`{"features":[]}`))

	value, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"features":[]}`), value)

	entries, capacity, hits, misses := c.Stats()
	assert.Equal(t, 1, entries)
	assert.Equal(t, 4, capacity)
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestSearchCacheEviction(t *testing.T) {
	c, err := cache.NewSearchCache(2)
	require.NoError(t, err)

	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))
	c.Put("c", []byte("3"))

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Get("c")
	assert.True(t, ok)

	entries, _, _, _ := c.Stats()
	assert.Equal(t, 2, entries)
}

func TestSearchCacheClear(t *testing.T) {
	c, err := cache.NewSearchCache(4)
	require.NoError(t, err)

	c.Put("a", []byte("1"))
	c.Clear()

	entries, _, _, _ := c.Stats()
	assert.Equal(t, 0, entries)
}

func TestKeyIsStableAndDistinct(t *testing.T) {
	a := cache.Key("search", "earth_search", "sentinel-2-l2a")
	b := cache.Key("search", "earth_search", "sentinel-2-l2a")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	// Part boundaries matter: "ab"+"c" must not collide with "a"+"bc"
	assert.NotEqual(t, cache.Key("ab", "c"), cache.Key("a", "bc"))
	assert.NotEqual(t, a, cache.Key("search", "planetary_computer", "sentinel-2-l2a"))
}

func TestCollectionSnapshot(t *testing.T) {
	snap := cache.NewCollectionSnapshot(t.TempDir())

	type coll struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	assert.False(t, snap.Exists("earth_search"))

	saved := []coll{
		{ID: "sentinel-2-l2a", Title: "Sentinel-2 Level 2A"},
		{ID: "landsat-c2-l2", Title: "Landsat Collection 2 Level-2"},
	}
	require.NoError(t, snap.Save("earth_search", saved))
	assert.True(t, snap.Exists("earth_search"))
	assert.False(t, snap.Exists("planetary_computer"))

	var loaded []coll
	require.NoError(t, snap.Load("earth_search", &loaded))
	assert.Equal(t, saved, loaded)
}

func TestCollectionSnapshotLoadMissing(t *testing.T) {
	snap := cache.NewCollectionSnapshot(t.TempDir())

	var out []string
	err := snap.Load("nope", &out)
	require.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "failed to read snapshot")
}
