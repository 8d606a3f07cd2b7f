package buildcache_test

import (
	"testing"

	"github.com/amber-lang/amberc/internal/buildcache"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := buildcache.Open("")
	require.NoError(t, err)
	defer c.Close()

	hash := buildcache.Hash([]byte("interface M"), []byte("body M"))

	_, hit, err := c.Get("M", hash)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Put("M", hash, []byte("serialized result")))

	payload, hit, err := c.Get("M", hash)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte("serialized result"), payload)
}

func TestCachePutOverwritesSameKey(t *testing.T) {
	c, err := buildcache.Open("")
	require.NoError(t, err)
	defer c.Close()

	hash := buildcache.Hash(nil, []byte("body M"))

	require.NoError(t, c.Put("M", hash, []byte("v1")))
	require.NoError(t, c.Put("M", hash, []byte("v2")))

	payload, hit, err := c.Get("M", hash)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte("v2"), payload)

	stats, err := c.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.Entries)
}

func TestHashDistinguishesInterfaceBodySplit(t *testing.T) {
	// Hash("ab", "") must differ from Hash("a", "b") — the separator byte
	// exists precisely to keep these from colliding.
	require.NotEqual(t, buildcache.Hash([]byte("ab"), []byte("")), buildcache.Hash([]byte("a"), []byte("b")))
}

func TestEvictRemovesEntry(t *testing.T) {
	c, err := buildcache.Open("")
	require.NoError(t, err)
	defer c.Close()

	hash := buildcache.Hash(nil, []byte("body M"))
	require.NoError(t, c.Put("M", hash, []byte("v1")))

	removed, err := c.Evict("M", hash)
	require.NoError(t, err)
	require.True(t, removed)

	_, hit, err := c.Get("M", hash)
	require.NoError(t, err)
	require.False(t, hit)

	removed, err = c.Evict("M", hash)
	require.NoError(t, err)
	require.False(t, removed)
}
