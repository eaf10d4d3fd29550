package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCache_PutGet(t *testing.T) {
	c := New[int](10)
	c.Put("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_EvictsOldestQuartile(t *testing.T) {
	c := New[int](4)
	for i := 0; i < 4; i++ {
		c.Put(string(rune('a'+i)), i)
	}
	// Crossing capacity triggers eviction of the oldest ~25%.
	c.Put("e", 4)
	assert.LessOrEqual(t, c.Len(), 5)
	stats := c.Stats()
	assert.Greater(t, stats.Evictions, int64(0))
}

func TestCache_ConcurrentAccessIsRaceFree(t *testing.T) {
	c := New[int](1000)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			c.Put(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()
}

func TestCache_GetOrCompute(t *testing.T) {
	c := New[string](10)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "computed", nil
	}
	v, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)

	v, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls, "compute should only run once per key")
}
