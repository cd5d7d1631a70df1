package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuku/sharedpool/cache"
)

func TestCache(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		c := cache.New()
		c.Put("Product 1", "Laptop")

		v, ok := c.Get("Product 1")
		require.True(t, ok)
		require.Equal(t, "Laptop", v)

		c.Put("Product 1", "Tablet")
		v, _ = c.Get("Product 1")
		require.Equal(t, "Tablet", v, "expected Put to overwrite")
		require.Equal(t, 1, c.Len())
	})

	t.Run("absent key", func(t *testing.T) {
		c := cache.New()

		v, ok := c.Get("missing")
		require.False(t, ok)
		require.Empty(t, v)
		require.Equal(t, cache.NotFound, c.GetOrDefault("missing", cache.NotFound))
	})

	t.Run("stored value equal to the display default is still present", func(t *testing.T) {
		c := cache.New()
		c.Put("k", cache.NotFound)

		v, ok := c.Get("k")
		require.True(t, ok)
		require.Equal(t, cache.NotFound, v)
	})

	t.Run("keys are case sensitive", func(t *testing.T) {
		c := cache.New()
		c.Put("product 2", "Mobile")

		_, ok := c.Get("Product 2")
		require.False(t, ok)
	})

	t.Run("remove", func(t *testing.T) {
		c := cache.New()
		c.Put("a", "1")
		c.Put("b", "2")

		c.Remove("a")
		c.Remove("never-stored")

		_, ok := c.Get("a")
		require.False(t, ok)
		require.Equal(t, "2", c.GetOrDefault("b", cache.NotFound))
		require.Equal(t, 1, c.Len())
	})

	t.Run("clear", func(t *testing.T) {
		c := cache.New()
		keys := []string{"a", "b", "c"}
		for _, k := range keys {
			c.Put(k, "v-"+k)
		}

		c.Clear()

		for _, k := range keys {
			_, ok := c.Get(k)
			require.Falsef(t, ok, "expected %q to be gone after Clear", k)
			require.Equal(t, cache.NotFound, c.GetOrDefault(k, cache.NotFound))
		}
		require.Equal(t, 0, c.Len())
	})
}

func TestCacheConcurrency(t *testing.T) {
	const numWorkers = 8
	c := cache.New()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("w%d-%d", workerID, j)
				c.Put(key, key)
				if v, ok := c.Get(key); !ok || v != key {
					t.Errorf("worker %d: expected %q, got %q (present=%v)", workerID, key, v, ok)
				}
				if j%10 == 0 {
					c.Remove(key)
				}
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, numWorkers*90, c.Len())
}
