package kvcache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("greeting", "hello", time.Minute)

	got, ok := c.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	_, ok = c.Get("absent")
	assert.False(t, ok)
}

func TestCache_Overwrite(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("key", "first", time.Minute)
	c.Set("key", "second", time.Minute)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCache_Expiry(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("ephemeral", 42, 10*time.Millisecond)

	_, ok := c.Get("ephemeral")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("ephemeral")
	assert.False(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := New()
	defer c.Close()

	c.Set("key", "value", time.Minute)
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			c.Set(key, n, time.Minute)
			c.Get(key)
			c.Delete(key)
		}(i)
	}
	wg.Wait()
}
