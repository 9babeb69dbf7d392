package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoCacheBasicOps(t *testing.T) {
	c := NewGoCache(DefaultLocalConfig())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.True(t, c.Exists(ctx, "k"))

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestGoCacheExpiration(t *testing.T) {
	c := NewGoCache(LocalConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, 30*time.Millisecond))
	time.Sleep(60 * time.Millisecond)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestGoCacheClear(t *testing.T) {
	c := NewGoCache(DefaultLocalConfig())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, c.Clear(ctx))

	assert.False(t, c.Exists(ctx, "a"))
	assert.False(t, c.Exists(ctx, "b"))
}

func TestFactory(t *testing.T) {
	c, err := NewCache(Config{Type: "local", Local: DefaultLocalConfig()})
	require.NoError(t, err)
	require.NotNil(t, c)
	c.Close()

	// 空类型回退到本地缓存
	c, err = NewCache(Config{})
	require.NoError(t, err)
	require.NotNil(t, c)
	c.Close()

	_, err = NewCache(Config{Type: "memcached"})
	assert.Error(t, err)
}
