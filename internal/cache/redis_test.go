package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type menuEntry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got []menuEntry
	assert.ErrorIs(t, c.Get(ctx, MenuKey(1, true), &got), ErrMiss)

	want := []menuEntry{{ID: 1, Name: "Margherita"}}
	require.NoError(t, c.Set(ctx, MenuKey(1, true), want))
	require.NoError(t, c.Get(ctx, MenuKey(1, true), &got))
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, MenuKey(1, true), &got), ErrMiss)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, RestaurantsKey("", ""), []int{1}))
	require.NoError(t, c.Set(ctx, RestaurantsKey("pizza", ""), []int{1}))
	require.NoError(t, c.Set(ctx, RestaurantKey(1), map[string]int{"id": 1}))

	require.NoError(t, c.Delete(ctx, RestaurantsPattern, RestaurantKey(1)))
	assert.False(t, mr.Exists(RestaurantsKey("", "")))
	assert.False(t, mr.Exists(RestaurantsKey("pizza", "")))
	assert.False(t, mr.Exists(RestaurantKey(1)))

	assert.NoError(t, c.Delete(ctx, "catalog:nothing:*"))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache("127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	var dest []int
	assert.ErrorIs(t, c.Get(context.Background(), "k", &dest), ErrMiss)
	assert.NoError(t, c.Set(context.Background(), "k", 1))
	assert.NoError(t, c.Delete(context.Background(), "k"))
}

func TestMenuKeys(t *testing.T) {
	assert.Equal(t, []string{"catalog:menu:7:true", "catalog:menu:7:false"}, MenuKeys(7))
}
