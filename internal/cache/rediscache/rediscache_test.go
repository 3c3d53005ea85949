package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	b, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), b)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Delete(ctx))
	require.NoError(t, c.Ping(ctx))
}

func TestRedisCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_GetError(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	require.Error(t, err)
}

func TestRateLimiter_Check(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr(), 2, time.Minute)

	ctx := context.Background()
	res, err := rl.Check(ctx, "a@b.co")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = rl.Check(ctx, "a@b.co")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = rl.Check(ctx, "a@b.co")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Greater(t, res.RemainingTime, time.Duration(0))
	require.LessOrEqual(t, res.RemainingTime, time.Minute)

	res, err = rl.Check(ctx, "other@b.co")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr(), 1, time.Second)
	ctx := context.Background()

	res, _ := rl.Check(ctx, "u")
	require.True(t, res.Allowed)
	res, _ = rl.Check(ctx, "u")
	require.False(t, res.Allowed)

	mr.FastForward(1100 * time.Millisecond)
	res, err := rl.Check(ctx, "u")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}

func TestRateLimiter_Error(t *testing.T) {
	mr := miniredis.RunT(t)
	rl := NewRateLimiter(mr.Addr(), 1, time.Second)
	mr.Close()

	_, err := rl.Check(context.Background(), "u")
	require.Error(t, err)
}
