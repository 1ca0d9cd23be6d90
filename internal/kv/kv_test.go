package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseClient(t *testing.T, c Client) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Set(ctx, c, "a", "1"))
	require.NoError(t, c.Apply(ctx, []Write{{Key: "b", Value: "2"}, {Key: "a", Value: "3"}}))

	value, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3", value)

	require.NoError(t, Delete(ctx, c, "b"))
	_, ok, err = c.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Ping(ctx))
}

func TestMemoryClient(t *testing.T) {
	exerciseClient(t, NewMemory())
}

func TestRedisClient(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	r := NewRedis(client, "test:")
	t.Cleanup(func() { _ = r.Close() })

	exerciseClient(t, r)

	stored, err := server.Get("test:a")
	require.NoError(t, err)
	assert.Equal(t, "3", stored, "keys must carry the configured prefix")
}

func TestStagedBuffersUntilCommit(t *testing.T) {
	ctx := context.Background()
	parent := NewMemory()
	require.NoError(t, Set(ctx, parent, "kept", "old"))
	require.NoError(t, Set(ctx, parent, "gone", "x"))

	staged := NewStaged(parent)
	require.NoError(t, Set(ctx, staged, "kept", "new"))
	require.NoError(t, Delete(ctx, staged, "gone"))
	assert.Equal(t, 2, staged.Pending())

	value, ok, err := staged.Get(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", value)
	_, ok, _ = staged.Get(ctx, "gone")
	assert.False(t, ok)

	value, _, _ = parent.Get(ctx, "kept")
	assert.Equal(t, "old", value, "parent must not change before commit")

	require.NoError(t, staged.Commit(ctx))
	value, _, _ = parent.Get(ctx, "kept")
	assert.Equal(t, "new", value)
	_, ok, _ = parent.Get(ctx, "gone")
	assert.False(t, ok)
	assert.Equal(t, 0, staged.Pending())
}

func TestStagedDiscard(t *testing.T) {
	ctx := context.Background()
	parent := NewMemory()
	staged := NewStaged(parent)
	require.NoError(t, Set(ctx, staged, "k", "v"))
	staged.Discard()
	require.NoError(t, staged.Commit(ctx))
	_, ok, _ := parent.Get(ctx, "k")
	assert.False(t, ok)
}

type failingClient struct {
	*Memory
}

func (failingClient) Apply(context.Context, []Write) error {
	return errors.New("write refused")
}

func TestStagedCommitKeepsBufferOnFailure(t *testing.T) {
	ctx := context.Background()
	staged := NewStaged(failingClient{NewMemory()})
	require.NoError(t, Set(ctx, staged, "k", "v"))
	require.Error(t, staged.Commit(ctx))
	assert.Equal(t, 1, staged.Pending())
}
