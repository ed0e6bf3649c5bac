package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	exists, err := l.Exists(ctx, "tasks.yaml")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = l.Read(ctx, "tasks.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, l.Write(ctx, "tasks.yaml", []byte("hello")))

	exists, err = l.Exists(ctx, "tasks.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := l.Read(ctx, "tasks.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, l.Delete(ctx, "tasks.yaml"))
	_, err = l.Read(ctx, "tasks.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalWriteCreatesParentDirs(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, l.Write(ctx, "snapshots/tasks-1.yaml", []byte("a")))
	require.NoError(t, l.Write(ctx, "snapshots/tasks-2.yaml", []byte("b")))

	paths, err := l.List(ctx, "snapshots")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"snapshots/tasks-1.yaml", "snapshots/tasks-2.yaml"}, paths)
}

func TestLocalListMissingPrefix(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	paths, err := l.List(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalDeleteMissing(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, l.Delete(context.Background(), "ghost.yaml"), ErrNotFound)
}
