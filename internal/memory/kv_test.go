package memory

import (
	"context"
	"testing"

	"github.com/rpggio/learnerhours/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestKVStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	_, err := store.Get(ctx, "learner-hours")
	require.ErrorIs(t, err, repository.ErrNotFound)

	value := []byte(`[]`)
	require.NoError(t, store.Put(ctx, "learner-hours", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "learner-hours")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))
}

func TestKVStore_EmptyKeyAndClosed(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	require.ErrorIs(t, store.Put(ctx, " ", []byte("x")), repository.ErrInvalidInput)

	require.NoError(t, store.Close())
	_, err := store.Get(ctx, "k")
	require.ErrorIs(t, err, repository.ErrClosed)
}
