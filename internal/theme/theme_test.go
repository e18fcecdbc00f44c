package theme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unievents/uni/internal/kv"
)

func TestToggle(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemoryStore()

	s, err := New(ctx, storage)
	require.NoError(t, err)
	assert.False(t, s.IsDark())
	stored, _ := storage.Get(ctx, StorageKey)
	assert.Equal(t, Light, string(stored))

	require.NoError(t, s.Toggle(ctx))
	assert.True(t, s.IsDark())
	assert.Equal(t, Dark, s.Name())

	again, err := New(ctx, storage)
	require.NoError(t, err)
	assert.True(t, again.IsDark())
}

func TestNew_UnknownValueIsLight(t *testing.T) {
	ctx := context.Background()
	storage := kv.NewMemoryStore()
	require.NoError(t, storage.Set(ctx, StorageKey, []byte("sepia")))

	s, err := New(ctx, storage)
	require.NoError(t, err)
	assert.Equal(t, Light, s.Name())
}
