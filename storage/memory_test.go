package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemory()

	_, err := store.Get("cartItems")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set("cartItems", []byte(`[]`)))
	got, err := store.Get("cartItems")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	got[0] = 'x'
	again, _ := store.Get("cartItems")
	assert.Equal(t, `[]`, string(again), "returned slices must not alias stored values")

	require.NoError(t, store.Clear())
	_, err = store.Get("cartItems")
	assert.ErrorIs(t, err, ErrNotFound)
}
