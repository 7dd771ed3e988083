package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairingStoreCreateAndConsume(t *testing.T) {
	store := NewPairingStore(5 * time.Minute)

	code, err := store.Create("req-1")
	require.NoError(t, err)
	assert.Len(t, code, 6)

	_, found, expired := store.Lookup(code)
	assert.True(t, found)
	assert.False(t, expired)

	store.Consume(code)
	_, found, _ = store.Lookup(code)
	assert.False(t, found)
}

func TestPairingStoreUnknownCode(t *testing.T) {
	store := NewPairingStore(5 * time.Minute)

	_, found, expired := store.Lookup("000000")
	assert.False(t, found)
	assert.False(t, expired)
}

func TestPairingStoreExpiry(t *testing.T) {
	store := NewPairingStore(time.Millisecond)

	code, err := store.Create("req-1")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, found, expired := store.Lookup(code)
	assert.True(t, found)
	assert.True(t, expired)

	store.CleanupExpired()
	_, found, _ = store.Lookup(code)
	assert.False(t, found)
}

func TestPairingStoreClear(t *testing.T) {
	store := NewPairingStore(5 * time.Minute)

	code, err := store.Create("req-1")
	require.NoError(t, err)

	store.Clear()
	_, found, _ := store.Lookup(code)
	assert.False(t, found)
}
