package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("marks a new key", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(1 * time.Hour)
		defer store.Close()

		isNew, err := store.MarkOnce(ctx, "mpesa:callback:ws_CO_1")
		require.NoError(t, err)
		assert.True(t, isNew, "new key should return true")
	})

	t.Run("returns false for an already seen key", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(1 * time.Hour)
		defer store.Close()

		isNew, err := store.MarkOnce(ctx, "mpesa:callback:ws_CO_2")
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkOnce(ctx, "mpesa:callback:ws_CO_2")
		require.NoError(t, err)
		assert.False(t, isNew, "seen key should return false")
	})

	t.Run("allows remarking after the retention window", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
		defer store.Close()

		isNew, err := store.MarkOnce(ctx, "mpesa:callback:ws_CO_3")
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkOnce(ctx, "mpesa:callback:ws_CO_3")
		require.NoError(t, err)
		assert.True(t, isNew, "expired key should be markable again")
	})
}

func TestInMemoryIdempotencyStore_Seen(t *testing.T) {
	ctx := context.Background()

	t.Run("does not mark the key", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(1 * time.Hour)
		defer store.Close()

		seen, err := store.Seen(ctx, "mpesa:callback:ws_CO_4")
		require.NoError(t, err)
		assert.False(t, seen)

		// A peek must not consume the mark
		isNew, err := store.MarkOnce(ctx, "mpesa:callback:ws_CO_4")
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("reports a marked key", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(1 * time.Hour)
		defer store.Close()

		_, err := store.MarkOnce(ctx, "mpesa:callback:ws_CO_5")
		require.NoError(t, err)

		seen, err := store.Seen(ctx, "mpesa:callback:ws_CO_5")
		require.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("expired key reads as unseen", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
		defer store.Close()

		_, err := store.MarkOnce(ctx, "mpesa:callback:ws_CO_6")
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		seen, err := store.Seen(ctx, "mpesa:callback:ws_CO_6")
		require.NoError(t, err)
		assert.False(t, seen)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()

	store.MarkOnce(ctx, "short-lived-1")
	store.MarkOnce(ctx, "short-lived-2")
	assert.Equal(t, 2, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 0, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(1 * time.Hour)
	defer store.Close()

	ctx := context.Background()
	const numGoroutines = 100
	const key = "concurrent-key"

	results := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			isNew, err := store.MarkOnce(ctx, key)
			if err != nil {
				results <- false
				return
			}
			results <- isNew
		}()
	}

	newCount := 0
	for i := 0; i < numGoroutines; i++ {
		if <-results {
			newCount++
		}
	}

	// Exactly one goroutine wins the mark
	assert.Equal(t, 1, newCount)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore(1 * time.Hour)

	err := store.Close()
	assert.NoError(t, err)

	// Multiple closes are safe
	err = store.Close()
	assert.NoError(t, err)
}
