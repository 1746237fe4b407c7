package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch), "unexpected character %q", ch)
		}
		seen[code] = true
	}
	// 50 draws from a 36^6 space colliding down to a handful would mean a
	// broken generator
	assert.Greater(t, len(seen), 40)
}

func TestVerificationStoreFallback(t *testing.T) {
	ctx := context.Background()
	store := NewVerificationStore(nil)

	pending := PendingSignup{Code: "ABC123", Password: "pw", FirstName: "Lina", LastName: "Haddad"}
	require.NoError(t, store.Put(ctx, "lina@example.com", pending))

	got, ok := store.Get(ctx, "lina@example.com")
	require.True(t, ok)
	assert.Equal(t, pending, got)

	_, ok = store.Get(ctx, "nobody@example.com")
	assert.False(t, ok)

	// Re-sending replaces the stash
	require.NoError(t, store.Put(ctx, "lina@example.com", PendingSignup{Code: "XYZ789"}))
	got, ok = store.Get(ctx, "lina@example.com")
	require.True(t, ok)
	assert.Equal(t, "XYZ789", got.Code)

	store.Delete(ctx, "lina@example.com")
	_, ok = store.Get(ctx, "lina@example.com")
	assert.False(t, ok)
}

func TestValidateAttemptsWithoutRedis(t *testing.T) {
	store := NewVerificationStore(nil)
	for i := 0; i < 10; i++ {
		assert.NoError(t, store.ValidateAttempts(context.Background(), "lina@example.com"))
	}
}
