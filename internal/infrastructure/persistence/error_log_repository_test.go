package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormErrorLogRepository(t *testing.T) {
	repo := NewGormErrorLogRepository(setupTestDB(t))
	repo.now = steppingClock(testEpoch)
	ctx := context.Background()

	require.NoError(t, repo.Log(ctx, "INVALID_ZIP_ERROR", "Postleitzahl ungültig", true))
	require.NoError(t, repo.Log(ctx, "createYCCustomerOrder", "soap fault: Sender unknown", false))

	entries, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "createYCCustomerOrder", entries[0].Tag)
	assert.False(t, entries[0].IsWarning)
	assert.True(t, entries[1].IsWarning)

	t.Run("search", func(t *testing.T) {
		entries, err := repo.List(ctx, "ZIP")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "INVALID_ZIP_ERROR", entries[0].Tag)
	})

	t.Run("purge", func(t *testing.T) {
		removed, err := repo.Purge(ctx, testEpoch.Add(90*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		entries, err := repo.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
