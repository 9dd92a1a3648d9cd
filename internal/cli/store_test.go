package cli_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/frahmantamala/study-tracker/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *cli.Store {
	t.Helper()
	store, err := cli.OpenStore(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_LoadWithoutSession(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load()
	assert.ErrorIs(t, err, cli.ErrNoSession)
}

func TestStore_SaveLoadDelete(t *testing.T) {
	store := openTestStore(t)
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.Save(&cli.Session{
		BaseURL:   "http://localhost:8080",
		Token:     "tok",
		ExpiresAt: expires,
		Email:     "a@example.com",
		Name:      "Ana",
	}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "http://localhost:8080", got.BaseURL)
	assert.True(t, got.ExpiresAt.Equal(expires))
	assert.Equal(t, "a@example.com", got.Email)

	require.NoError(t, store.Save(&cli.Session{Token: "second"}))
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", got.Token)

	require.NoError(t, store.Delete())
	_, err = store.Load()
	assert.ErrorIs(t, err, cli.ErrNoSession)

	assert.NoError(t, store.Delete())
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := cli.OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(&cli.Session{Token: "persisted"}))
	require.NoError(t, store.Close())

	store, err = cli.OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Token)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&cli.Session{}).Expired(now))
	assert.False(t, (&cli.Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&cli.Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
}
