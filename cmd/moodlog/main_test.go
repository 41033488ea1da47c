package main

import (
	"path/filepath"
	"testing"

	"github.com/pbaille/moodlog/internal/domain"
	"github.com/pbaille/moodlog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEntry(t *testing.T) {
	entries := []domain.JournalEntry{
		{ID: "abc123"},
		{ID: "abd456"},
		{ID: "ab"},
	}

	e, err := findEntry(entries, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", e.ID)

	e, err = findEntry(entries, "ab")
	require.NoError(t, err)
	assert.Equal(t, "ab", e.ID)

	_, err = findEntry(entries, "abd4")
	assert.NoError(t, err)

	_, err = findEntry(entries, "zz")
	assert.True(t, domain.IsValidation(err))

	_, err = findEntry(entries[:2], "ab")
	assert.ErrorContains(t, err, "ambiguous")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "01234567", shortID("0123456789"))
	assert.Equal(t, "42      ", shortID("42"))
}

func TestLookupCached(t *testing.T) {
	cache, err := store.New(filepath.Join(t.TempDir(), "moodlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	require.NoError(t, cache.ReplaceEntries("u1", []domain.JournalEntry{
		{ID: "f00dcafe", Title: "Entry 2", Content: "slow morning", MoodScore: domain.IntPtr(5)},
		{ID: "beef0001", Title: "Entry 1", Content: "first day"},
	}))

	e, err := lookupCached(cache, "u1", "beef0001")
	require.NoError(t, err)
	assert.Equal(t, "first day", e.Content)
	assert.False(t, e.HasScore())

	e, err = lookupCached(cache, "u1", "f00d")
	require.NoError(t, err)
	assert.Equal(t, "f00dcafe", e.ID)
	assert.True(t, e.HasScore())

	_, err = lookupCached(cache, "u2", "f00d")
	assert.True(t, domain.IsValidation(err))
}
