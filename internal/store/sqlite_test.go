package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pbaille/moodlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "cache", "moodlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entries() []domain.JournalEntry {
	return []domain.JournalEntry{
		{ID: "3", Date: time.Date(2025, 4, 3, 9, 0, 0, 0, time.UTC), Title: "Entry 3", Content: "Beach day with friends", MoodScore: domain.IntPtr(9), Summary: "joyful"},
		{ID: "2", Date: time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC), Title: "Entry 2", Content: "Long meeting", Summary: "tired"},
		{ID: "1", Date: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC), Title: "Entry 1", Content: "100% done with the move", MoodScore: domain.IntPtr(6), Summary: "relieved"},
	}
}

func TestReplaceAndList(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ReplaceEntries("u1", entries()))

	got, err := s.ListEntries("u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, 9, *got[0].MoodScore)
	assert.Nil(t, got[1].MoodScore)
	assert.True(t, got[0].Date.Equal(entries()[0].Date))

	page, err := s.ListEntries("u1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2", page[0].ID)
}

func TestReplaceDropsPreviousSnapshot(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ReplaceEntries("u1", entries()))
	require.NoError(t, s.ReplaceEntries("u1", entries()[:1]))
	require.NoError(t, s.ReplaceEntries("u2", entries()[1:]))

	got, err := s.ListEntries("u1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = s.GetEntry("u1", "2")
	assert.ErrorIs(t, err, ErrNotFound)

	other, err := s.GetEntry("u2", "2")
	require.NoError(t, err)
	assert.Equal(t, "Long meeting", other.Content)
}

func TestSearchEntries(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ReplaceEntries("u1", entries()))

	got, err := s.SearchEntries("u1", "beach")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	got, err = s.SearchEntries("u1", "tired")
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.SearchEntries("u1", "100%")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got, err = s.SearchEntries("u2", "beach")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachedAt(t *testing.T) {
	s := newTestStore(t)
	at, err := s.CachedAt("u1")
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	fixed := time.Date(2025, 4, 5, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	require.NoError(t, s.ReplaceEntries("u1", entries()))

	at, err = s.CachedAt("u1")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(at))
}

func TestReplaceRequiresUser(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.ReplaceEntries("", entries()))
}

func TestEntriesWithoutID(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ReplaceEntries("u1", []domain.JournalEntry{
		{Title: "Entry 2", Content: "no id"},
		{Title: "Entry 1", Content: "also no id"},
	}))

	got, err := s.ListEntries("u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "no id", got[0].Content)

	_, err = s.GetEntry("u1", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
