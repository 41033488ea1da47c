package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pbaille/moodlog/internal/api"
	"github.com/pbaille/moodlog/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Backend is the subset of the API client the session needs
type Backend interface {
	ListJournals(ctx context.Context) ([]api.Journal, error)
	SaveJournal(ctx context.Context, req api.SaveRequest) (*api.SaveResponse, error)
	Generate(ctx context.Context, content string) (*api.GenerateResponse, error)
	Chat(ctx context.Context, req api.ChatRequest) (string, error)
	DeleteJournal(ctx context.Context, id string) error
}

// TitleStyle decides how untitled entries are named
type TitleStyle int

const (
	// TitleOrdinal names entries "Entry 3", counting up from the oldest
	TitleOrdinal TitleStyle = iota
	// TitleDate names entries "Entry Jan 02, 2025"
	TitleDate
)

// EntryStore is the ordered, newest-first list of the user's entries
type EntryStore struct {
	mu      sync.RWMutex
	entries []domain.JournalEntry

	backend Backend
	titles  TitleStyle
	loads   singleflight.Group
	now     func() time.Time
}

// NewEntryStore creates an empty store
func NewEntryStore(backend Backend, titles TitleStyle) *EntryStore {
	return &EntryStore{
		backend: backend,
		titles:  titles,
		now:     time.Now,
	}
}

// Load replaces the store with the backend's entries.
// On failure the store is left empty. Concurrent calls share one request.
func (s *EntryStore) Load(ctx context.Context) error {
	v, err, _ := s.loads.Do("load", func() (interface{}, error) {
		return s.backend.ListJournals(ctx)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.entries = nil
		return err
	}

	journals := v.([]api.Journal)
	now := s.now()
	entries := make([]domain.JournalEntry, 0, len(journals))
	seen := make(map[string]bool, len(journals))
	for i, j := range journals {
		if j.ID != "" {
			if seen[j.ID] {
				continue
			}
			seen[j.ID] = true
		}
		entries = append(entries, s.fromWire(j, i, len(journals), now))
	}
	s.entries = entries
	return nil
}

func (s *EntryStore) fromWire(j api.Journal, index, total int, now time.Time) domain.JournalEntry {
	date := j.Date.Time
	if date.IsZero() {
		date = now
	}

	title := j.Title
	if title == "" {
		switch s.titles {
		case TitleDate:
			title = "Entry " + date.Format("Jan 02, 2006")
		default:
			title = fmt.Sprintf("Entry %d", total-index)
		}
	}

	return domain.JournalEntry{
		ID:        j.ID,
		Date:      date,
		Title:     title,
		Content:   j.Text,
		MoodScore: api.Score(j.MoodScore),
		Summary:   j.Summary,
	}
}

// Add puts entry at the head. An entry with the same id is replaced.
func (s *EntryStore) Add(entry domain.JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.JournalEntry, 0, len(s.entries)+1)
	entries = append(entries, entry)
	for _, e := range s.entries {
		if e.ID != entry.ID {
			entries = append(entries, e)
		}
	}
	s.entries = entries
}

// Remove deletes id on the backend, then locally.
// Unknown ids and backend failures leave the store unchanged.
// Entries the backend sent without an id cannot be removed.
func (s *EntryStore) Remove(ctx context.Context, id string) error {
	if id == "" {
		return domain.Validation("delete", "This entry has no id and cannot be deleted")
	}
	if _, ok := s.Get(id); !ok {
		return domain.Validation("delete", "Entry not found")
	}

	if err := s.backend.DeleteJournal(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			break
		}
	}
	return nil
}

// Get finds an entry by id. Entries without an id are never found.
func (s *EntryStore) Get(id string) (domain.JournalEntry, bool) {
	if id == "" {
		return domain.JournalEntry{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.JournalEntry{}, false
}

// Entries returns a snapshot, newest first
func (s *EntryStore) Entries() []domain.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.JournalEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len is the number of entries
func (s *EntryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
