package journal

import (
	"context"
	"time"

	"github.com/pbaille/moodlog/internal/domain"
	"github.com/pbaille/moodlog/internal/mood"
)

// RecentLimit is how many entries the dashboard lists
const RecentLimit = 5

// Dashboard is everything the overview screen shows
type Dashboard struct {
	UserName string                `json:"user_name"`
	Today    time.Time             `json:"today"`
	Current  *mood.Reading         `json:"current,omitempty"`
	Trend    mood.Trend            `json:"trend"`
	Total    int                   `json:"total"`
	Graph    []mood.Point          `json:"graph"`
	Recent   []domain.JournalEntry `json:"recent"`
}

// BuildDashboard summarizes entries, newest first
func BuildDashboard(entries []domain.JournalEntry, id *domain.Identity, now time.Time) Dashboard {
	d := Dashboard{
		Today:   now,
		Current: mood.Current(entries),
		Trend:   mood.TrendOf(entries),
		Total:   len(entries),
		Graph:   mood.Graph(entries),
	}
	if id != nil {
		d.UserName = id.Name()
	}

	recent := entries
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	d.Recent = append([]domain.JournalEntry(nil), recent...)
	return d
}

// LoadDashboard fetches entries into its own store, titled by date.
// On a failed load the dashboard is still returned, empty, with the error.
func LoadDashboard(ctx context.Context, backend Backend, identity Identifier, now time.Time) (Dashboard, error) {
	var id *domain.Identity
	if identity != nil {
		id, _ = identity.Identity()
	}

	store := NewEntryStore(backend, TitleDate)
	err := store.Load(ctx)
	return BuildDashboard(store.Entries(), id, now), err
}
