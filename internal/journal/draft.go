package journal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pbaille/moodlog/internal/api"
	"github.com/pbaille/moodlog/internal/domain"
	"go.uber.org/zap"
)

const (
	msgEmptyContent = "Please enter some content first"
	msgNoScore      = "Generate a mood score before saving"
	msgStaleScore   = "The entry changed since it was scored, generate again before saving"
)

type generated struct {
	score   *int
	summary string
}

// Draft is the entry being composed, with the mood score and summary
// generated for it. The score remembers which text it was computed from.
type Draft struct {
	mu        sync.Mutex
	content   string
	moodScore *int
	summary   string
	scoredFor string

	backend Backend
	results *cache.Cache
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewDraft creates an empty draft
func NewDraft(backend Backend, log *zap.SugaredLogger) *Draft {
	return &Draft{
		backend: backend,
		results: cache.New(30*time.Minute, 10*time.Minute),
		log:     log,
		now:     time.Now,
	}
}

// SetContent replaces the draft text
func (d *Draft) SetContent(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = text
}

// Content is the current text
func (d *Draft) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// MoodScore is the generated score, nil until generated
func (d *Draft) MoodScore() *int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.moodScore == nil {
		return nil
	}
	v := *d.moodScore
	return &v
}

// Summary is the generated summary
func (d *Draft) Summary() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.summary
}

// Stale reports whether the text changed after the score was generated
func (d *Draft) Stale() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.moodScore != nil && d.content != d.scoredFor
}

// Generate scores and summarizes the current text.
// On failure the previous score and summary are kept.
func (d *Draft) Generate(ctx context.Context) error {
	content := d.Content()
	if strings.TrimSpace(content) == "" {
		return domain.Validation("generate", msgEmptyContent)
	}

	key := contentKey(content)
	if v, ok := d.results.Get(key); ok {
		g := v.(generated)
		d.apply(content, g)
		d.log.Debugw("reused generated summary", "key", key[:12])
		return nil
	}

	resp, err := d.backend.Generate(ctx, content)
	if err != nil {
		return err
	}

	g := generated{score: api.Score(resp.MoodScore), summary: resp.Summary}
	if g.score == nil {
		return domain.Network("generate", "the summarizer returned no mood score", 0, nil)
	}
	d.results.Set(key, g, cache.DefaultExpiration)
	d.apply(content, g)
	return nil
}

func (d *Draft) apply(content string, g generated) {
	d.mu.Lock()
	defer d.mu.Unlock()
	score := *g.score
	d.moodScore = &score
	d.summary = g.summary
	d.scoredFor = content
}

// Ready checks that the draft may be saved
func (d *Draft) Ready() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case strings.TrimSpace(d.content) == "":
		return domain.Validation("save", msgEmptyContent)
	case d.moodScore == nil:
		return domain.Validation("save", msgNoScore)
	case d.content != d.scoredFor:
		return domain.Validation("save", msgStaleScore)
	}
	return nil
}

// Save persists the draft and adds the new entry to store.
// When the backend does not return an id the store is reloaded instead,
// so the server's list stays authoritative.
func (d *Draft) Save(ctx context.Context, store *EntryStore) (*domain.JournalEntry, error) {
	if err := d.Ready(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	content, score, summary := d.content, *d.moodScore, d.summary
	d.mu.Unlock()

	resp, err := d.backend.SaveJournal(ctx, api.SaveRequest{
		Journal:   content,
		MoodScore: score,
		Summary:   summary,
	})
	if err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		ID:        string(resp.ID),
		Date:      resp.Date.Time,
		Title:     resp.Title,
		Content:   content,
		MoodScore: domain.IntPtr(score),
		Summary:   summary,
	}
	if entry.Date.IsZero() {
		entry.Date = d.now()
	}
	if entry.Title == "" {
		entry.Title = fmt.Sprintf("Entry %d", store.Len()+1)
	}

	d.clearSaved(content)

	if entry.ID == "" {
		d.log.Infow("save returned no id, reloading entries")
		if err := store.Load(ctx); err != nil {
			return nil, fmt.Errorf("reload after save: %w", err)
		}
		if entries := store.Entries(); len(entries) > 0 {
			return &entries[0], nil
		}
		return &entry, nil
	}

	store.Add(entry)
	return &entry, nil
}

// Clear discards text, score and summary
func (d *Draft) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = ""
	d.moodScore = nil
	d.summary = ""
	d.scoredFor = ""
}

// clearSaved empties the draft unless it was edited while the save was in flight
func (d *Draft) clearSaved(saved string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.content != saved {
		return
	}
	d.content = ""
	d.moodScore = nil
	d.summary = ""
	d.scoredFor = ""
}

func contentKey(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
