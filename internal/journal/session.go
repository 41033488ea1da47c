package journal

import (
	"context"
	"sync"

	"github.com/pbaille/moodlog/internal/api"
	"github.com/pbaille/moodlog/internal/domain"
	"go.uber.org/zap"
)

// Identifier reports the signed-in user
type Identifier interface {
	Identity() (*domain.Identity, error)
}

// EntryCache keeps the last loaded entries for offline use
type EntryCache interface {
	ReplaceEntries(userID string, entries []domain.JournalEntry) error
}

// NoticeLevel tells errors from confirmations
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeSuccess NoticeLevel = "success"
)

// Notice is the one dismissible message a session shows
type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// Session is the state behind the journal screen: the entry list,
// the selected entry, the draft being composed and the chat overlay.
// Generate, save and delete run one at a time.
type Session struct {
	Entries *EntryStore
	Draft   *Draft
	Chat    *ChatSession

	mu       sync.Mutex
	selected string
	notice   *Notice
	busy     bool

	identity Identifier
	cache    EntryCache
	log      *zap.SugaredLogger
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithEntryCache writes every loaded snapshot to c
func WithEntryCache(c EntryCache) SessionOption {
	return func(s *Session) { s.cache = c }
}

// NewSession wires the journal components over one backend
func NewSession(backend Backend, identity Identifier, log *zap.SugaredLogger, opts ...SessionOption) *Session {
	s := &Session{
		Entries:  NewEntryStore(backend, TitleOrdinal),
		Draft:    NewDraft(backend, log),
		Chat:     NewChatSession(backend, log),
		identity: identity,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity is the signed-in user
func (s *Session) Identity() (*domain.Identity, error) {
	return s.identity.Identity()
}

// Refresh reloads the entry list
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.Entries.Load(ctx); err != nil {
		s.fail("load entries", err, "Failed to load journal entries")
		return err
	}

	if s.cache != nil {
		if id, err := s.identity.Identity(); err == nil {
			if err := s.cache.ReplaceEntries(id.UID, s.Entries.Entries()); err != nil {
				s.log.Warnw("failed to cache entries", "error", err)
			}
		}
	}

	s.mu.Lock()
	if _, ok := s.Entries.Get(s.selected); !ok {
		s.selected = ""
	}
	s.mu.Unlock()
	return nil
}

// Select shows an existing entry; "" returns to the new-entry view
func (s *Session) Select(id string) error {
	if id != "" {
		if _, ok := s.Entries.Get(id); !ok {
			return domain.Validation("select", "Entry not found")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
	return nil
}

// Selected is the entry on display, nil in the new-entry view
func (s *Session) Selected() *domain.JournalEntry {
	s.mu.Lock()
	id := s.selected
	s.mu.Unlock()
	if id == "" {
		return nil
	}
	e, ok := s.Entries.Get(id)
	if !ok {
		return nil
	}
	return &e
}

// Generate scores the draft
func (s *Session) Generate(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.clearNotice()
	if err := s.Draft.Generate(ctx); err != nil {
		s.fail("generate", err, "Failed to generate summary")
		return err
	}
	return nil
}

// Save persists the draft and selects the new entry
func (s *Session) Save(ctx context.Context) (*domain.JournalEntry, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	s.clearNotice()
	entry, err := s.Draft.Save(ctx, s.Entries)
	if err != nil {
		fallback := "Failed to save journal entry"
		if msg := api.ServerMessage(err); msg != "" {
			fallback = msg
		}
		s.fail("save", err, fallback)
		return nil, err
	}

	s.mu.Lock()
	s.selected = entry.ID
	s.mu.Unlock()
	s.succeed("Entry saved successfully!")
	return entry, nil
}

// Delete removes an entry; the caller is expected to have confirmed
func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.clearNotice()
	if err := s.Entries.Remove(ctx, id); err != nil {
		s.fail("delete", err, "Failed to delete journal entry")
		return err
	}

	s.mu.Lock()
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()
	if s.Chat.EntryID() == id {
		s.Chat.Close()
	}
	s.succeed("Entry deleted successfully!")
	return nil
}

// OpenChat starts a conversation about the selected entry
func (s *Session) OpenChat() error {
	return s.Chat.Open(s.Selected())
}

// SendChat sends one message in the open conversation
func (s *Session) SendChat(ctx context.Context, text string) (*domain.ChatMessage, error) {
	return s.Chat.Send(ctx, text)
}

// CloseChat ends the conversation
func (s *Session) CloseChat() {
	s.Chat.Close()
}

// Notice is the current message, nil when there is none
func (s *Session) Notice() *Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return nil
	}
	n := *s.notice
	return &n
}

// Dismiss clears the current message
func (s *Session) Dismiss() {
	s.clearNotice()
}

// Busy reports whether a generate, save or delete is running
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

func (s *Session) clearNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = nil
}

func (s *Session) succeed(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = &Notice{Level: NoticeSuccess, Text: text}
}

// fail logs err and shows its validation message, or fallback for anything else
func (s *Session) fail(op string, err error, fallback string) {
	text := fallback
	if domain.IsValidation(err) {
		text = domain.UserMessage(err, fallback)
	}
	s.log.Errorw("operation failed", "op", op, "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = &Notice{Level: NoticeError, Text: text}
}
