package journal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/moodlog/internal/api"
	"github.com/pbaille/moodlog/internal/domain"
	"go.uber.org/zap"
)

// FallbackReply is appended when the assistant cannot be reached
const FallbackReply = "I'm sorry, I'm having trouble responding right now. Please try again later."

const greetingExcerpt = 50

var (
	// ErrChatClosed is returned when sending without an open chat
	ErrChatClosed = domain.Validation("chat", "Open a chat on an entry first")
	// ErrBusy is returned while a previous request is still running
	ErrBusy = domain.Validation("", "Please wait for the current request to finish")
)

// Greeting is the assistant's opening line for an entry
func Greeting(content string) string {
	runes := []rune(content)
	excerpt := content
	suffix := ""
	if len(runes) > greetingExcerpt {
		excerpt = string(runes[:greetingExcerpt])
		suffix = "..."
	}
	return "Hi! I see you wrote about " + excerpt + suffix + ". Would you like to talk about it?"
}

// ChatSession is a conversation about a single entry.
// It lives from Open to Close and is never persisted.
type ChatSession struct {
	mu         sync.Mutex
	id         string
	entry      *domain.JournalEntry
	transcript []domain.ChatMessage
	inFlight   bool

	backend Backend
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewChatSession creates a closed chat
func NewChatSession(backend Backend, log *zap.SugaredLogger) *ChatSession {
	return &ChatSession{backend: backend, log: log, now: time.Now}
}

// Open starts a conversation about entry, replacing any open one
func (c *ChatSession) Open(entry *domain.JournalEntry) error {
	if entry == nil {
		return domain.Validation("chat", "Select an entry to chat about")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := *entry
	c.id = uuid.New().String()
	c.entry = &e
	c.inFlight = false
	c.transcript = []domain.ChatMessage{{
		Sender:    domain.SenderAssistant,
		Message:   Greeting(e.Content),
		Timestamp: c.now(),
	}}
	return nil
}

// IsOpen reports whether a conversation is active
func (c *ChatSession) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry != nil
}

// EntryID is the id of the entry under discussion, "" when closed
func (c *ChatSession) EntryID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return ""
	}
	return c.entry.ID
}

// Busy reports whether a reply is pending
func (c *ChatSession) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Transcript returns a copy of the conversation so far
func (c *ChatSession) Transcript() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatMessage, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Send appends the user's message at once, then waits for the assistant.
// Blank text is ignored. A failed request appends FallbackReply and
// returns the error alongside it. Replies that arrive after the chat was
// closed or reopened are dropped.
func (c *ChatSession) Send(ctx context.Context, text string) (*domain.ChatMessage, error) {
	c.mu.Lock()
	if c.entry == nil {
		c.mu.Unlock()
		return nil, ErrChatClosed
	}
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return nil, nil
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}

	req := api.ChatRequest{
		Message:             text,
		EntryID:             c.entry.ID,
		EntryContent:        c.entry.Content,
		EntrySummary:        c.entry.Summary,
		EntryMood:           c.entry.MoodScore,
		ConversationHistory: history(c.transcript),
	}
	c.transcript = append(c.transcript, domain.ChatMessage{
		Sender:    domain.SenderUser,
		Message:   text,
		Timestamp: c.now(),
	})
	c.inFlight = true
	sessionID := c.id
	c.mu.Unlock()

	reply, err := c.backend.Chat(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id != sessionID {
		c.log.Debugw("dropping reply for closed chat", "entry_id", req.EntryID)
		return nil, nil
	}
	c.inFlight = false

	if err != nil {
		c.log.Errorw("chat request failed", "entry_id", req.EntryID, "error", err)
		reply = FallbackReply
	}

	msg := domain.ChatMessage{
		Sender:    domain.SenderAssistant,
		Message:   reply,
		Timestamp: c.now(),
	}
	c.transcript = append(c.transcript, msg)
	return &msg, err
}

// Close discards the conversation
func (c *ChatSession) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = ""
	c.entry = nil
	c.transcript = nil
	c.inFlight = false
}

func history(transcript []domain.ChatMessage) []api.HistoryTurn {
	turns := make([]api.HistoryTurn, len(transcript))
	for i, m := range transcript {
		role := "assistant"
		if m.Sender == domain.SenderUser {
			role = "user"
		}
		turns[i] = api.HistoryTurn{Role: role, Content: m.Message}
	}
	return turns
}
