package domain

import (
	"strings"
	"time"
)

// JournalEntry is one saved journal submission with its AI-derived mood
type JournalEntry struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	MoodScore *int      `json:"mood_score,omitempty"`
	Summary   string    `json:"summary"`
}

// HasScore reports whether the entry carries a mood score
func (e JournalEntry) HasScore() bool {
	return e.MoodScore != nil
}

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is one turn of an entry-scoped conversation
type ChatMessage struct {
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Identity is the signed-in user as reported by the identity provider
type Identity struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Name is the display name, falling back to the local part of the email
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
