package tui

import (
	"github.com/pbaille/moodlog/internal/domain"
	"github.com/pbaille/moodlog/internal/journal"
)

// dashboardMsg carries a freshly loaded dashboard
type dashboardMsg struct {
	Dashboard journal.Dashboard
	Err       error
}

// entriesMsg is sent when the journal list finished reloading
type entriesMsg struct {
	Err error
}

// generatedMsg is sent when the draft was scored
type generatedMsg struct {
	Err error
}

// savedMsg is sent when the draft was saved
type savedMsg struct {
	Entry *domain.JournalEntry
	Err   error
}

// deletedMsg is sent when an entry was deleted
type deletedMsg struct {
	ID  string
	Err error
}

// chatReplyMsg is sent when the assistant answered, or failed to
type chatReplyMsg struct {
	Reply *domain.ChatMessage
	Err   error
}
