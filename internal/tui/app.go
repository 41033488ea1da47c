// Package tui is the terminal front end: a dashboard tab, a journal tab
// with the entry list and editor, a delete confirmation and the chat overlay.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pbaille/moodlog/internal/domain"
	"github.com/pbaille/moodlog/internal/journal"
	"go.uber.org/zap"
)

// Tab is one of the top-level screens
type Tab int

const (
	TabDashboard Tab = iota
	TabJournal
)

func (t Tab) String() string {
	if t == TabJournal {
		return "Journal"
	}
	return "Dashboard"
}

// Mode decides where key presses go
type Mode int

const (
	ModeBrowse Mode = iota
	ModeEdit
	ModeConfirmDelete
	ModeChat
)

const listWidth = 34

// App is the main TUI application model
type App struct {
	session *journal.Session
	backend journal.Backend
	log     *zap.SugaredLogger
	ctx     context.Context
	now     func() time.Time

	theme *Theme
	keys  KeyMap

	tab    Tab
	mode   Mode
	width  int
	height int
	ready  bool

	// 0 is the new-entry row, i+1 is entry i
	cursor        int
	pendingDelete string
	working       string
	hint          string

	dashboard    *journal.Dashboard
	dashboardErr error

	editor    textarea.Model
	chatInput textinput.Model
	chatView  viewport.Model
	spinner   spinner.Model
}

// NewApp creates the application over one session.
// backend is used for the dashboard, which keeps its own entry list.
func NewApp(ctx context.Context, session *journal.Session, backend journal.Backend, log *zap.SugaredLogger) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = DefaultTheme.Spinner

	editor := textarea.New()
	editor.Placeholder = "How are you feeling today?"
	editor.ShowLineNumbers = false
	editor.CharLimit = 0

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.CharLimit = 1000
	input.Prompt = "> "

	return &App{
		session:   session,
		backend:   backend,
		log:       log,
		ctx:       ctx,
		now:       time.Now,
		theme:     DefaultTheme,
		keys:      DefaultKeyMap(),
		tab:       TabDashboard,
		editor:    editor,
		chatInput: input,
		chatView:  viewport.New(60, 10),
		spinner:   s,
	}
}

// Tab is the screen on display
func (a *App) Tab() Tab { return a.tab }

// Mode is the current input mode
func (a *App) Mode() Mode { return a.mode }

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.loadDashboard(), a.refresh())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.mode == ModeChat {
			a.syncChat()
		}
		return a, cmd

	case dashboardMsg:
		d := msg.Dashboard
		a.dashboard = &d
		a.dashboardErr = msg.Err
		if msg.Err != nil {
			a.log.Warnw("dashboard load failed", "error", msg.Err)
		}

	case entriesMsg:
		a.working = ""
		a.clampCursor()

	case generatedMsg:
		a.working = ""

	case savedMsg:
		a.working = ""
		if msg.Err == nil {
			a.editor.SetValue(a.session.Draft.Content())
			a.cursor = a.indexOf(msg.Entry.ID)
			return a, a.loadDashboard()
		}

	case deletedMsg:
		a.working = ""
		if msg.Err == nil {
			a.clampCursor()
			return a, a.loadDashboard()
		}

	case chatReplyMsg:
		a.syncChat()
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	a.hint = ""

	switch a.mode {
	case ModeConfirmDelete:
		return a.handleConfirmKey(msg)
	case ModeChat:
		return a.handleChatKey(msg)
	case ModeEdit:
		return a.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.NextTab):
		if a.tab == TabDashboard {
			a.tab = TabJournal
		} else {
			a.tab = TabDashboard
		}
		return a, nil
	case key.Matches(msg, a.keys.Tab1):
		a.tab = TabDashboard
		return a, nil
	case key.Matches(msg, a.keys.Tab2):
		a.tab = TabJournal
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		a.working = "Loading entries"
		return a, tea.Batch(a.loadDashboard(), a.refresh())
	case key.Matches(msg, a.keys.Dismiss):
		a.session.Dismiss()
		return a, nil
	}

	if a.tab == TabJournal || key.Matches(msg, a.keys.New) {
		return a.handleJournalKey(msg)
	}
	return a, nil
}

func (a *App) handleJournalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		a.selectCursor()
	case key.Matches(msg, a.keys.Down):
		if a.cursor < a.session.Entries.Len() {
			a.cursor++
		}
		a.selectCursor()
	case key.Matches(msg, a.keys.New):
		a.cursor = 0
		a.selectCursor()
		if !a.idle() {
			return a, nil
		}
		return a, a.startEditing()
	case key.Matches(msg, a.keys.Select), key.Matches(msg, a.keys.Edit):
		if a.cursor == 0 && a.idle() {
			return a, a.startEditing()
		}
	case key.Matches(msg, a.keys.Generate):
		if a.cursor == 0 && a.idle() {
			a.working = "Generating summary"
			return a, a.generate()
		}
	case key.Matches(msg, a.keys.Save):
		if a.cursor == 0 && a.idle() {
			a.working = "Saving"
			return a, a.save()
		}
	case key.Matches(msg, a.keys.Delete):
		e := a.current()
		switch {
		case e == nil || !a.idle():
		case e.ID == "":
			a.hint = "This entry has no id and cannot be deleted"
		default:
			a.pendingDelete = e.ID
			a.mode = ModeConfirmDelete
		}
	case key.Matches(msg, a.keys.Chat):
		if err := a.session.OpenChat(); err != nil {
			a.hint = domain.UserMessage(err, "Select an entry to chat about")
			return a, nil
		}
		a.mode = ModeChat
		a.chatInput.Reset()
		a.syncChat()
		return a, a.chatInput.Focus()
	}
	return a, nil
}

func (a *App) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		a.editor.Blur()
		a.mode = ModeBrowse
		return a, nil
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	a.session.Draft.SetContent(a.editor.Value())
	return a, cmd
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		id := a.pendingDelete
		a.pendingDelete = ""
		a.mode = ModeBrowse
		a.working = "Deleting"
		return a, a.delete(id)
	case key.Matches(msg, a.keys.Cancel):
		a.pendingDelete = ""
		a.mode = ModeBrowse
	}
	return a, nil
}

func (a *App) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		a.session.CloseChat()
		a.chatInput.Blur()
		a.mode = ModeBrowse
		return a, nil
	case key.Matches(msg, a.keys.Send):
		text := a.chatInput.Value()
		if strings.TrimSpace(text) == "" || a.session.Chat.Busy() {
			return a, nil
		}
		a.chatInput.Reset()
		return a, a.sendChat(text)
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

func (a *App) startEditing() tea.Cmd {
	a.tab = TabJournal
	a.mode = ModeEdit
	if a.editor.Value() != a.session.Draft.Content() {
		a.editor.SetValue(a.session.Draft.Content())
	}
	return a.editor.Focus()
}

// current is the entry under the cursor, nil on the new-entry row
func (a *App) current() *domain.JournalEntry {
	if a.cursor == 0 {
		return nil
	}
	entries := a.session.Entries.Entries()
	if a.cursor-1 >= len(entries) {
		return nil
	}
	return &entries[a.cursor-1]
}

func (a *App) selectCursor() {
	if a.cursor == 0 {
		a.session.Select("")
		return
	}
	entries := a.session.Entries.Entries()
	if a.cursor-1 < len(entries) {
		a.session.Select(entries[a.cursor-1].ID)
	}
}

// clampCursor puts the cursor back on the selected entry after the list changed
func (a *App) clampCursor() {
	if sel := a.session.Selected(); sel != nil {
		a.cursor = a.indexOf(sel.ID)
	} else {
		a.cursor = 0
	}
}

func (a *App) indexOf(id string) int {
	if id == "" {
		return 0
	}
	for i, e := range a.session.Entries.Entries() {
		if e.ID == id {
			return i + 1
		}
	}
	return 0
}

func (a *App) idle() bool {
	return a.working == "" && !a.session.Busy()
}

func (a *App) resize(width, height int) {
	a.width, a.height = width, height
	a.ready = true

	editorWidth := width - listWidth - 8
	if editorWidth < 20 {
		editorWidth = 20
	}
	a.editor.SetWidth(editorWidth)
	a.editor.SetHeight(max(height/3, 5))

	a.chatView.Width = max(width-6, 20)
	a.chatView.Height = max(height-12, 5)
	a.chatInput.Width = max(width-10, 20)
	a.syncChat()
}

func (a *App) loadDashboard() tea.Cmd {
	ctx, backend, session, now := a.ctx, a.backend, a.session, a.now
	return func() tea.Msg {
		d, err := journal.LoadDashboard(ctx, backend, session, now())
		return dashboardMsg{Dashboard: d, Err: err}
	}
}

func (a *App) refresh() tea.Cmd {
	ctx, session := a.ctx, a.session
	return func() tea.Msg {
		return entriesMsg{Err: session.Refresh(ctx)}
	}
}

func (a *App) generate() tea.Cmd {
	ctx, session := a.ctx, a.session
	return func() tea.Msg {
		return generatedMsg{Err: session.Generate(ctx)}
	}
}

func (a *App) save() tea.Cmd {
	ctx, session := a.ctx, a.session
	return func() tea.Msg {
		entry, err := session.Save(ctx)
		return savedMsg{Entry: entry, Err: err}
	}
}

func (a *App) delete(id string) tea.Cmd {
	ctx, session := a.ctx, a.session
	return func() tea.Msg {
		return deletedMsg{ID: id, Err: session.Delete(ctx, id)}
	}
}

func (a *App) sendChat(text string) tea.Cmd {
	ctx, session := a.ctx, a.session
	return func() tea.Msg {
		reply, err := session.SendChat(ctx, text)
		return chatReplyMsg{Reply: reply, Err: err}
	}
}
