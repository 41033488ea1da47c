package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pbaille/moodlog/internal/domain"
	"github.com/pbaille/moodlog/internal/journal"
	"github.com/pbaille/moodlog/internal/mood"
	"github.com/pbaille/moodlog/internal/render"
)

func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var body string
	switch {
	case a.mode == ModeChat:
		body = a.viewChat()
	case a.mode == ModeConfirmDelete:
		body = a.viewConfirm()
	case a.tab == TabJournal:
		body = a.viewJournal()
	default:
		body = a.viewDashboard()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.viewHeader(),
		a.viewNotice(),
		body,
		a.viewFooter(),
	)
}

func (a *App) viewHeader() string {
	t := a.theme
	var tabs []string
	for _, tab := range []Tab{TabDashboard, TabJournal} {
		label := fmt.Sprintf("%d %s", int(tab)+1, tab)
		if tab == a.tab {
			tabs = append(tabs, t.TabActive.Render(label))
		} else {
			tabs = append(tabs, t.TabInactive.Render(label))
		}
	}

	name := ""
	if id, err := a.session.Identity(); err == nil && id != nil {
		name = id.Name()
	}

	row := lipgloss.JoinHorizontal(lipgloss.Center,
		t.Logo.Render("◉ moodlog  "),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"  ",
		t.UserName.Render(name),
	)
	return t.Header.Width(max(a.width-2, 0)).Render(row)
}

func (a *App) viewNotice() string {
	t := a.theme
	if a.working != "" {
		return a.spinner.View() + " " + t.Muted.Render(a.working+"...")
	}
	if a.hint != "" {
		return t.Warning.Render(a.hint)
	}
	n := a.session.Notice()
	if n == nil {
		return ""
	}
	style := t.NoticeSuccess
	if n.Level == journal.NoticeError {
		style = t.NoticeError
	}
	return style.Render(n.Text) + t.Muted.Render("  (x to dismiss)")
}

func (a *App) viewFooter() string {
	t := a.theme
	var pairs [][2]string
	switch {
	case a.mode == ModeEdit:
		pairs = [][2]string{{"esc", "done"}}
	case a.mode == ModeChat:
		pairs = [][2]string{{"enter", "send"}, {"esc", "close"}}
	case a.mode == ModeConfirmDelete:
		pairs = [][2]string{{"y", "delete"}, {"n", "cancel"}}
	case a.tab == TabJournal && a.cursor == 0:
		pairs = [][2]string{{"↑↓", "entries"}, {"i", "write"}, {"g", "score"}, {"s", "save"}, {"tab", "dashboard"}, {"q", "quit"}}
	case a.tab == TabJournal:
		pairs = [][2]string{{"↑↓", "entries"}, {"n", "new"}, {"c", "chat"}, {"d", "delete"}, {"tab", "dashboard"}, {"q", "quit"}}
	default:
		pairs = [][2]string{{"tab", "journal"}, {"n", "new entry"}, {"r", "refresh"}, {"q", "quit"}}
	}

	var parts []string
	for _, p := range pairs {
		parts = append(parts, t.FooterKey.Render(p[0])+" "+t.FooterLabel.Render(p[1]))
	}
	return t.Footer.Width(max(a.width-2, 0)).Render(strings.Join(parts, ""))
}

func (a *App) viewDashboard() string {
	t := a.theme
	d := a.dashboard
	if d == nil {
		return a.spinner.View() + " Loading dashboard..."
	}

	var b strings.Builder
	b.WriteString(t.Title.Render(fmt.Sprintf("Hello, %s", d.UserName)))
	b.WriteString("\n")
	b.WriteString(t.Subtitle.Render(d.Today.Format("Monday, January 2, 2006")))
	b.WriteString("\n\n")

	current := t.Muted.Render("no scores yet")
	if d.Current != nil {
		current = moodStyle(d.Current.Band.Color).Render(fmt.Sprintf("%s %d/10", d.Current.Band.Emoji, d.Current.Score))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		t.Panel.Width(24).Render(t.Label.Render("Current mood")+"\n"+current),
		t.Panel.Width(24).Render(t.Label.Render("Mood trend")+"\n"+t.Value.Render(trendArrow(d.Trend)+" "+d.Trend.Title())),
		t.Panel.Width(24).Render(t.Label.Render("Total entries")+"\n"+t.Value.Render(fmt.Sprint(d.Total))),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	b.WriteString(t.Label.Render("Mood over your last entries"))
	b.WriteString("\n")
	if len(d.Graph) == 0 {
		b.WriteString(t.Muted.Render("Write your first entry to see a graph."))
	} else {
		b.WriteString(viewGraph(d.Graph))
	}
	b.WriteString("\n\n")

	b.WriteString(t.Label.Render("Recent entries"))
	b.WriteString("\n")
	if len(d.Recent) == 0 {
		b.WriteString(t.Muted.Render("No entries yet."))
	}
	for _, e := range d.Recent {
		b.WriteString(fmt.Sprintf("%s %s  %s  %s\n",
			mood.Emoji(e.MoodScore),
			t.Value.Render(e.Title),
			t.Muted.Render(e.Date.Format("Jan 02")),
			render.Preview(e.Summary, 50),
		))
	}
	return b.String()
}

// viewGraph draws one colored column per point, labelled with its date
func viewGraph(points []mood.Point) string {
	var bars, labels []string
	for _, p := range points {
		cell := mood.Sparkline([]mood.Point{p})
		bars = append(bars, moodStyle(p.Color).Render(fmt.Sprintf("%-7s", strings.Repeat(cell, 3))))
		labels = append(labels, fmt.Sprintf("%-7s", p.Label))
	}
	return strings.Join(bars, "") + "\n" + strings.Join(labels, "")
}

func trendArrow(t mood.Trend) string {
	switch t {
	case mood.TrendImproving:
		return "↗"
	case mood.TrendDeclining:
		return "↘"
	default:
		return "→"
	}
}

func (a *App) viewJournal() string {
	t := a.theme
	height := max(a.height-8, 5)

	var list strings.Builder
	list.WriteString(a.listRow(0, "+ New entry"))
	for i, e := range a.session.Entries.Entries() {
		row := fmt.Sprintf("%s %s %s", mood.Emoji(e.MoodScore), render.Truncate(e.Title, 16), e.Date.Format("Jan 02"))
		list.WriteString(a.listRow(i+1, row))
	}
	listPanel := t.Panel.Width(listWidth).Height(height).Render(list.String())

	var detail string
	if e := a.current(); e != nil {
		detail = a.viewEntry(*e)
	} else {
		detail = a.viewDraft()
	}
	detailStyle := t.Panel
	if a.mode == ModeEdit {
		detailStyle = t.PanelFocus
	}
	detailPanel := detailStyle.Width(max(a.width-listWidth-6, 20)).Height(height).Render(detail)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
}

func (a *App) listRow(index int, text string) string {
	t := a.theme
	if index == a.cursor {
		return t.ListCursor.Render("▸ ") + t.ListItemActive.Render(text) + "\n"
	}
	return t.ListItem.Render(text) + "\n"
}

func (a *App) viewEntry(e domain.JournalEntry) string {
	t := a.theme
	band := mood.BandFor(e.MoodScore)
	score := "unscored"
	if e.HasScore() {
		score = fmt.Sprintf("%d/10", *e.MoodScore)
	}

	var b strings.Builder
	b.WriteString(t.Title.Render(e.Title))
	b.WriteString("\n")
	b.WriteString(t.Muted.Render(e.Date.Format("January 2, 2006 15:04")))
	b.WriteString("\n\n")
	b.WriteString(t.Label.Render("Mood: ") + moodStyle(band.Color).Render(band.Emoji+" "+score))
	b.WriteString("\n")
	if e.Summary != "" {
		b.WriteString(t.Label.Render("Summary: ") + e.Summary)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(e.Content)
	return b.String()
}

func (a *App) viewDraft() string {
	t := a.theme
	d := a.session.Draft

	var b strings.Builder
	b.WriteString(t.Title.Render("New entry"))
	b.WriteString("\n")
	b.WriteString(a.editor.View())
	b.WriteString("\n\n")

	if score := d.MoodScore(); score != nil {
		band := mood.BandFor(score)
		b.WriteString(t.Label.Render("Mood: ") + moodStyle(band.Color).Render(fmt.Sprintf("%s %d/10", band.Emoji, *score)))
		b.WriteString("\n")
		b.WriteString(t.Label.Render("Summary: ") + render.Markdown(d.Summary()))
		b.WriteString("\n")
		if d.Stale() {
			b.WriteString(t.Warning.Render("The text changed since it was scored. Press g to score it again."))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(t.Muted.Render("Press g to get a mood score and summary, then s to save."))
	}
	return b.String()
}

func (a *App) viewConfirm() string {
	t := a.theme
	title := a.pendingDelete
	if e, ok := a.session.Entries.Get(a.pendingDelete); ok {
		title = e.Title
	}
	box := t.Modal.Render(
		t.ModalTitle.Render("Delete entry?") + "\n" +
			fmt.Sprintf("%q will be deleted. This cannot be undone.", title) + "\n\n" +
			t.FooterKey.Render("y") + " delete   " + t.FooterKey.Render("n") + " cancel",
	)
	return lipgloss.Place(max(a.width, 1), max(a.height-6, 1), lipgloss.Center, lipgloss.Center, box)
}

func (a *App) viewChat() string {
	t := a.theme
	title := "Chat"
	if e, ok := a.session.Entries.Get(a.session.Chat.EntryID()); ok {
		title = "Chat about " + e.Title
	}

	status := ""
	if a.session.Chat.Busy() {
		status = a.spinner.View() + " " + t.Muted.Render("Thinking...")
	}

	return t.PanelFocus.Width(max(a.width-4, 20)).Render(lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render(title),
		a.chatView.View(),
		status,
		a.chatInput.View(),
	))
}

// syncChat copies the transcript into the viewport
func (a *App) syncChat() {
	t := a.theme
	width := max(a.chatView.Width-2, 10)
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for _, m := range a.session.Chat.Transcript() {
		if m.Sender == domain.SenderUser {
			b.WriteString(t.ChatUser.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(m.Message))
		} else {
			b.WriteString(t.ChatAssistant.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(render.Markdown(m.Message)))
		}
		b.WriteString("\n\n")
	}
	a.chatView.SetContent(b.String())
	a.chatView.GotoBottom()
}
