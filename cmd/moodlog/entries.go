package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pbaille/moodlog/internal/domain"
	"github.com/pbaille/moodlog/internal/journal"
	"github.com/pbaille/moodlog/internal/mood"
	"github.com/pbaille/moodlog/internal/render"
	"github.com/pbaille/moodlog/internal/store"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var limit int
	var offline bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			var entries []domain.JournalEntry
			if offline {
				entries, err = cachedEntries(rt, limit)
				if err != nil {
					return err
				}
			} else {
				session := rt.session()
				if err := session.Refresh(cmd.Context()); err != nil {
					return noticeError(session, err)
				}
				entries = session.Entries.Entries()
				if len(entries) > limit {
					entries = entries[:limit]
				}
			}

			if len(entries) == 0 {
				fmt.Println("No entries yet. Start with: moodlog write")
				return nil
			}
			for _, e := range entries {
				printEntryLine(e)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().BoolVar(&offline, "offline", false, "read from the local cache instead of the backend")
	return cmd
}

func cachedEntries(rt *runtime, limit int) ([]domain.JournalEntry, error) {
	if rt.cache == nil {
		return nil, errors.New("entry cache is unavailable")
	}
	uid, err := rt.userID()
	if err != nil {
		return nil, err
	}
	if at, err := rt.cache.CachedAt(uid); err == nil && !at.IsZero() {
		fmt.Printf("(cached %s)\n", at.Local().Format("Jan 02 15:04"))
	}
	return rt.cache.ListEntries(uid, limit, 0)
}

func printEntryLine(e domain.JournalEntry) {
	score := "  "
	if e.HasScore() {
		score = fmt.Sprintf("%2d", *e.MoodScore)
	}
	fmt.Printf("%s %s  %s  %-20s %s\n",
		shortID(e.ID),
		mood.Emoji(e.MoodScore),
		score,
		render.Truncate(e.Title, 20),
		render.Preview(e.Content, 50),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return fmt.Sprintf("%-8s", id)
}

// findEntry resolves an id or a unique id prefix
func findEntry(entries []domain.JournalEntry, prefix string) (*domain.JournalEntry, error) {
	for i := range entries {
		if entries[i].ID == prefix {
			return &entries[i], nil
		}
	}

	var found *domain.JournalEntry
	for i := range entries {
		e := &entries[i]
		if strings.HasPrefix(e.ID, prefix) {
			if found != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			found = e
		}
	}
	if found == nil {
		return nil, domain.Validation("find entry", "Entry not found")
	}
	return found, nil
}

func showCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			var e *domain.JournalEntry
			if offline {
				e, err = cachedEntry(rt, args[0])
			} else {
				session := rt.session()
				if err := session.Refresh(cmd.Context()); err != nil {
					return noticeError(session, err)
				}
				e, err = findEntry(session.Entries.Entries(), args[0])
			}
			if err != nil {
				return err
			}

			band := mood.BandFor(e.MoodScore)
			fmt.Printf("%s\n", e.Title)
			fmt.Printf("ID:      %s\n", e.ID)
			fmt.Printf("Date:    %s\n", e.Date.Local().Format("Monday, January 2, 2006 15:04"))
			if e.HasScore() {
				fmt.Printf("Mood:    %s %d/10 (%s)\n", band.Emoji, *e.MoodScore, band.Label)
			} else {
				fmt.Printf("Mood:    %s unscored\n", band.Emoji)
			}
			if e.Summary != "" {
				fmt.Printf("Summary: %s\n", render.Markdown(e.Summary))
			}
			fmt.Printf("\n%s\n", e.Content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "read from the local cache instead of the backend")
	return cmd
}

// cachedEntry looks id up in the cache, falling back to a prefix match
func cachedEntry(rt *runtime, id string) (*domain.JournalEntry, error) {
	if rt.cache == nil {
		return nil, errors.New("entry cache is unavailable")
	}
	uid, err := rt.userID()
	if err != nil {
		return nil, err
	}
	return lookupCached(rt.cache, uid, id)
}

func lookupCached(cache *store.Store, uid, id string) (*domain.JournalEntry, error) {
	e, err := cache.GetEntry(uid, id)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	entries, err := cache.ListEntries(uid, -1, 0)
	if err != nil {
		return nil, err
	}
	return findEntry(entries, id)
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search cached entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.cache == nil {
				return errors.New("entry cache is unavailable")
			}
			uid, err := rt.userID()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			entries, err := rt.cache.SearchEntries(uid, query)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No cached entries match %q. Run 'moodlog list' to refresh the cache.\n", query)
				return nil
			}
			for _, e := range entries {
				printEntryLine(e)
			}
			return nil
		},
	}
}

func writeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "write [text]",
		Short: "Score a new entry and save it; reads stdin without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if content == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = string(data)
			}

			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			session := rt.session()
			session.Draft.SetContent(content)

			fmt.Print("Generating summary... ")
			if err := session.Generate(cmd.Context()); err != nil {
				fmt.Println("failed")
				return noticeError(session, err)
			}
			fmt.Println("done")

			score := session.Draft.MoodScore()
			fmt.Printf("Mood:    %s %d/10\n", mood.Emoji(score), *score)
			fmt.Printf("Summary: %s\n", render.Markdown(session.Draft.Summary()))

			if dryRun {
				return nil
			}

			entry, err := session.Save(cmd.Context())
			if err != nil {
				return noticeError(session, err)
			}
			fmt.Printf("%s (%s)\n", session.Notice().Text, entry.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "score only, do not save")
	return cmd
}

func deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(true)
			if err != nil {
				return err
			}
			defer rt.Close()

			session := rt.session()
			if err := session.Refresh(cmd.Context()); err != nil {
				return noticeError(session, err)
			}
			e, err := findEntry(session.Entries.Entries(), args[0])
			if err != nil {
				return err
			}

			if !yes {
				fmt.Printf("Delete %q from %s? This cannot be undone. [y/N] ", e.Title, e.Date.Local().Format("Jan 02, 2006"))
				answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Println("Cancelled")
					return nil
				}
			}

			if err := session.Delete(cmd.Context(), e.ID); err != nil {
				return noticeError(session, err)
			}
			fmt.Println(session.Notice().Text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

// noticeError prefers the session's user-facing message over the raw error
func noticeError(session *journal.Session, err error) error {
	if n := session.Notice(); n != nil && n.Level == journal.NoticeError {
		session.Dismiss()
		return fmt.Errorf("%s: %w", n.Text, err)
	}
	return err
}
