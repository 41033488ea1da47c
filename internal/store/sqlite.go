package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/moodlog/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when an entry is not in the cache
var ErrNotFound = errors.New("entry not cached")

// Store is the offline copy of each user's last loaded entries
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the cache database at dbPath
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceEntries swaps the user's snapshot for entries, keeping their order
func (s *Store) ReplaceEntries(userID string, entries []domain.JournalEntry) error {
	if userID == "" {
		return fmt.Errorf("replace entries: empty user id")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO entries
			(user_id, id, position, date, title, content, mood_score, summary, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC()
	for i, e := range entries {
		var score sql.NullInt64
		if e.HasScore() {
			score = sql.NullInt64{Int64: int64(*e.MoodScore), Valid: true}
		}
		if _, err := stmt.Exec(userID, e.ID, i, e.Date.UTC(), e.Title, e.Content, score, e.Summary, now); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

const selectEntry = "SELECT id, date, title, content, mood_score, summary FROM entries"

// GetEntry returns one cached entry. Entries cached without an id are
// only reachable through ListEntries.
func (s *Store) GetEntry(userID, id string) (*domain.JournalEntry, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRow(selectEntry+" WHERE user_id = ? AND id = ?", userID, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns cached entries newest first with pagination
func (s *Store) ListEntries(userID string, limit, offset int) ([]domain.JournalEntry, error) {
	rows, err := s.db.Query(
		selectEntry+" WHERE user_id = ? ORDER BY position LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return collect(rows)
}

// SearchEntries matches query against content, summary and title
func (s *Store) SearchEntries(userID, query string) ([]domain.JournalEntry, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.Query(
		selectEntry+` WHERE user_id = ?
			AND (content LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\')
			ORDER BY position`,
		userID, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	return collect(rows)
}

// CachedAt is when the user's snapshot was written; zero when there is none
func (s *Store) CachedAt(userID string) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRow("SELECT cached_at FROM entries WHERE user_id = ? LIMIT 1", userID).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cached at: %w", err)
	}
	return at, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var score sql.NullInt64
	if err := row.Scan(&e.ID, &e.Date, &e.Title, &e.Content, &score, &e.Summary); err != nil {
		return nil, err
	}
	if score.Valid {
		e.MoodScore = domain.IntPtr(int(score.Int64))
	}
	return &e, nil
}

func collect(rows *sql.Rows) ([]domain.JournalEntry, error) {
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
