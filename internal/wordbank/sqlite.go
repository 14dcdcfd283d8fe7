package wordbank

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"speech-practice-service/internal/models"
)

// SQLiteStore persists words in SQLite, scoped by owner identity.
type SQLiteStore struct {
	db *sql.DB
}

const wordSchema = `
CREATE TABLE IF NOT EXISTS words (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	word        TEXT NOT NULL,
	translation TEXT NOT NULL DEFAULT '',
	explanation TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_words_owner ON words(owner_id);
`

// NewSQLiteStore opens (and migrates) the word database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("word bank sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create word bank dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open word bank db: %w", err)
	}
	if _, err := db.Exec(wordSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate word bank db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// List returns the owner's words in insertion order.
func (s *SQLiteStore) List(ctx context.Context, owner string) ([]models.Word, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, word, translation, explanation
		 FROM words WHERE owner_id = ? ORDER BY created_at, rowid`, owner)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.Word, &w.Translation, &w.Explanation); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Add inserts a word with a freshly assigned id.
func (s *SQLiteStore) Add(ctx context.Context, owner string, w models.Word) (models.Word, error) {
	if strings.TrimSpace(w.Word) == "" {
		return models.Word{}, ErrInvalidWord
	}

	w.ID = uuid.NewString()
	w.OwnerID = owner

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO words (id, owner_id, word, translation, explanation) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.OwnerID, w.Word, w.Translation, w.Explanation)
	if err != nil {
		return models.Word{}, fmt.Errorf("insert word: %w", err)
	}
	return w, nil
}

// Remove deletes the word with the given id. Unknown ids are a no-op.
func (s *SQLiteStore) Remove(ctx context.Context, owner, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM words WHERE owner_id = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
