// Package recordings persists finished session artifacts: the raw audio
// on disk and a metadata row in SQLite.
package recordings

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"speech-practice-service/internal/models"
)

// Store writes audio artifacts and their metadata.
type Store struct {
	dir string
	db  *sql.DB
}

const recordingSchema = `
CREATE TABLE IF NOT EXISTS recordings (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	transcript TEXT NOT NULL,
	reply      TEXT NOT NULL DEFAULT '',
	audio_path TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recordings_owner ON recordings(owner_id);
`

// New opens the recordings store, creating the audio directory and
// migrating the metadata database.
func New(dir, dbPath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recordings dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create recordings db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open recordings db: %w", err)
	}
	if _, err := db.Exec(recordingSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate recordings db: %w", err)
	}
	return &Store{dir: dir, db: db}, nil
}

// SaveAudio writes raw audio bytes to the recordings directory and
// returns the file path. Files are named by creation time like the
// original artifact layout.
func (s *Store) SaveAudio(audio []byte, ext string) (string, error) {
	if ext == "" {
		ext = "webm"
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%d.%s", time.Now().UnixMilli(), ext))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return path, nil
}

// Save persists one session's artifacts: audio (if any) plus a metadata
// row containing transcript, audio reference and the last AI reply.
func (s *Store) Save(ctx context.Context, rec models.Recording, audio []byte) (models.Recording, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if len(audio) > 0 && rec.AudioPath == "" {
		path, err := s.SaveAudio(audio, "webm")
		if err != nil {
			return models.Recording{}, err
		}
		rec.AudioPath = path
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recordings (id, owner_id, transcript, reply, audio_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.Transcript, rec.Reply, rec.AudioPath, rec.CreatedAt)
	if err != nil {
		return models.Recording{}, fmt.Errorf("insert recording: %w", err)
	}
	return rec, nil
}

// List returns the owner's recordings, newest first.
func (s *Store) List(ctx context.Context, owner string) ([]models.Recording, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, transcript, reply, audio_path, created_at
		 FROM recordings WHERE owner_id = ? ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var out []models.Recording
	for rows.Next() {
		var r models.Recording
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Transcript, &r.Reply, &r.AudioPath, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the metadata database.
func (s *Store) Close() error { return s.db.Close() }
