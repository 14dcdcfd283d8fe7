package wordbank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"speech-practice-service/internal/models"
)

// FileStore persists words in one flat JSON file shared by all callers.
// There is no per-owner scoping; every request sees the same list. This
// matches a single-tenant demo deployment.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given JSON file, creating
// parent directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("word bank file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create word bank dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) load() ([]models.Word, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read word bank file: %w", err)
	}
	var words []models.Word
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parse word bank file: %w", err)
	}
	return words, nil
}

func (s *FileStore) save(words []models.Word) error {
	data, err := json.MarshalIndent(words, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write word bank file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// List returns all words in the shared list; owner is ignored.
func (s *FileStore) List(ctx context.Context, owner string) ([]models.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add appends a word to the shared list with a freshly assigned id.
func (s *FileStore) Add(ctx context.Context, owner string, w models.Word) (models.Word, error) {
	if strings.TrimSpace(w.Word) == "" {
		return models.Word{}, ErrInvalidWord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	words, err := s.load()
	if err != nil {
		return models.Word{}, err
	}

	w.ID = uuid.NewString()
	words = append(words, w)
	if err := s.save(words); err != nil {
		return models.Word{}, err
	}
	return w, nil
}

// Remove deletes the word with the given id. Unknown ids are a no-op.
func (s *FileStore) Remove(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	words, err := s.load()
	if err != nil {
		return err
	}

	for i, w := range words {
		if w.ID == id {
			return s.save(append(words[:i], words[i+1:]...))
		}
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }
