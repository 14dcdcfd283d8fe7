package wordbank

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"speech-practice-service/internal/models"
)

// MemoryStore keeps words in process memory, scoped per owner.
// Suitable for tests and single-process demo deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	words map[string][]models.Word // owner -> words in insertion order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		words: make(map[string][]models.Word),
	}
}

// List returns the owner's words in insertion order.
func (s *MemoryStore) List(ctx context.Context, owner string) ([]models.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Word, len(s.words[owner]))
	copy(out, s.words[owner])
	return out, nil
}

// Add stores a word with a freshly assigned id.
func (s *MemoryStore) Add(ctx context.Context, owner string, w models.Word) (models.Word, error) {
	if strings.TrimSpace(w.Word) == "" {
		return models.Word{}, ErrInvalidWord
	}

	w.ID = uuid.NewString()
	w.OwnerID = owner

	s.mu.Lock()
	s.words[owner] = append(s.words[owner], w)
	s.mu.Unlock()

	return w, nil
}

// Remove deletes the word with the given id. Unknown ids are a no-op.
func (s *MemoryStore) Remove(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.words[owner]
	for i, w := range list {
		if w.ID == id {
			s.words[owner] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
