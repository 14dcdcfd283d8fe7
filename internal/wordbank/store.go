// Package wordbank persists saved vocabulary words.
//
// Three interchangeable backends exist: an in-memory map, a flat JSON
// file (single shared list, no owner scoping) and SQLite (owner-scoped).
// The contract is identical regardless of backend: ids are assigned by
// the store and stable for the record's lifetime, words are never
// updated in place, and Remove is idempotent.
package wordbank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"speech-practice-service/internal/config"
	"speech-practice-service/internal/models"
)

// ErrInvalidWord is returned by Add for a word with no text.
var ErrInvalidWord = errors.New("word text is required")

// Store is the word bank contract.
type Store interface {
	// List returns the owner's words in insertion order.
	List(ctx context.Context, owner string) ([]models.Word, error)

	// Add stores a new word and returns it with its assigned id.
	Add(ctx context.Context, owner string, w models.Word) (models.Word, error)

	// Remove deletes a word by id. Removing an unknown id is a no-op.
	Remove(ctx context.Context, owner, id string) error

	// Close releases backend resources.
	Close() error
}

// Open constructs the backend selected by configuration.
func Open(cfg config.WordBankConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory", "":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.FilePath)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown word bank backend %q", cfg.Backend)
	}
}
