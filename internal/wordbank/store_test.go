package wordbank

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"speech-practice-service/internal/config"
	"speech-practice-service/internal/models"
)

// backends returns one fresh store per backend for contract tests.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "word-bank.json"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "wordbank.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestStore_AddListRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			added, err := store.Add(ctx, "user-1", models.Word{
				Word:        "Fluency",
				Translation: "流暢さ",
				Explanation: "the ability to speak smoothly",
			})
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if added.ID == "" {
				t.Fatal("store must assign an id")
			}

			words, err := store.List(ctx, "user-1")
			if err != nil {
				t.Fatalf("list: %v", err)
			}

			matches := 0
			for _, w := range words {
				if w.Word == "Fluency" && w.Translation == "流暢さ" &&
					w.Explanation == "the ability to speak smoothly" {
					matches++
					if w.ID != added.ID {
						t.Errorf("id changed between add and list: %s vs %s", added.ID, w.ID)
					}
				}
			}
			if matches != 1 {
				t.Errorf("expected the added word exactly once, found %d", matches)
			}
		})
	}
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			added, err := store.Add(ctx, "user-1", models.Word{Word: "bonjour"})
			if err != nil {
				t.Fatalf("add: %v", err)
			}

			if err := store.Remove(ctx, "user-1", added.ID); err != nil {
				t.Fatalf("first remove: %v", err)
			}
			// Second remove of the same id is a no-op, not an error.
			if err := store.Remove(ctx, "user-1", added.ID); err != nil {
				t.Fatalf("second remove: %v", err)
			}
			// Never-existing id is also a no-op.
			if err := store.Remove(ctx, "user-1", "no-such-id"); err != nil {
				t.Fatalf("remove unknown id: %v", err)
			}

			words, err := store.List(ctx, "user-1")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(words) != 0 {
				t.Errorf("expected empty list after remove, got %d words", len(words))
			}
		})
	}
}

func TestStore_InsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			for _, w := range []string{"un", "deux", "trois"} {
				if _, err := store.Add(ctx, "user-1", models.Word{Word: w}); err != nil {
					t.Fatalf("add %s: %v", w, err)
				}
			}

			words, err := store.List(ctx, "user-1")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			got := make([]string, len(words))
			for i, w := range words {
				got[i] = w.Word
			}
			want := []string{"un", "deux", "trois"}
			for i := range want {
				if i >= len(got) || got[i] != want[i] {
					t.Fatalf("expected order %v, got %v", want, got)
				}
			}
		})
	}
}

func TestStore_RejectsEmptyWord(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			_, err := store.Add(ctx, "user-1", models.Word{Word: "  "})
			if !errors.Is(err, ErrInvalidWord) {
				t.Errorf("expected ErrInvalidWord, got %v", err)
			}
		})
	}
}

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// memory and sqlite scope by owner; the file backend is one shared list.
	scoped := map[string]Store{"memory": NewMemoryStore()}
	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "wordbank.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	scoped["sqlite"] = sqliteStore

	for name, store := range scoped {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			if _, err := store.Add(ctx, "alice", models.Word{Word: "gato"}); err != nil {
				t.Fatalf("add: %v", err)
			}

			words, err := store.List(ctx, "bob")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(words) != 0 {
				t.Errorf("bob must not see alice's words, got %d", len(words))
			}
		})
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		wantErr bool
	}{
		{"memory", false},
		{"file", false},
		{"sqlite", false},
		{"", false},
		{"redis", true},
	}

	for _, tt := range tests {
		t.Run("backend_"+tt.backend, func(t *testing.T) {
			store, err := Open(config.WordBankConfig{
				Backend:    tt.backend,
				FilePath:   filepath.Join(dir, "wb-"+tt.backend+".json"),
				SQLitePath: filepath.Join(dir, "wb-"+tt.backend+".db"),
			})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for unknown backend")
				}
				return
			}
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			store.Close()
		})
	}
}
