package deckservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/starford/flashdeck/internal/apperr"
	"github.com/starford/flashdeck/internal/deck"
	"github.com/starford/flashdeck/internal/storage"
	"github.com/starford/flashdeck/internal/testutil"
)

const testDeck = "---\ntitle: Demo\nfonts:\n  sans: Inter\n---\n\n# Intro\n\n---\nsrc: part.md\n---\n\n---\n\n# End\n"

func newTestService(t *testing.T) (*Service, *storage.FS, string) {
	t.Helper()
	dir, store := testutil.TestDeck(t, map[string]string{
		"cards.md": testDeck,
		"part.md":  "# Part one\n\nglossary term\n\n---\n\n# Part two\n",
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := deck.NewLoader(store, deck.WithLogger(logger))
	path := filepath.Join(dir, "cards.md")
	return NewService(loader, testutil.TestDB(t), path, logger), store, dir
}

func TestSummary(t *testing.T) {
	svc, _, dir := newTestService(t)
	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Title != "Demo" || sum.CardCount != 4 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Entries) != 2 || sum.Entries[1] != filepath.Join(dir, "part.md") {
		t.Errorf("entries = %v", sum.Entries)
	}
}

func TestCards_Range(t *testing.T) {
	svc, _, _ := newTestService(t)
	cards, err := svc.Cards(context.Background(), "2-3")
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(cards) != 2 || cards[0].Title != "Part one" || cards[1].Number != 3 {
		t.Errorf("cards = %+v", cards)
	}
	if _, err := svc.Cards(context.Background(), "nope"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCard_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Card(context.Background(), 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMissingDeck(t *testing.T) {
	_, store := testutil.TestDeck(t, nil)
	svc := NewService(deck.NewLoader(store), nil, "missing.md", nil)
	if _, err := svc.Document(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateCard_Conflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	content := "# Changed"
	_, err := svc.UpdateCard(context.Background(), 3, deck.CardPatch{Content: &content}, "stale")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestUpdateCard_IncludedWritesFragment(t *testing.T) {
	svc, store, dir := newTestService(t)
	ctx := context.Background()

	before, err := svc.Card(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	content := "# Part two, revised"
	after, err := svc.UpdateCard(ctx, 2, deck.CardPatch{Content: &content}, before.Checksum)
	if err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	if after.Title != "Part two, revised" || after.Checksum == before.Checksum {
		t.Errorf("after = %+v", after)
	}

	frag, _ := store.Read(filepath.Join(dir, "part.md"))
	if !strings.Contains(string(frag), "# Part one") || !strings.Contains(string(frag), "revised") {
		t.Errorf("fragment = %q", frag)
	}
	root, _ := store.Read(filepath.Join(dir, "cards.md"))
	if string(root) != testDeck {
		t.Errorf("root changed: %q", root)
	}
}

func TestUpdateCard_ConcurrentReaders(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Document(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				cards, err := svc.Cards(ctx, "")
				if err != nil {
					t.Error(err)
					return
				}
				for _, c := range cards {
					_ = c.Title + c.Content + c.Checksum
				}
			}
		}()
	}

	for i := range 5 {
		content := fmt.Sprintf("# Intro %d", i)
		if _, err := svc.UpdateCard(ctx, 0, deck.CardPatch{Content: &content}, ""); err != nil {
			t.Errorf("UpdateCard %d: %v", i, err)
		}
		if _, err := svc.UpdateCard(ctx, 1, deck.CardPatch{Content: &content}, ""); err != nil {
			t.Errorf("UpdateCard included %d: %v", i, err)
		}
	}
	close(done)
	wg.Wait()

	card, err := svc.Card(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if card.Title != "Intro 4" {
		t.Errorf("title = %q, want Intro 4", card.Title)
	}
}

func TestUpdateCard_LogsSharedFragment(t *testing.T) {
	dir, store := testutil.TestDeck(t, map[string]string{
		"cards.md": testDeck,
		"other.md": "# Other\n\n---\nsrc: part.md\n---\n",
		"part.md":  "# Part one\n\n---\n\n# Part two\n",
	})
	db := testutil.TestDB(t)
	ctx := context.Background()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	loader := deck.NewLoader(store, deck.WithLogger(logger))
	other := NewService(loader, db, filepath.Join(dir, "other.md"), logger)
	if _, err := other.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	svc := NewService(loader, db, filepath.Join(dir, "cards.md"), logger)
	if _, err := svc.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	content := "# Part one, shared"
	if _, err := svc.UpdateCard(ctx, 1, deck.CardPatch{Content: &content}, ""); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "edited fragment is shared") || !strings.Contains(out, filepath.Join(dir, "other.md")) {
		t.Errorf("logs = %s", out)
	}
	if strings.Contains(out, "deck="+filepath.Join(dir, "cards.md")) {
		t.Errorf("own deck reported as sharing: %s", out)
	}
}

func TestReload_MissingDeckDropsIndex(t *testing.T) {
	svc, _, dir := newTestService(t)
	ctx := context.Background()
	if hits, err := svc.Search(ctx, "glossary", 10); err != nil || len(hits) != 1 {
		t.Fatalf("hits = %v, err = %v", hits, err)
	}

	if err := os.Remove(filepath.Join(dir, "cards.md")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Reload(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	hits, err := svc.db.Search("glossary", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("stale hits = %+v", hits)
	}
	if cs, _ := svc.db.GetChecksum(filepath.Join(dir, "cards.md")); cs != "" {
		t.Errorf("checksum = %q, want empty", cs)
	}
}

func TestSearch(t *testing.T) {
	svc, _, dir := newTestService(t)
	hits, err := svc.Search(context.Background(), "glossary", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Index != 1 || hits[0].Deck != filepath.Join(dir, "cards.md") {
		t.Errorf("hits = %+v", hits)
	}
	if _, err := svc.Search(context.Background(), "", 10); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestFormat(t *testing.T) {
	svc, store, dir := newTestService(t)
	if _, err := svc.Format(context.Background()); err != nil {
		t.Fatalf("Format: %v", err)
	}
	root, _ := store.Read(filepath.Join(dir, "cards.md"))
	if !strings.Contains(string(root), "src: part.md") {
		t.Errorf("format dropped the inclusion: %q", root)
	}
	if !strings.HasPrefix(string(root), "---\nfonts:\n  sans: Inter\ntitle: Demo\n---\n\n# Intro\n") {
		t.Errorf("root = %q", root)
	}
}

func TestFontsURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	url, err := svc.FontsURL(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "https://fonts.googleapis.com/css2?family=Inter:wght@") {
		t.Errorf("url = %q", url)
	}
}
