package index

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/flashdeck/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "flashdeck-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"decks", "cards", "entries"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	cards := []CardRow{
		{Index: 0, Title: "Intro", Level: 1, Source: "deck.md", Body: "Intro"},
		{Index: 1, Title: "Part", Level: 2, Source: "pages/part.md", Body: "Part body"},
	}
	if err := db.UpsertDeck(DeckRow{Path: "deck.md", Title: "Deck", Checksum: "abc123"}, cards, []string{"deck.md", "pages/part.md"}); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}
	cs, err := db.GetChecksum("deck.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}

	got, err := db.listCards("deck.md")
	if err != nil {
		t.Fatalf("listCards: %v", err)
	}
	if len(got) != 2 || got[1].Source != "pages/part.md" || got[1].Deck != "deck.md" {
		t.Errorf("cards = %+v", got)
	}
}

func TestDecksUsing(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDeck(DeckRow{Path: "a.md", Checksum: "1"}, nil, []string{"a.md", "shared.md"})
	_ = db.UpsertDeck(DeckRow{Path: "b.md", Checksum: "2"}, nil, []string{"b.md", "shared.md"})

	decks, err := db.DecksUsing("shared.md")
	if err != nil {
		t.Fatalf("DecksUsing: %v", err)
	}
	if len(decks) != 2 || decks[0] != "a.md" || decks[1] != "b.md" {
		t.Fatalf("decks = %v, want [a.md b.md]", decks)
	}
}

func TestDeleteDeck(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDeck(DeckRow{Path: "del.md", Checksum: "x"}, []CardRow{{Index: 0, Body: "body"}}, []string{"del.md", "frag.md"})

	if err := db.DeleteDeck("del.md"); err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted deck still has checksum %q", cs)
	}
	cards, _ := db.listCards("del.md")
	if len(cards) != 0 {
		t.Errorf("expected 0 cards after delete, got %d", len(cards))
	}
	decks, _ := db.DecksUsing("frag.md")
	if len(decks) != 0 {
		t.Errorf("expected 0 decks after delete, got %d", len(decks))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDeck(DeckRow{Path: "up.md", Title: "Old", Checksum: "1"},
		[]CardRow{{Index: 0, Title: "A"}, {Index: 1, Title: "B"}}, []string{"up.md", "x.md"})
	_ = db.UpsertDeck(DeckRow{Path: "up.md", Title: "New", Checksum: "2"},
		[]CardRow{{Index: 0, Title: "C"}}, []string{"up.md", "y.md"})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	cards, _ := db.listCards("up.md")
	if len(cards) != 1 || cards[0].Title != "C" {
		t.Errorf("cards = %+v, want only C", cards)
	}
	if decks, _ := db.DecksUsing("x.md"); len(decks) != 0 {
		t.Error("old entry should be removed on upsert")
	}
	if decks, _ := db.DecksUsing("y.md"); len(decks) != 1 {
		t.Error("new entry should exist")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDeck(DeckRow{Path: "s.md", Checksum: "1"}, []CardRow{
		{Index: 0, Title: "Other", Body: "nothing here"},
		{Index: 1, Title: "Search Me", Body: "uniqueword appears here"},
	}, nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Deck != "s.md" || results[0].Index != 1 {
		t.Errorf("search results = %+v, want 1 hit for s.md card 1", results)
	}
}

func sampleDoc() *models.Document {
	return &models.Document{
		Raw:      "# Intro\n\n---\nsrc: part.md\n---\n",
		Filepath: "deck.md",
		Config:   models.Config{Title: "Deck"},
		Entries:  []string{"deck.md", "part.md"},
		Cards: []models.Card{
			{Index: 0, CardBase: models.CardBase{Raw: "# Intro\n", Content: "# Intro", Title: "Intro", Level: 1}},
			{
				Index: 1,
				CardBase: models.CardBase{
					Raw:         "# Part\n\nsome **words**",
					Content:     "# Part\n\nsome **words**",
					Frontmatter: map[string]any{"layout": "center"},
					Title:       "Part",
					Level:       1,
				},
				Inclusion: &models.Inclusion{Source: models.SourceCard{
					CardBase: models.CardBase{Raw: "# Part\n\nsome **words**"},
					Filepath: "part.md",
				}},
			},
		},
	}
}

func TestRows(t *testing.T) {
	deck, cards := Rows(sampleDoc())
	if deck.Path != "deck.md" || deck.Title != "Deck" || deck.CardCount != 2 || deck.Checksum == "" {
		t.Errorf("deck = %+v", deck)
	}
	if cards[0].Source != "deck.md" || cards[1].Source != "part.md" {
		t.Errorf("sources = %q, %q", cards[0].Source, cards[1].Source)
	}
	if cards[1].Layout != "center" {
		t.Errorf("layout = %q", cards[1].Layout)
	}
	if cards[1].Body != "Part some words" {
		t.Errorf("body = %q", cards[1].Body)
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	db := testDB(t)
	doc := sampleDoc()

	changed, err := Sync(db, doc, quietLogger())
	if err != nil || !changed {
		t.Fatalf("first Sync = %v, %v; want indexed", changed, err)
	}
	changed, err = Sync(db, doc, quietLogger())
	if err != nil || changed {
		t.Fatalf("second Sync = %v, %v; want skipped", changed, err)
	}

	doc.Cards[1].Inclusion.Source.Raw = "# Part\n\nedited"
	changed, err = Sync(db, doc, quietLogger())
	if err != nil || !changed {
		t.Fatalf("Sync after fragment edit = %v, %v; want indexed", changed, err)
	}
	if decks, _ := db.DecksUsing("part.md"); len(decks) != 1 || decks[0] != "deck.md" {
		t.Errorf("decks using part.md = %v", decks)
	}
}
