//go:build sqlite_fts5

package index

import (
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards_fts`).Scan(&count); err != nil {
		t.Fatalf("cards_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	cards := []CardRow{{Index: 0, Title: "FTS Card", Body: "Flashdeck provides powerful full-text search over cards."}}
	if err := db.UpsertDeck(DeckRow{Path: "fts.md", Checksum: "f1"}, cards, nil); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Deck != "fts.md" || results[0].Index != 0 {
		t.Errorf("hit = %+v", results[0])
	}
	// FTS5 snippet should contain bold markers.
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDeck(DeckRow{Path: "gone.md", Checksum: "g"}, []CardRow{{Index: 0, Body: "vanishing content"}}, nil)
	_ = db.DeleteDeck("gone.md")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Deck == "gone.md" {
			t.Error("deleted deck still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDeck(DeckRow{Path: "evo.md", Checksum: "1"}, []CardRow{{Index: 0, Title: "Old", Body: "original text"}}, nil)
	_ = db.UpsertDeck(DeckRow{Path: "evo.md", Checksum: "2"}, []CardRow{{Index: 0, Title: "New", Body: "replacement text"}}, nil)

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
