package index

import (
	"fmt"
	"time"
)

// DeckRow represents a row in the decks table.
type DeckRow struct {
	Path      string
	Title     string
	Checksum  string
	CardCount int
	UpdatedAt time.Time
}

// CardRow represents a row in the cards table. Source is the file the card
// was written in, which differs from Deck for included cards.
type CardRow struct {
	Deck     string
	Index    int
	Title    string
	Level    int
	Layout   string
	Source   string
	Checksum string
	Body     string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Deck    string `json:"deck"`
	Index   int    `json:"index"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDeck replaces a deck, its cards, their FTS entries and the deck's
// contributing files within a transaction.
func (db *DB) UpsertDeck(d DeckRow, cards []CardRow, entries []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO decks (path, title, checksum, card_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			card_count = excluded.card_count,
			updated_at = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, len(cards), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert deck: %w", err)
	}

	// Replace cards: delete old then bulk insert.
	ftsDeleteDeck(tx, d.Path)
	_, _ = tx.Exec(`DELETE FROM cards WHERE deck = ?`, d.Path)
	if len(cards) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO cards (deck, idx, title, level, layout, source, checksum, body)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare card insert: %w", err)
		}
		defer stmt.Close()
		for _, c := range cards {
			if _, err := stmt.Exec(d.Path, c.Index, c.Title, c.Level, c.Layout, c.Source, c.Checksum, c.Body); err != nil {
				return fmt.Errorf("index: insert card %d: %w", c.Index, err)
			}
			// FTS insert (no-op when FTS5 tag is absent).
			if err := ftsInsert(tx, d.Path, c.Index, c.Title, c.Body); err != nil {
				return err
			}
		}
	}

	_, _ = tx.Exec(`DELETE FROM entries WHERE deck = ?`, d.Path)
	for _, file := range entries {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO entries (deck, file) VALUES (?, ?)`, d.Path, file); err != nil {
			return fmt.Errorf("index: insert entry: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteDeck removes a deck with its cards, FTS entries and contributing files.
func (db *DB) DeleteDeck(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteDeck(tx, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE deck = ?`, path)
	_, _ = tx.Exec(`DELETE FROM cards WHERE deck = ?`, path)
	_, _ = tx.Exec(`DELETE FROM decks WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a deck, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM decks WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// DecksUsing returns every indexed deck that the given file contributes to.
func (db *DB) DecksUsing(file string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT deck FROM entries WHERE file = ? ORDER BY deck`, file)
	if err != nil {
		return nil, fmt.Errorf("index: decks using: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
