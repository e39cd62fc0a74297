package index

import "fmt"

// listCards returns the indexed cards of a deck in order.
func (db *DB) listCards(deck string) ([]CardRow, error) {
	rows, err := db.conn.Query(`
		SELECT deck, idx, title, level, layout, source, checksum, body
		FROM cards
		WHERE deck = ?
		ORDER BY idx
	`, deck)
	if err != nil {
		return nil, fmt.Errorf("index: list cards: %w", err)
	}
	defer rows.Close()

	var out []CardRow
	for rows.Next() {
		var c CardRow
		if err := rows.Scan(&c.Deck, &c.Index, &c.Title, &c.Level, &c.Layout, &c.Source, &c.Checksum, &c.Body); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
