package index

import (
	"log/slog"

	"github.com/starford/flashdeck/internal/checksum"
	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
	"github.com/starford/flashdeck/internal/parser"
)

// Sync brings the index entry of doc up to date. Decks whose root file and
// card sources are unchanged since the last sync are skipped. It reports whether the
// index was written.
func Sync(db CardIndex, doc *models.Document, logger *slog.Logger) (bool, error) {
	deck, cards := Rows(doc)

	stored, err := db.GetChecksum(deck.Path)
	if err != nil {
		return false, err
	}
	if stored == deck.Checksum {
		logger.Debug("sync: unchanged", slog.String("path", deck.Path))
		return false, nil
	}

	if err := db.UpsertDeck(deck, cards, doc.Entries); err != nil {
		return false, err
	}
	logger.Debug("sync: indexed",
		slog.String("path", deck.Path),
		slog.Int("cards", len(cards)))
	return true, nil
}

// Rows converts a loaded deck into index rows.
func Rows(doc *models.Document) (DeckRow, []CardRow) {
	cards := make([]CardRow, len(doc.Cards))
	sums := make([]string, len(doc.Cards))
	for i, c := range doc.Cards {
		source := doc.Filepath
		if c.Included() {
			source = c.Inclusion.Source.Filepath
		}
		sums[i] = checksum.Card(c)
		cards[i] = CardRow{
			Deck:     doc.Filepath,
			Index:    c.Index,
			Title:    c.Title,
			Level:    c.Level,
			Layout:   frontmatter.String(c.Frontmatter["layout"]),
			Source:   source,
			Checksum: sums[i],
			Body:     parser.PlainText(c.Content),
		}
	}
	return DeckRow{
		Path:      doc.Filepath,
		Title:     doc.Config.Title,
		Checksum:  checksum.Deck(doc, sums),
		CardCount: len(cards),
	}, cards
}
