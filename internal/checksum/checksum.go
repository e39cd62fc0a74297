// Package checksum computes the content hashes used for ETags and index freshness.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/starford/flashdeck/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Card hashes the text a card was read from: the fragment card for included
// cards, the card's own raw text otherwise.
func Card(c models.Card) string {
	if c.Included() {
		return Sum([]byte(c.Inclusion.Source.Raw))
	}
	return Sum([]byte(c.Raw))
}

// Deck hashes the root text of doc together with the given card checksums,
// so an edit to any included fragment changes the result.
func Deck(doc *models.Document, cardSums []string) string {
	return Sum([]byte(doc.Raw + "\n" + strings.Join(cardSums, "\n")))
}
