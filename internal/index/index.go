package index

// CardIndex defines the interface for card indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type CardIndex interface {
	UpsertDeck(d DeckRow, cards []CardRow, entries []string) error
	DeleteDeck(path string) error
	GetChecksum(path string) (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	DecksUsing(file string) ([]string, error)
	Close() error
}

// Verify *DB satisfies CardIndex at compile time.
var _ CardIndex = (*DB)(nil)
