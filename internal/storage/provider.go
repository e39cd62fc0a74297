// Package storage defines the file access used to load and save decks.
package storage

// Provider is the interface for deck file operations.
//
// Paths may be absolute or relative; implementations resolve relative paths
// against their own root. A missing file yields an error wrapping
// fs.ErrNotExist.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
}
