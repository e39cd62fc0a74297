package storage

import (
	"fmt"
	"io/fs"
	"path"
	"sync"
)

// Memory is an in-process Provider keyed by slash-cleaned path. It backs
// tests and decks assembled without a file system.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns a Memory provider seeded with files.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string][]byte, len(files))}
	for p, content := range files {
		m.files[path.Clean(p)] = []byte(content)
	}
	return m
}

// Read returns a copy of the stored bytes.
func (m *Memory) Read(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path.Clean(p)]
	if !ok {
		return nil, fmt.Errorf("storage: read %s: %w", p, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// Write stores a copy of content.
func (m *Memory) Write(p string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(p)] = append([]byte(nil), content...)
	return nil
}
