// Package deckservice holds the currently loaded deck and coordinates the
// loader, storage and card index behind the API and MCP surfaces.
package deckservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/starford/flashdeck/internal/apperr"
	"github.com/starford/flashdeck/internal/checksum"
	"github.com/starford/flashdeck/internal/deck"
	"github.com/starford/flashdeck/internal/deckconfig"
	"github.com/starford/flashdeck/internal/index"
	"github.com/starford/flashdeck/internal/models"
	"github.com/starford/flashdeck/internal/parser"
)

// CardDetail is one card with the checksum and file used for optimistic updates.
type CardDetail struct {
	models.Card
	// Number is the 1-based position used by range expressions.
	Number   int    `json:"number"`
	Filepath string `json:"filepath"`
	Checksum string `json:"checksum"`
}

// Summary is a lightweight view of the loaded deck.
type Summary struct {
	Filepath  string              `json:"filepath"`
	Title     string              `json:"title"`
	CardCount int                 `json:"card_count"`
	Entries   []string            `json:"entries"`
	Features  models.FeatureFlags `json:"features"`
	Config    models.Config       `json:"config"`
}

// Service coordinates loader and index operations for a single deck.
type Service struct {
	mu     sync.RWMutex
	loader *deck.Loader
	db     index.CardIndex
	path   string
	doc    *models.Document
	logger *slog.Logger
}

// NewService creates a new deck service for the deck at path. db may be nil,
// in which case search is unavailable.
func NewService(loader *deck.Loader, db index.CardIndex, path string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{loader: loader, db: db, path: path, logger: logger}
}

// Path returns the deck entry file.
func (s *Service) Path() string { return s.path }

// Reload re-reads the deck from storage and refreshes the index.
func (s *Service) Reload(ctx context.Context) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Service) reloadLocked(ctx context.Context) (*models.Document, error) {
	doc, err := s.loader.Load(ctx, s.path)
	if err != nil {
		err = mapErr(err)
		if errors.Is(err, apperr.ErrNotFound) {
			s.dropLocked()
		}
		return nil, err
	}
	s.setLocked(doc)
	return doc, nil
}

// dropLocked forgets a deck whose entry file is gone, including its index rows.
func (s *Service) dropLocked() {
	s.doc = nil
	if s.db == nil {
		return
	}
	if err := s.db.DeleteDeck(s.path); err != nil {
		s.logger.Warn("deckservice: index delete failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
	}
}

// setLocked swaps in doc and syncs the index. Index failures are logged, not returned.
func (s *Service) setLocked(doc *models.Document) {
	s.doc = doc
	if s.db == nil {
		return
	}
	if _, err := index.Sync(s.db, doc, s.logger); err != nil {
		s.logger.Warn("deckservice: index sync failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
	}
}

// Document returns the loaded deck, loading it on first use.
func (s *Service) Document(ctx context.Context) (*models.Document, error) {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if doc != nil {
		return doc, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil {
		return s.doc, nil
	}
	return s.reloadLocked(ctx)
}

// Summary describes the loaded deck.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Filepath:  doc.Filepath,
		Title:     doc.Config.Title,
		CardCount: len(doc.Cards),
		Entries:   nonNilSlice(doc.Entries),
		Features:  doc.Features,
		Config:    doc.Config,
	}, nil
}

// Cards returns the cards selected by a 1-based range expression ("" for all).
func (s *Service) Cards(ctx context.Context, expr string) ([]CardDetail, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	nums, err := parser.ParseRange(len(doc.Cards), expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	out := make([]CardDetail, 0, len(nums))
	for _, n := range nums {
		out = append(out, detail(doc, n-1))
	}
	return out, nil
}

// Card returns the card at the 0-based index.
func (s *Service) Card(ctx context.Context, idx int) (*CardDetail, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(doc.Cards) {
		return nil, apperr.ErrNotFound
	}
	d := detail(doc, idx)
	return &d, nil
}

// UpdateCard applies patch with optimistic concurrency: a non-empty ifMatch
// must equal the card's current checksum.
func (s *Service) UpdateCard(ctx context.Context, idx int, patch deck.CardPatch, ifMatch string) (*CardDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	if doc == nil {
		var err error
		if doc, err = s.reloadLocked(ctx); err != nil {
			return nil, err
		}
	}
	if idx < 0 || idx >= len(doc.Cards) {
		return nil, apperr.ErrNotFound
	}
	if ifMatch != "" && ifMatch != detail(doc, idx).Checksum {
		return nil, apperr.ErrConflict
	}

	updated, err := s.loader.UpdateCard(ctx, doc, idx, patch)
	if err != nil {
		// The files may be out of step with doc now; read them back on next use.
		s.doc = nil
		return nil, mapErr(err)
	}
	if c := doc.Cards[idx]; c.Included() {
		s.logShared(c.Inclusion.Source.Filepath)
	}
	s.setLocked(updated)
	if idx >= len(updated.Cards) {
		return nil, apperr.ErrNotFound
	}
	d := detail(updated, idx)
	return &d, nil
}

// logShared reports the other indexed decks an edited fragment also feeds.
func (s *Service) logShared(file string) {
	if s.db == nil {
		return
	}
	decks, err := s.db.DecksUsing(file)
	if err != nil {
		s.logger.Warn("deckservice: shared fragment lookup failed",
			slog.String("file", file),
			slog.String("error", err.Error()))
		return
	}
	for _, d := range decks {
		if d == s.path {
			continue
		}
		s.logger.Info("deckservice: edited fragment is shared",
			slog.String("file", file),
			slog.String("deck", d))
	}
}

// Format rewrites the root file in canonical layout and reloads it.
func (s *Service) Format(ctx context.Context) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loader.Load(ctx, s.path)
	if err != nil {
		return nil, mapErr(err)
	}
	if err := parser.Prettify(doc); err != nil {
		return nil, err
	}
	if err := s.loader.Save(doc, s.path); err != nil {
		return nil, mapErr(err)
	}
	return s.reloadLocked(ctx)
}

// Search delegates full-text search to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, errors.New("deckservice: search index not configured")
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", apperr.ErrInvalidInput)
	}
	if _, err := s.Document(ctx); err != nil {
		return nil, err
	}
	return s.db.Search(query, limit)
}

// FontsURL returns the Google Fonts stylesheet URL for the deck, or "" when
// the deck does not use the Google provider.
func (s *Service) FontsURL(ctx context.Context) (string, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return "", err
	}
	if doc.Config.Fonts.Provider != deckconfig.ProviderGoogle {
		return "", nil
	}
	return deckconfig.GoogleFontsURL(doc.Config.Fonts), nil
}

func detail(doc *models.Document, idx int) CardDetail {
	c := doc.Cards[idx]
	path := doc.Filepath
	if c.Included() {
		path = c.Inclusion.Source.Filepath
	}
	return CardDetail{
		Card:     c,
		Number:   idx + 1,
		Filepath: path,
		Checksum: checksum.Card(c),
	}
}

// mapErr converts storage misses into apperr.ErrNotFound, keeping the message.
func mapErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w: %v", apperr.ErrNotFound, err)
	}
	return err
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
