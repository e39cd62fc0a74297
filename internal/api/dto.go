package api

import (
	"github.com/starford/flashdeck/internal/deck"
	"github.com/starford/flashdeck/internal/deckservice"
)

// UpdateCardRequest is the request body for updating a card. Omitted fields
// are left unchanged; frontmatter replaces the card's front matter.
type UpdateCardRequest = deck.CardPatch

// CardDetail is the full card response type (aliased from the domain layer).
type CardDetail = deckservice.CardDetail

// DeckSummary is the deck response type (aliased from the domain layer).
type DeckSummary = deckservice.Summary

// CardListResponse wraps a card selection.
type CardListResponse struct {
	Cards []CardDetail `json:"cards" validate:"required"`
	Total int          `json:"total" example:"12" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Deck    string `json:"deck" example:"slides.md" validate:"required"`
	Index   int    `json:"index" example:"3" validate:"required"`
	Title   string `json:"title" example:"Intro" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// FontsResponse describes the deck's resolved web fonts.
type FontsResponse struct {
	Provider string   `json:"provider" example:"google" validate:"required"`
	Webfonts []string `json:"webfonts" validate:"required"`
	URL      string   `json:"url,omitempty" example:"https://fonts.googleapis.com/css2?family=Inter:wght@200;400;600&display=swap"`
}

// FormatResponse is returned after the deck was rewritten.
type FormatResponse struct {
	Filepath  string `json:"filepath" validate:"required"`
	CardCount int    `json:"card_count" validate:"required"`
}
