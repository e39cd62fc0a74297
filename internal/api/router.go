package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/flashdeck/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Deck.
	r.Get("/deck", h.GetDeck)
	r.Post("/reload", h.Reload)
	r.Post("/format", h.Format)
	r.Get("/fonts", h.Fonts)

	// Cards.
	r.Get("/cards", h.ListCards)
	r.Get("/cards/{index}", h.GetCard)
	r.Put("/cards/{index}", h.UpdateCard)

	// Search.
	r.Get("/search", h.Search)

	return r
}
