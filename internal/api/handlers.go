package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/flashdeck/internal/deckservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

// cardIndex extracts the 0-based card index from the URL.
func cardIndex(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	return n, err == nil && n >= 0
}

// GetDeck handles GET /api/deck.
//
//	@Summary		Get the loaded deck with its resolved configuration
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	DeckSummary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/deck [get]
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		writeServiceError(w, "get deck", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Reload handles POST /api/reload.
//
//	@Summary		Re-read the deck and its fragments from storage
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	DeckSummary
//	@Security		BearerAuth
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Reload(r.Context()); err != nil {
		writeServiceError(w, "reload", err)
		return
	}
	h.GetDeck(w, r)
}

// Format handles POST /api/format.
//
//	@Summary		Rewrite the deck file in canonical layout
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	FormatResponse
//	@Security		BearerAuth
//	@Router			/format [post]
func (h *Handler) Format(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Format(r.Context())
	if err != nil {
		writeServiceError(w, "format", err)
		return
	}
	writeJSON(w, http.StatusOK, FormatResponse{Filepath: doc.Filepath, CardCount: len(doc.Cards)})
}

// Fonts handles GET /api/fonts.
//
//	@Summary		Get the deck's resolved web fonts
//	@Tags			deck
//	@Produce		json
//	@Success		200	{object}	FontsResponse
//	@Security		BearerAuth
//	@Router			/fonts [get]
func (h *Handler) Fonts(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		writeServiceError(w, "fonts", err)
		return
	}
	url, err := h.svc.FontsURL(r.Context())
	if err != nil {
		writeServiceError(w, "fonts", err)
		return
	}
	fonts := sum.Config.Fonts
	writeJSON(w, http.StatusOK, FontsResponse{
		Provider: fonts.Provider,
		Webfonts: nonNil(fonts.Webfonts),
		URL:      url,
	})
}

// ListCards handles GET /api/cards.
//
//	@Summary		List cards, optionally restricted to a range
//	@Tags			cards
//	@Produce		json
//	@Param			range	query		string	false	"1-based range, e.g. 1,3-5"
//	@Success		200		{object}	CardListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("range")
	cards, err := h.svc.Cards(r.Context(), expr)
	if err != nil {
		writeServiceError(w, "list cards", err, slog.String("range", expr))
		return
	}
	writeJSON(w, http.StatusOK, CardListResponse{Cards: cards, Total: len(cards)})
}

// GetCard handles GET /api/cards/{index}.
//
//	@Summary		Get a single card by 0-based index
//	@Tags			cards
//	@Produce		json
//	@Param			index	path		int	true	"Card index"
//	@Success		200		{object}	CardDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{index} [get]
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	idx, ok := cardIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be a non-negative integer"))
		return
	}
	card, err := h.svc.Card(r.Context(), idx)
	if err != nil {
		writeServiceError(w, "get card", err, slog.Int("index", idx))
		return
	}
	writeCard(w, card)
}

// UpdateCard handles PUT /api/cards/{index}.
//
//	@Summary		Update a card with optimistic concurrency
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			index		path	int					true	"Card index"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateCardRequest	true	"Card edit"
//	@Success		200		{object}	CardDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{index} [put]
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	idx, ok := cardIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be a non-negative integer"))
		return
	}

	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Empty() {
		writeJSON(w, http.StatusBadRequest, errorBody("content, frontmatter or note is required"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	card, err := h.svc.UpdateCard(r.Context(), idx, req, ifMatch)
	if err != nil {
		writeServiceError(w, "update card", err, slog.Int("index", idx))
		return
	}
	writeCard(w, card)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across cards
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Deck: hit.Deck, Index: hit.Index, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
