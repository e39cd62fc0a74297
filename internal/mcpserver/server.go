// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes flashdeck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/flashdeck/internal/apperr"
	"github.com/starford/flashdeck/internal/deck"
	"github.com/starford/flashdeck/internal/deckservice"
)

const formatURI = "flashdeck://deck-format"

// Server wraps the MCP server with flashdeck tools.
type Server struct {
	mcp *server.MCPServer
	svc *deckservice.Service
}

// New creates a new MCP server with all flashdeck tools registered.
func New(svc *deckservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"flashdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_deck",
		mcp.WithDescription("Summary of the loaded deck: title, card count, included files, "+
			"detected features and the resolved configuration."),
	), s.getDeck)

	s.mcp.AddTool(mcp.NewTool("list_cards",
		mcp.WithDescription("List cards of the deck, optionally restricted to a 1-based range such as \"1,3-5\"."),
		mcp.WithString("range", mcp.Description("Range expression (empty for all cards)")),
	), s.listCards)

	s.mcp.AddTool(mcp.NewTool("read_card",
		mcp.WithDescription("Read one card by 0-based index, including its front matter, note, "+
			"source file and checksum."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based card index")),
	), s.readCard)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Full-text search through card titles and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("update_card",
		mcp.WithDescription("Replace the Markdown content and/or note of a card. Cards that were "+
			"included from another file are written back to that file. Read the format via "+
			"get_deck_format or the "+formatURI+" resource first."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based card index")),
		mcp.WithString("content", mcp.Description("New card body (without front matter)")),
		mcp.WithString("note", mcp.Description("New presenter note")),
		mcp.WithString("checksum", mcp.Description("Checksum from read_card; the update fails if the card changed since")),
	), s.updateCard)

	s.mcp.AddTool(mcp.NewTool("get_deck_format",
		mcp.WithDescription("Returns the Markdown deck format. "+
			"Call this before editing cards to keep the structure intact."),
	), s.getDeckFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Deck Format",
			mcp.WithResourceDescription("Markdown layout of a card deck: separators, front matter, notes and includes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDeckFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("card changed since it was read; read it again")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) getDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.Summary(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(sum), nil
}

func (s *Server) listCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards, err := s.svc.Cards(ctx, req.GetString("range", ""))
	if err != nil {
		return errorResult(err), nil
	}
	type item struct {
		Index    int    `json:"index"`
		Title    string `json:"title,omitempty"`
		Filepath string `json:"filepath"`
	}
	items := make([]item, len(cards))
	for i, c := range cards {
		items[i] = item{Index: c.Index, Title: c.Title, Filepath: c.Filepath}
	}
	return jsonResult(items), nil
}

func (s *Server) readCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.Card(ctx, idx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(card), nil
}

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return errorResult(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no cards found"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) updateCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var patch deck.CardPatch
	args := req.GetArguments()
	if v, ok := args["content"].(string); ok {
		patch.Content = &v
	}
	if v, ok := args["note"].(string); ok {
		patch.Note = &v
	}
	if patch.Empty() {
		return mcp.NewToolResultError("content or note is required"), nil
	}

	card, err := s.svc.UpdateCard(ctx, idx, patch, req.GetString("checksum", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated card %d in %s (checksum %s)", idx, card.Filepath, card.Checksum)), nil
}

func (s *Server) getDeckFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DeckFormatContract), nil
}

func (s *Server) readDeckFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DeckFormatContract,
		},
	}, nil
}
