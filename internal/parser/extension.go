package parser

import (
	"context"
	"fmt"

	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
)

// CardInput is what a card hook sees and returns.
type CardInput struct {
	Content     string
	Frontmatter map[string]any
}

// Extension is a named set of pre-parse hooks. Both hooks are optional.
//
// Hooks receive copies: TransformRawLines gets its own line slice and
// TransformCard a cloned front-matter map, so an extension list can be
// reused across decks and included fragments.
type Extension struct {
	Name string
	// TransformRawLines rewrites the lines of a file before it is split into cards.
	TransformRawLines func(ctx context.Context, lines []string) ([]string, error)
	// TransformCard rewrites one card after splitting. The returned value
	// replaces the card's content and front matter.
	TransformCard func(ctx context.Context, card CardInput) (CardInput, error)
}

// HeadmatterFunc picks the extensions for a file once its head front matter
// is known. It runs before any raw-line hook.
type HeadmatterFunc func(ctx context.Context, headmatter map[string]any, exts []Extension, filepath string) ([]Extension, error)

// ExtensionLoader supplies extensions for a document based on its head front matter.
type ExtensionLoader interface {
	Extensions(ctx context.Context, headmatter map[string]any, filepath string) ([]Extension, error)
}

// ExtensionLoaderFunc adapts a function to ExtensionLoader.
type ExtensionLoaderFunc func(ctx context.Context, headmatter map[string]any, filepath string) ([]Extension, error)

// Extensions calls f.
func (f ExtensionLoaderFunc) Extensions(ctx context.Context, headmatter map[string]any, filepath string) ([]Extension, error) {
	return f(ctx, headmatter, filepath)
}

// MergeExtensions appends extra to base, skipping extensions whose name is already present.
func MergeExtensions(base, extra []Extension) []Extension {
	out := make([]Extension, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]Extension{base, extra} {
		for _, e := range list {
			if e.Name != "" {
				if _, dup := seen[e.Name]; dup {
					continue
				}
				seen[e.Name] = struct{}{}
			}
			out = append(out, e)
		}
	}
	return out
}

// applyRawLines runs every raw-line hook in order, each on the previous one's output.
func applyRawLines(ctx context.Context, exts []Extension, lines []string) ([]string, error) {
	for _, e := range exts {
		if e.TransformRawLines == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := e.TransformRawLines(ctx, append([]string(nil), lines...))
		if err != nil {
			return nil, fmt.Errorf("parser: extension %q: transform raw lines: %w", e.Name, err)
		}
		lines = out
	}
	return lines, nil
}

// applyCard runs every card hook in order against card.
func applyCard(ctx context.Context, exts []Extension, card *models.CardBase) error {
	for _, e := range exts {
		if e.TransformCard == nil {
			continue
		}
		in := CardInput{Content: card.Content, Frontmatter: frontmatter.Clone(card.Frontmatter)}
		out, err := e.TransformCard(ctx, in)
		if err != nil {
			return fmt.Errorf("parser: extension %q: transform card: %w", e.Name, err)
		}
		card.Content = out.Content
		if out.Frontmatter != nil {
			card.Frontmatter = out.Frontmatter
		}
	}
	return nil
}
