package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
	"github.com/starford/flashdeck/internal/parser"
)

// ErrCyclicInclusion is returned when a `src` chain leads back to a file already being expanded.
var ErrCyclicInclusion = errors.New("cyclic inclusion")

const (
	keySrc         = "src"
	keyHide        = "hide"
	keySrcSequence = "srcSequence"
)

type resolver struct {
	loader *Loader
	root   string
	dir    string
	exts   []parser.Extension
}

// expand replaces every `src` placeholder in doc with the cards of the file
// it names. The cursor stays on the spliced cards, so a fragment's own
// placeholders are expanded in turn.
//
// Cards after the cursor with a non-nil Inclusion always belong to the root
// placeholder being expanded, since root cards right of the cursor are not
// expanded yet.
func (r *resolver) expand(ctx context.Context, doc *models.Document) error {
	entries := []string{r.root}
	addEntry := func(p string) {
		if !slices.Contains(entries, p) {
			entries = append(entries, p)
		}
	}

	for i := 0; i < len(doc.Cards); {
		base := doc.Cards[i]
		if !frontmatter.Truthy(base.Frontmatter[keySrc]) {
			i++
			continue
		}
		doc.Cards = slices.Delete(doc.Cards, i, i+1)

		src := frontmatter.String(base.Frontmatter[keySrc])
		target := r.resolve(base, src)

		if frontmatter.Truthy(base.Frontmatter[keyHide]) {
			addEntry(target)
			r.keepWriteBack(doc, i, base)
			continue
		}

		cards, raw, err := r.include(ctx, base, src, target)
		if err != nil {
			return err
		}
		doc.Features = doc.Features.Merge(parser.DetectFeatures(raw))
		addEntry(target)
		doc.Cards = slices.Insert(doc.Cards, i, cards...)
		if len(cards) == 0 {
			r.keepWriteBack(doc, i, base)
		}
	}

	parser.Reindex(doc.Cards)
	doc.Entries = entries
	return nil
}

// keepWriteBack preserves the root placeholder that base stood for after base
// was removed without leaving a card to carry it. The snapshot moves to the
// next card of the same inclusion, or becomes a write-back-only placeholder at
// position i when there is none.
func (r *resolver) keepWriteBack(doc *models.Document, i int, base models.Card) {
	var ph models.Placeholder
	switch {
	case base.Inclusion == nil:
		inline := base.CardBase
		inline.Frontmatter = frontmatter.Clone(base.Frontmatter)
		delete(inline.Frontmatter, keySrc)
		ph = models.Placeholder{Inline: inline, Src: frontmatter.String(base.Frontmatter[keySrc])}
	case base.Inclusion.Inline != nil:
		ph = models.Placeholder{Inline: *base.Inclusion.Inline, Src: base.Inclusion.InlineSrc}
	default:
		return
	}

	if base.Inclusion != nil && i < len(doc.Cards) {
		if next := doc.Cards[i].Inclusion; next != nil && next.Inline == nil {
			next.Inline = base.Inclusion.Inline
			next.InlineSrc = base.Inclusion.InlineSrc
			return
		}
	}
	ph.Before = i
	doc.Placeholders = append(doc.Placeholders, ph)
}

// resolve maps a `src` expression to a file path. A leading slash is
// relative to the root deck's directory; anything else is relative to the
// file the placeholder was written in.
func (r *resolver) resolve(base models.Card, src string) string {
	if rest, ok := strings.CutPrefix(src, "/"); ok {
		return filepath.Join(r.dir, rest)
	}
	if base.Inclusion != nil && base.Inclusion.Source.Filepath != "" {
		return filepath.Join(filepath.Dir(base.Inclusion.Source.Filepath), src)
	}
	return filepath.Join(r.dir, src)
}

// include parses target and turns its cards into included cards standing in
// for the placeholder base.
func (r *resolver) include(ctx context.Context, base models.Card, src, target string) ([]models.Card, string, error) {
	var chain []string
	from := r.root
	if base.Inclusion != nil {
		chain = base.Inclusion.Chain
		from = base.Inclusion.Source.Filepath
	}
	if target == r.root || slices.Contains(chain, target) {
		return nil, "", fmt.Errorf("deck: %s: src %q: %w", from, src, ErrCyclicInclusion)
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	r.loader.logger.Debug("loader: including fragment",
		slog.String("src", src),
		slog.String("path", target),
		slog.String("from", from))

	sub, raw, err := r.loader.parseFragment(ctx, target, r.exts)
	if err != nil {
		return nil, "", fmt.Errorf("deck: %s: include %q: %w", from, src, err)
	}

	placeholder := frontmatter.Clone(base.Frontmatter)
	delete(placeholder, keySrc)

	nested := frontmatter.Truthy(base.Frontmatter[keySrcSequence])
	sequence := src
	if nested {
		sequence = frontmatter.String(base.Frontmatter[keySrcSequence]) + "," + src
	}
	trail := append(slices.Clone(chain), target)

	cards := make([]models.Card, 0, len(sub.Cards))
	for k, sc := range sub.Cards {
		inc := &models.Inclusion{
			Source: models.SourceCard{
				CardBase: sc.CardBase,
				Filepath: target,
				Index:    sc.Index,
				Start:    sc.Start,
				End:      sc.End,
			},
			Src:   src,
			Chain: trail,
		}
		card := models.Card{CardBase: sc.CardBase, Start: sc.Start, End: sc.End, Inclusion: inc}

		if k == 0 {
			switch {
			case !nested:
				inline := base.CardBase
				inline.Frontmatter = frontmatter.Clone(placeholder)
				inc.Inline = &inline
				inc.InlineSrc = src
				card.Dirty = true
			case base.Inclusion != nil:
				inc.Inline = base.Inclusion.Inline
				inc.InlineSrc = base.Inclusion.InlineSrc
			}
		}

		card.Frontmatter = frontmatter.Merge(sc.Frontmatter, placeholder, map[string]any{keySrcSequence: sequence})
		cards = append(cards, card)
	}
	return cards, raw, nil
}
