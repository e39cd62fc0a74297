package parser

import (
	"strings"

	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
)

// Stringify renders the document back to the markdown of its root file.
//
// Included cards are not written, except the card of each root-level
// inclusion that carries its Inline placeholder, which is written in its
// place. Write-back-only placeholders are written at their positions. doc is
// not modified; dirty cards are regenerated on copies.
func Stringify(doc *models.Document) (string, error) {
	parts := make([]string, 0, len(doc.Cards)+len(doc.Placeholders))
	write := func(base models.CardBase, src string, placeholder bool) error {
		if placeholder && base.Dirty {
			if err := prettifyPlaceholder(&base, src); err != nil {
				return err
			}
		}
		s, err := StringifyCard(&base, len(parts))
		if err != nil {
			return err
		}
		parts = append(parts, s)
		return nil
	}
	writePlaceholders := func(before int, last bool) error {
		for _, ph := range doc.Placeholders {
			if ph.Before == before || (last && ph.Before > before) {
				if err := write(ph.Inline, ph.Src, true); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for i := range doc.Cards {
		if err := writePlaceholders(i, false); err != nil {
			return "", err
		}
		c := &doc.Cards[i]
		var err error
		switch {
		case !c.Included():
			err = write(c.CardBase, "", false)
		case c.Inclusion.Inline != nil:
			err = write(*c.Inclusion.Inline, c.Inclusion.InlineSrc, true)
		}
		if err != nil {
			return "", err
		}
	}
	if err := writePlaceholders(len(doc.Cards), true); err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(parts, "\n")) + "\n", nil
}

// StringifyCard renders a single card. idx is the card's position among the
// written cards; every card but the first is introduced by a separator
// unless its raw text already starts with one.
func StringifyCard(card *models.CardBase, idx int) (string, error) {
	if card.Dirty {
		if err := PrettifyCard(card); err != nil {
			return "", err
		}
	}
	raw := card.Raw
	if strings.HasPrefix(raw, "---") || idx == 0 {
		return raw, nil
	}
	if strings.HasPrefix(raw, "\n") {
		return "---\n" + raw, nil
	}
	return "---\n\n" + raw, nil
}

// PrettifyCard regenerates the card's raw text from its front matter,
// content and note in canonical layout.
func PrettifyCard(card *models.CardBase) error {
	card.Content = "\n" + strings.TrimSpace(card.Content) + "\n"
	raw := card.Content
	if len(card.Frontmatter) > 0 {
		y, err := frontmatter.Encode(card.Frontmatter)
		if err != nil {
			return err
		}
		raw = "---\n" + y + "\n---\n" + card.Content
	}
	if card.Note != "" {
		raw += "\n<!--\n" + strings.TrimSpace(card.Note) + "\n-->\n"
	} else {
		raw += "\n"
	}
	card.Raw = raw
	card.Dirty = false
	return nil
}

// Prettify canonicalizes every card of the document.
func Prettify(doc *models.Document) error {
	for i := range doc.Cards {
		if err := PrettifyCard(&doc.Cards[i].CardBase); err != nil {
			return err
		}
	}
	return nil
}

// prettifyPlaceholder regenerates an inline placeholder with its `src`
// restored, so the inclusion survives the rewrite.
func prettifyPlaceholder(inline *models.CardBase, src string) error {
	tmp := *inline
	tmp.Frontmatter = frontmatter.Clone(inline.Frontmatter)
	if src != "" {
		tmp.Frontmatter["src"] = src
	}
	if err := PrettifyCard(&tmp); err != nil {
		return err
	}
	inline.Raw = tmp.Raw
	inline.Content = tmp.Content
	inline.Dirty = false
	return nil
}
