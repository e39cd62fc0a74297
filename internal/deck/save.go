package deck

import (
	"context"
	"fmt"
	"slices"

	"github.com/starford/flashdeck/internal/apperr"
	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
	"github.com/starford/flashdeck/internal/parser"
)

// CardPatch describes an edit to one card. Nil fields are left unchanged;
// a non-nil Frontmatter replaces the card's front matter.
type CardPatch struct {
	Content     *string        `json:"content,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Note        *string        `json:"note,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p CardPatch) Empty() bool {
	return p.Content == nil && p.Frontmatter == nil && p.Note == nil
}

func (p CardPatch) apply(card *models.CardBase) {
	if p.Content != nil {
		card.Content = *p.Content
	}
	if p.Frontmatter != nil {
		card.Frontmatter = frontmatter.Clone(p.Frontmatter)
	}
	if p.Note != nil {
		card.Note = *p.Note
	}
	card.Dirty = true
}

// Save writes the root file of doc to path, or to doc.Filepath when path is empty.
func (l *Loader) Save(doc *models.Document, path string) error {
	if path == "" {
		path = doc.Filepath
	}
	if path == "" {
		return fmt.Errorf("deck: save: %w: no target path", apperr.ErrInvalidInput)
	}
	out, err := parser.Stringify(doc)
	if err != nil {
		return fmt.Errorf("deck: save %s: %w", path, err)
	}
	if err := l.store.Write(path, []byte(out)); err != nil {
		return fmt.Errorf("deck: save %s: %w", path, err)
	}
	return nil
}

// SaveExternalCard writes a single card as the whole content of its file.
func (l *Loader) SaveExternalCard(card models.CardWithPath) error {
	out, err := parser.StringifyCard(&card.CardBase, 0)
	if err != nil {
		return fmt.Errorf("deck: save card %s: %w", card.Filepath, err)
	}
	if err := l.store.Write(card.Filepath, []byte(out)); err != nil {
		return fmt.Errorf("deck: save card %s: %w", card.Filepath, err)
	}
	return nil
}

// UpdateCard applies patch to the card at index and persists it, then
// reloads the deck. Cards of the root file are saved through the root;
// included cards rewrite the fragment they came from, keeping its other cards.
// doc itself is never modified, so it may be shared with concurrent readers.
func (l *Loader) UpdateCard(ctx context.Context, doc *models.Document, index int, patch CardPatch) (*models.Document, error) {
	if index < 0 || index >= len(doc.Cards) {
		return nil, fmt.Errorf("deck: card %d: %w", index, apperr.ErrNotFound)
	}
	if patch.Empty() {
		return nil, fmt.Errorf("deck: card %d: %w: empty patch", index, apperr.ErrInvalidInput)
	}

	card := doc.Cards[index]
	if !card.Included() {
		edited := *doc
		edited.Cards = slices.Clone(doc.Cards)
		patch.apply(&edited.Cards[index].CardBase)
		if err := l.Save(&edited, doc.Filepath); err != nil {
			return nil, err
		}
		return l.Load(ctx, doc.Filepath)
	}

	if err := l.updateFragment(ctx, card, patch); err != nil {
		return nil, err
	}
	return l.Load(ctx, doc.Filepath)
}

// updateFragment re-reads the fragment holding the included card, replaces
// the card at its source index and writes the fragment back.
func (l *Loader) updateFragment(ctx context.Context, card models.Card, patch CardPatch) error {
	src := card.Inclusion.Source
	frag, _, err := l.parseFragment(ctx, src.Filepath, l.exts)
	if err != nil {
		return fmt.Errorf("deck: update %s: %w", src.Filepath, err)
	}
	if src.Index < 0 || src.Index >= len(frag.Cards) {
		return fmt.Errorf("deck: update %s: card %d: %w", src.Filepath, src.Index, apperr.ErrConflict)
	}
	target := &frag.Cards[src.Index].CardBase
	if patch.Frontmatter != nil {
		patch.Frontmatter = fragmentFrontmatter(patch.Frontmatter, card.Frontmatter, target.Frontmatter)
	}
	patch.apply(target)
	return l.Save(frag, src.Filepath)
}

// fragmentFrontmatter drops what the including placeholder contributed to an
// included card's front matter: the srcSequence trail, and placeholder values
// sent back unchanged, which revert to the fragment's own value if it had one.
func fragmentFrontmatter(patch, shown, own map[string]any) map[string]any {
	out := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == keySrcSequence {
			continue
		}
		sv, inShown := shown[k]
		ov, inOwn := own[k]
		inherited := inShown && (!inOwn || !sameValue(sv, ov))
		if inherited && sameValue(v, sv) {
			if inOwn {
				out[k] = ov
			}
			continue
		}
		out[k] = v
	}
	return out
}

// sameValue compares front-matter values by their printed form, so a JSON
// number matches the YAML integer it was decoded from.
func sameValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
