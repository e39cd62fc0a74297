// Package models defines the domain types for flashdeck.
package models

// Document is a parsed deck: the root markdown file with every included
// fragment spliced into its card sequence.
type Document struct {
	Raw        string         `json:"raw"`
	Filepath   string         `json:"filepath,omitempty"`
	Cards      []Card         `json:"cards"`
	Config     Config         `json:"config"`
	Features   FeatureFlags   `json:"features"`
	Headmatter map[string]any `json:"headmatter"`
	// Entries lists every file that contributed to the deck, root first.
	Entries   []string   `json:"entries,omitempty"`
	ThemeMeta *ThemeMeta `json:"themeMeta,omitempty"`

	// Placeholders are `src` cards of the root file that contribute no
	// cards (hidden, or expanding to nothing) but must be written back.
	Placeholders []Placeholder `json:"placeholders,omitempty"`
}

// Placeholder is a write-back-only `src` card, written before the card at
// index Before (after the last card when Before == len(Cards)).
type Placeholder struct {
	Before int      `json:"before"`
	Inline CardBase `json:"inline"`
	// Src is the `src` expression removed from Inline's front matter.
	Src string `json:"src"`
}

// CardBase holds the fields every card carries, regardless of where it came from.
type CardBase struct {
	Raw string `json:"raw"`
	// Dirty reports that Raw is stale and must be regenerated from
	// Content, Frontmatter and Note before serialization.
	Dirty       bool           `json:"dirty,omitempty"`
	Content     string         `json:"content"`
	Frontmatter map[string]any `json:"frontmatter"`
	Title       string         `json:"title,omitempty"`
	Level       int            `json:"level,omitempty"`
	Note        string         `json:"note,omitempty"`
}

// Card is one unit of the deck.
//
// A card with a nil Inclusion was scanned directly from the root file and its
// Start/End are line offsets into Document.Raw. A card with an Inclusion was
// produced by expanding a `src` placeholder.
type Card struct {
	CardBase
	Index     int        `json:"index"`
	Start     int        `json:"start"`
	End       int        `json:"end"`
	Inclusion *Inclusion `json:"inclusion,omitempty"`
}

// Included reports whether the card was produced by a `src` expansion.
func (c *Card) Included() bool {
	return c.Inclusion != nil
}

// Inclusion records where an included card came from.
type Inclusion struct {
	Source SourceCard `json:"source"`
	// Inline is the placeholder as written in the including file. Only the
	// first card of a root-level inclusion carries one; it is what gets
	// written back when the including file is saved.
	Inline *CardBase `json:"inline,omitempty"`
	// InlineSrc is the `src` expression removed from Inline's front matter.
	InlineSrc string `json:"inlineSrc,omitempty"`
	// Src is the `src` expression that was followed.
	Src string `json:"src"`
	// Chain lists the resolved files followed to reach this card, outermost first.
	Chain []string `json:"chain,omitempty"`
}

// SourceCard is the card as it appears in the fragment file.
type SourceCard struct {
	CardBase
	Filepath string `json:"filepath"`
	Index    int    `json:"index"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// CardWithPath is a standalone card bound to the file it should be written to.
type CardWithPath struct {
	CardBase
	Filepath string `json:"filepath"`
}

// FeatureFlags report which optional client features a deck needs.
type FeatureFlags struct {
	KaTeX   bool `json:"katex"`
	Monaco  bool `json:"monaco"`
	Tweet   bool `json:"tweet"`
	Mermaid bool `json:"mermaid"`
}

// Merge returns the per-flag OR of f and o.
func (f FeatureFlags) Merge(o FeatureFlags) FeatureFlags {
	return FeatureFlags{
		KaTeX:   f.KaTeX || o.KaTeX,
		Monaco:  f.Monaco || o.Monaco,
		Tweet:   f.Tweet || o.Tweet,
		Mermaid: f.Mermaid || o.Mermaid,
	}
}

// ThemeMeta is the metadata a theme ships alongside its layouts.
type ThemeMeta struct {
	// Defaults uses the same keys as deck head front matter.
	Defaults    map[string]any `yaml:"defaults" json:"defaults,omitempty"`
	ColorSchema string         `yaml:"colorSchema" json:"colorSchema,omitempty"`
	Highlighter string         `yaml:"highlighter" json:"highlighter,omitempty"`
}

// FixedColorSchema returns the theme's enforced color schema ("light" or
// "dark"), or "" when the theme supports both.
func (t *ThemeMeta) FixedColorSchema() string {
	if t == nil {
		return ""
	}
	switch t.ColorSchema {
	case ColorSchemaLight, ColorSchemaDark:
		return t.ColorSchema
	}
	return ""
}
