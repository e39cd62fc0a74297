package parser

import (
	"regexp"
	"slices"

	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
)

var (
	katexInlineRe = regexp.MustCompile(`\$.*?\$`)
	katexBlockRe  = regexp.MustCompile(`(?m)^\$\$`)
	monacoRe      = regexp.MustCompile(`\{monaco.*\}`)
	tweetRe       = regexp.MustCompile(`<Tweet\b`)
	mermaidRe     = regexp.MustCompile("(?m)^```mermaid")
)

// DetectFeatures scans the whole text for markup that needs optional client features.
func DetectFeatures(text string) models.FeatureFlags {
	return models.FeatureFlags{
		KaTeX:   katexInlineRe.MatchString(text) || katexBlockRe.MatchString(text),
		Monaco:  monacoRe.MatchString(text),
		Tweet:   tweetRe.MatchString(text),
		Mermaid: mermaidRe.MatchString(text),
	}
}

// FilterDisabled returns a copy of doc without the cards whose `disabled`
// front-matter key is set, re-indexing the rest. doc is not modified.
func FilterDisabled(doc *models.Document) *models.Document {
	out := *doc
	out.Cards = make([]models.Card, 0, len(doc.Cards))
	out.Placeholders = slices.Clone(doc.Placeholders)
	for i, c := range doc.Cards {
		if !frontmatter.Truthy(c.Frontmatter["disabled"]) {
			out.Cards = append(out.Cards, c)
			continue
		}
		for j, ph := range doc.Placeholders {
			if ph.Before > i {
				out.Placeholders[j].Before--
			}
		}
	}
	Reindex(out.Cards)
	return &out
}

// Reindex numbers cards from zero in slice order.
func Reindex(cards []models.Card) {
	for i := range cards {
		cards[i].Index = i
	}
}
