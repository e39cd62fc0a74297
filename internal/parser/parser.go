// Package parser splits a markdown deck into cards and serializes cards back
// to markdown.
package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/starford/flashdeck/internal/deckconfig"
	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
)

var (
	newlineRe = regexp.MustCompile(`\r?\n`)
	// boundaryRe matches any card separator: three or more dashes, optionally labelled.
	boundaryRe = regexp.MustCompile(`^---+`)
	// openerRe matches a separator that may open a front-matter block.
	openerRe = regexp.MustCompile(`^---([^-].*)?$`)
	blankRe  = regexp.MustCompile(`^\s*$`)
)

const fence = "```"

// Input is the source handed to Parse.
type Input struct {
	Markdown   string
	Filepath   string
	Theme      *models.ThemeMeta
	Extensions []Extension
	// OnHeadmatter, if set, chooses the extensions from the decoded head front matter.
	OnHeadmatter HeadmatterFunc
	// Warn, if set, receives configuration warnings for the deck.
	Warn func(string)
}

// Parse splits in.Markdown into cards, running the extension pipeline, and
// resolves the deck configuration from the first card's front matter.
func Parse(ctx context.Context, in Input) (*models.Document, error) {
	lines := newlineRe.Split(in.Markdown, -1)
	exts := in.Extensions

	if in.OnHeadmatter != nil {
		head := frontmatter.Lenient(headmatterBlock(lines))
		var err error
		exts, err = in.OnHeadmatter(ctx, head, exts, in.Filepath)
		if err != nil {
			return nil, fmt.Errorf("parser: headmatter hook: %w", err)
		}
	}

	lines, err := applyRawLines(ctx, exts, lines)
	if err != nil {
		return nil, err
	}

	s := &splitter{lines: lines, exts: exts}
	if err := s.split(ctx); err != nil {
		return nil, err
	}

	head := map[string]any{}
	if len(s.cards) > 0 {
		first := s.cards[0]
		head = frontmatter.Clone(first.Frontmatter)
		if !frontmatter.Truthy(head["title"]) && first.Title != "" {
			head["title"] = first.Title
		}
	}

	opts := []deckconfig.ResolveOption{deckconfig.WithFilepath(in.Filepath)}
	if in.Warn != nil {
		opts = append(opts, deckconfig.WithVerify(in.Warn))
	}
	cfg, err := deckconfig.Resolve(head, in.Theme, opts...)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Raw:        in.Markdown,
		Filepath:   in.Filepath,
		Cards:      s.cards,
		Config:     cfg,
		Features:   DetectFeatures(in.Markdown),
		Headmatter: head,
		ThemeMeta:  in.Theme,
	}
	if in.Filepath != "" {
		doc.Entries = []string{in.Filepath}
	}
	return doc, nil
}

// headmatterBlock returns the YAML of a leading front-matter block, or "".
func headmatterBlock(lines []string) string {
	if !openerRe.MatchString(lines[0]) || (len(lines) > 1 && blankRe.MatchString(lines[1])) {
		return ""
	}
	end := 1
	for end < len(lines) && trimEnd(lines[end]) != "---" {
		end++
	}
	if end <= 1 {
		return ""
	}
	return strings.Join(lines[1:end], "\n")
}

type splitter struct {
	lines []string
	exts  []Extension
	cards []models.Card
	start int
}

func (s *splitter) split(ctx context.Context) error {
	lines := s.lines
	for i := 0; i < len(lines); i++ {
		line := trimEnd(lines[i])
		switch {
		case boundaryRe.MatchString(line):
			if err := s.slice(ctx, i); err != nil {
				return err
			}
			if opensFrontmatter(lines, i, line) {
				s.start = i
				for i++; i < len(lines); i++ {
					if trimEnd(lines[i]) == "---" {
						break
					}
				}
			}
		case strings.HasPrefix(line, fence):
			for i++; i < len(lines); i++ {
				if strings.HasPrefix(lines[i], fence) {
					break
				}
			}
		}
	}
	if s.start <= len(lines)-1 {
		return s.slice(ctx, len(lines))
	}
	return nil
}

// slice turns lines[start:end] into a card. Empty ranges are dropped.
func (s *splitter) slice(ctx context.Context, end int) error {
	if s.start == end {
		return nil
	}
	raw := strings.Join(s.lines[s.start:end], "\n")
	card := models.Card{
		CardBase: ParseCard(raw),
		Index:    len(s.cards),
		Start:    s.start,
		End:      end,
	}
	if err := applyCard(ctx, s.exts, &card.CardBase); err != nil {
		return err
	}
	s.cards = append(s.cards, card)
	s.start = end + 1
	return nil
}

// opensFrontmatter reports whether the separator at i starts a front-matter
// block: exactly three dashes (plus an optional label) followed by a
// non-blank line.
func opensFrontmatter(lines []string, i int, line string) bool {
	if !openerRe.MatchString(line) {
		return false
	}
	return i+1 >= len(lines) || !blankRe.MatchString(lines[i+1])
}

func trimEnd(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
