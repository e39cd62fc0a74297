package parser

import (
	"regexp"
	"strings"

	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
)

var (
	matterRe  = regexp.MustCompile(`^---.*\r?\n([\s\S]*?)---`)
	commentRe = regexp.MustCompile(`<!--([\s\S]*?)-->`)
	headingRe = regexp.MustCompile(`(?m)^(#+) (.*)$`)
)

// ParseCard splits one raw card into front matter, content and trailing note,
// and derives its title and level.
func ParseCard(raw string) models.CardBase {
	fm, body := splitFrontmatter(raw)
	content := strings.TrimSpace(body)

	var note string
	if all := commentRe.FindAllStringSubmatchIndex(content, -1); len(all) > 0 {
		last := all[len(all)-1]
		if last[1] >= len(content) {
			note = strings.TrimSpace(content[last[2]:last[3]])
			content = strings.TrimSpace(content[:last[0]])
		}
	}

	title, level := deriveTitle(fm, content)
	return models.CardBase{
		Raw:         raw,
		Content:     content,
		Frontmatter: fm,
		Title:       title,
		Level:       level,
		Note:        note,
	}
}

// splitFrontmatter removes the first `---...---` block from raw and decodes
// it. Malformed YAML yields an empty map.
func splitFrontmatter(raw string) (map[string]any, string) {
	loc := matterRe.FindStringSubmatchIndex(raw)
	if loc == nil {
		return map[string]any{}, raw
	}
	fm := frontmatter.Lenient(raw[loc[2]:loc[3]])
	return fm, raw[:loc[0]] + raw[loc[1]:]
}

// deriveTitle prefers the front-matter title (or name) with its level,
// defaulting to 1, and otherwise uses the first markdown heading.
func deriveTitle(fm map[string]any, content string) (string, int) {
	t := fm["title"]
	if !frontmatter.Truthy(t) {
		t = fm["name"]
	}
	if frontmatter.Truthy(t) {
		level := 1
		if frontmatter.Truthy(fm["level"]) {
			if n, ok := frontmatter.Int(fm["level"]); ok {
				level = n
			}
		}
		return frontmatter.String(t), level
	}
	m := headingRe.FindStringSubmatch(content)
	if m == nil {
		return "", 0
	}
	return strings.TrimSpace(m[2]), len(m[1])
}
