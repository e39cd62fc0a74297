package mcpserver

// DeckFormatContract describes the Markdown deck layout that LLM consumers
// should preserve when reading or editing cards.
const DeckFormatContract = `# flashdeck Deck Format

A deck is one Markdown file split into cards. Other files can be pulled in
with ` + "`" + `src` + "`" + ` placeholders.

## Structure

` + "```" + `markdown
---
title: Deck title                   # head front matter: deck-wide configuration
fonts:
  sans: Inter
aspectRatio: 16/9
---

# First card

Markdown body.

<!--
Presenter note for the first card.
-->

---
layout: center                      # per-card front matter
---

# Second card

---

# Third card (plain separator, no front matter)

---
src: ./parts/intro.md               # replaced by every card of that file
---
` + "```" + `

## Rules

1. **Separators.** A line starting with ` + "`" + `---` + "`" + ` ends the previous card.
   When it is directly followed by a non-blank line, it opens a front matter
   block closed by the next ` + "`" + `---` + "`" + ` line.
2. **Code fences** hide separators: ` + "`" + `---` + "`" + ` inside a fenced block belongs to the card.
3. **Head front matter** is the first card's front matter. It configures the
   whole deck (title, fonts, aspectRatio, canvasWidth, theme, ...).
4. **Notes.** A trailing HTML comment at the very end of a card is its presenter note.
5. **Titles** come from the front matter ` + "`" + `title` + "`" + ` or ` + "`" + `name` + "`" + `, otherwise
   from the first Markdown heading.
6. **Includes.** ` + "`" + `src` + "`" + ` paths starting with ` + "`" + `/` + "`" + ` are relative to the deck
   directory; others are relative to the file containing the placeholder.
   Front matter on the placeholder overrides the included cards' own.
   ` + "`" + `hide: true` + "`" + ` drops the cards while keeping the file in the deck's entries.
7. **Editing.** Use ` + "`" + `update_card` + "`" + ` with the checksum from ` + "`" + `read_card` + "`" + `.
   Included cards are written back to the file they came from; the
   placeholder in the including file is kept.
8. **Encoding** is UTF-8 with a trailing newline.
`
