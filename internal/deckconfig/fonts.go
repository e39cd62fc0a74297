package deckconfig

import (
	"regexp"
	"sort"
	"strings"

	"github.com/starford/flashdeck/internal/models"
)

// Font providers.
const (
	ProviderGoogle = "google"
	ProviderNone   = "none"
)

var defaultWeights = []string{"200", "400", "600"}

var (
	sansFallbacks = []string{
		"ui-sans-serif",
		"system-ui",
		"-apple-system",
		"BlinkMacSystemFont",
		`"Segoe UI"`,
		"Roboto",
		`"Helvetica Neue"`,
		"Arial",
		`"Noto Sans"`,
		"sans-serif",
		`"Apple Color Emoji"`,
		`"Segoe UI Emoji"`,
		`"Segoe UI Symbol"`,
		`"Noto Color Emoji"`,
	}
	serifFallbacks = []string{
		"ui-serif",
		"Georgia",
		"Cambria",
		`"Times New Roman"`,
		"Times",
		"serif",
	}
	monoFallbacks = []string{
		"ui-monospace",
		"SFMono-Regular",
		"Menlo",
		"Monaco",
		"Consolas",
		`"Liberation Mono"`,
		`"Courier New"`,
		"monospace",
	}
)

var (
	fontSplitRe = regexp.MustCompile(`,\s*`)
	quotedRe    = regexp.MustCompile(`^(?:'.*'|".*")$`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// ResolveFonts builds the font stacks and web-font list from user options.
func ResolveFonts(opts models.FontOptions) models.ResolvedFontOptions {
	fallbacks := opts.Fallbacks == nil || *opts.Fallbacks
	provider := opts.Provider
	if provider == "" {
		provider = ProviderGoogle
	}

	sans := flatten(opts.Sans)
	serif := flatten(opts.Serif)
	mono := flatten(opts.Mono)
	custom := flatten(opts.Custom)
	local := flatten(opts.Local)
	weights := flatten(opts.Weights)
	if len(opts.Weights) == 0 {
		weights = append([]string(nil), defaultWeights...)
	}

	var webfonts []string
	switch {
	case opts.Webfonts != nil:
		webfonts = append([]string{}, opts.Webfonts...)
	case fallbacks:
		webfonts = uniq(concat(sans, serif, mono, custom))
	default:
		webfonts = []string{}
	}
	// Local fonts stay in webfonts; they are reported separately in Local.

	if fallbacks {
		sans = uniq(append(quoteAll(sans), sansFallbacks...))
		serif = uniq(append(quoteAll(serif), serifFallbacks...))
		mono = uniq(append(quoteAll(mono), monoFallbacks...))
	}

	return models.ResolvedFontOptions{
		Sans:     sans,
		Serif:    serif,
		Mono:     mono,
		Weights:  weights,
		Italic:   opts.Italic,
		Provider: provider,
		Webfonts: webfonts,
		Local:    local,
	}
}

// GoogleFontsURL composes the css2 query for the resolved web fonts.
func GoogleFontsURL(f models.ResolvedFontOptions) string {
	var axes []string
	for _, w := range f.Weights {
		if f.Italic {
			axes = append(axes, "0,"+w, "1,"+w)
		} else {
			axes = append(axes, w)
		}
	}
	sort.Strings(axes)
	weights := strings.Join(axes, ";")

	ital := ""
	if f.Italic {
		ital = "ital,"
	}
	families := make([]string, 0, len(f.Webfonts))
	for _, name := range f.Webfonts {
		name = unquote(name)
		families = append(families, "family="+spaceRe.ReplaceAllString(name, "+")+":"+ital+"wght@"+weights)
	}
	return "https://fonts.googleapis.com/css2?" + strings.Join(families, "&") + "&display=swap"
}

func flatten(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		for _, part := range fontSplitRe.Split(item, -1) {
			out = append(out, strings.TrimSpace(part))
		}
	}
	return out
}

func quoteAll(fonts []string) []string {
	out := make([]string, len(fonts))
	for i, f := range fonts {
		if quotedRe.MatchString(f) {
			out[i] = f
		} else {
			out[i] = `"` + f + `"`
		}
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && quotedRe.MatchString(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// uniq removes duplicates, keeping the first occurrence.
func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
