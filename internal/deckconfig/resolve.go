// Package deckconfig resolves the presentation configuration of a deck from
// built-in defaults, theme metadata and head front matter.
package deckconfig

import (
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/starford/flashdeck/internal/frontmatter"
	"github.com/starford/flashdeck/internal/models"
)

// Supported values.
const (
	CSSWindi          = "windicss"
	RouterModeHistory = "history"
	RouterModeHash    = "hash"
)

// ResolveOption customises Resolve.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	filepath string
	warn     func(string)
}

// WithFilepath names the deck being resolved in warnings.
func WithFilepath(path string) ResolveOption {
	return func(o *resolveOptions) {
		o.filepath = path
	}
}

// WithVerify runs Verify after resolution, sending warnings to warn.
// A nil warn logs through slog.Default.
func WithVerify(warn func(string)) ResolveOption {
	return func(o *resolveOptions) {
		if warn == nil {
			warn = LogWarn(slog.Default())
		}
		o.warn = warn
	}
}

// LogWarn returns a warning sink that logs at Warn level.
func LogWarn(logger *slog.Logger) func(string) {
	return func(msg string) {
		logger.Warn("deckconfig: " + msg)
	}
}

// Default returns the built-in configuration. A theme with a fixed color
// schema changes the default schema.
func Default(theme *models.ThemeMeta) models.Config {
	schema := theme.FixedColorSchema()
	if schema == "" {
		schema = models.ColorSchemaAuto
	}
	return models.Config{
		Theme:          "default",
		Title:          "Flashcard-Dev",
		TitleTemplate:  "%s - Flashcard-Dev",
		Favicon:        "/favicon.ico",
		RemoteAssets:   models.Flag(false),
		Monaco:         models.Mode("dev"),
		Download:       models.Flag(false),
		Info:           models.Flag(false),
		LineNumbers:    false,
		ColorSchema:    schema,
		RouterMode:     RouterModeHistory,
		AspectRatio:    16.0 / 9.0,
		CanvasWidth:    980,
		ExportFilename: "",
		Selectable:     false,
		ThemeConfig:    map[string]any{},
		CodeCopy:       true,
		CSS:            CSSWindi,
	}
}

// Resolve merges defaults, theme defaults, headmatter.config and top-level
// headmatter keys (lowest to highest precedence) into a Config.
//
// Values of the wrong type are skipped and keep their lower-precedence
// setting; they are reported only when verifying. An unparsable aspect
// ratio fails the resolution.
func Resolve(headmatter map[string]any, theme *models.ThemeMeta, opts ...ResolveOption) (models.Config, error) {
	o := &resolveOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var themeDefaults map[string]any
	if theme != nil {
		themeDefaults = theme.Defaults
	}
	section := frontmatter.Map(headmatter["config"])

	merged := frontmatter.Merge(themeDefaults, section, headmatter)
	fonts := frontmatter.Merge(
		frontmatter.Map(themeDefaults["fonts"]),
		frontmatter.Map(section["fonts"]),
		frontmatter.Map(headmatter["fonts"]),
	)
	ratio, hasRatio := merged["aspectRatio"]
	delete(merged, "fonts")
	delete(merged, "aspectRatio")
	delete(merged, "config")

	cfg := Default(theme)
	var warnings []string
	if err := frontmatter.DecodeInto(merged, &cfg); err != nil {
		warnings = append(warnings, decodeWarnings("config", err)...)
	}

	var fontOpts models.FontOptions
	if err := frontmatter.DecodeInto(fonts, &fontOpts); err != nil {
		warnings = append(warnings, decodeWarnings("fonts", err)...)
	}
	cfg.Fonts = ResolveFonts(fontOpts)

	if cfg.ColorSchema != models.ColorSchemaDark && cfg.ColorSchema != models.ColorSchemaLight {
		cfg.ColorSchema = models.ColorSchemaAuto
	}
	if fixed := theme.FixedColorSchema(); fixed != "" && cfg.ColorSchema == models.ColorSchemaAuto {
		cfg.ColorSchema = fixed
	}

	if hasRatio && ratio != nil {
		r, err := ParseAspectRatio(ratio)
		if err != nil {
			if o.filepath != "" {
				return models.Config{}, fmt.Errorf("deckconfig: %s: %w", o.filepath, err)
			}
			return models.Config{}, fmt.Errorf("deckconfig: %w", err)
		}
		cfg.AspectRatio = r
	}

	if o.warn != nil {
		for _, w := range warnings {
			o.warn(w)
		}
		Verify(&cfg, theme, o.warn)
	}
	return cfg, nil
}

func decodeWarnings(section string, err error) []string {
	var te *yaml.TypeError
	if errors.As(err, &te) {
		out := make([]string, len(te.Errors))
		for i, e := range te.Errors {
			out[i] = fmt.Sprintf("ignored %s value: %s", section, e)
		}
		return out
	}
	return []string{fmt.Sprintf("ignored %s values: %v", section, err)}
}
