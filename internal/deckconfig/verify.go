package deckconfig

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/flashdeck/internal/models"
)

// Verify reports settings the deck cannot honour. It never fails: conflicts
// with the theme are only reported, and unsupported values are reset to a
// supported one after the warning.
func Verify(cfg *models.Config, theme *models.ThemeMeta, warn func(string)) {
	if warn == nil {
		return
	}

	if fixed := theme.FixedColorSchema(); fixed != "" && cfg.ColorSchema != fixed {
		warn(fmt.Sprintf("color schema %q is not supported by the theme", cfg.ColorSchema))
	}

	if cfg.CSS != "" && cfg.CSS != CSSWindi {
		warn(fmt.Sprintf("unsupported atomic CSS engine %q, falling back to %s", cfg.CSS, CSSWindi))
		cfg.CSS = CSSWindi
	}

	if err := validation.Validate(cfg.RouterMode, validation.In(RouterModeHistory, RouterModeHash)); err != nil {
		warn(fmt.Sprintf("router mode %q: %v, falling back to %s", cfg.RouterMode, err, RouterModeHistory))
		cfg.RouterMode = RouterModeHistory
	}

	if err := validation.Validate(cfg.Fonts.Provider, validation.In(ProviderGoogle, ProviderNone)); err != nil {
		warn(fmt.Sprintf("font provider %q: %v, falling back to %s", cfg.Fonts.Provider, err, ProviderGoogle))
		cfg.Fonts.Provider = ProviderGoogle
	}
}
