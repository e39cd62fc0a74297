package deckconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/flashdeck/internal/models"
)

// ParseThemeMeta decodes theme metadata from YAML. Empty input yields nil.
func ParseThemeMeta(data []byte) (*models.ThemeMeta, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var meta models.ThemeMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("deckconfig: theme meta: %w", err)
	}
	return &meta, nil
}
