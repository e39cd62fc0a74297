// Package deck loads markdown decks from storage, expanding `src`
// inclusions, and writes them back.
package deck

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/starford/flashdeck/internal/deckconfig"
	"github.com/starford/flashdeck/internal/models"
	"github.com/starford/flashdeck/internal/parser"
	"github.com/starford/flashdeck/internal/storage"
)

// Loader reads decks through a storage provider.
type Loader struct {
	store     storage.Provider
	extLoader parser.ExtensionLoader
	exts      []parser.Extension
	theme     *models.ThemeMeta
	logger    *slog.Logger
}

// Option is a functional option for configuring a Loader.
type Option func(*Loader)

// WithExtensionLoader sets the source of extensions picked from each file's
// head front matter.
func WithExtensionLoader(el parser.ExtensionLoader) Option {
	return func(l *Loader) {
		l.extLoader = el
	}
}

// WithExtensions sets extensions applied to every file before any loader-supplied ones.
func WithExtensions(exts ...parser.Extension) Option {
	return func(l *Loader) {
		l.exts = append(l.exts, exts...)
	}
}

// WithTheme sets the theme metadata used when resolving deck configuration.
func WithTheme(theme *models.ThemeMeta) Option {
	return func(l *Loader) {
		l.theme = theme
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader reading from store.
func NewLoader(store storage.Provider, opts ...Option) *Loader {
	l := &Loader{store: store}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load reads the deck at path and expands its inclusions.
func (l *Loader) Load(ctx context.Context, path string) (*models.Document, error) {
	data, err := l.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("deck: load %s: %w", path, err)
	}
	return l.LoadContent(ctx, path, string(data))
}

// LoadContent parses content as the deck stored at path and expands its
// inclusions. Fragments are still read through the storage provider.
func (l *Loader) LoadContent(ctx context.Context, path, content string) (*models.Document, error) {
	path = filepath.Clean(path)
	var exts []parser.Extension
	doc, err := parser.Parse(ctx, parser.Input{
		Markdown:   content,
		Filepath:   path,
		Theme:      l.theme,
		Extensions: l.exts,
		Warn:       deckconfig.LogWarn(l.logger.With(slog.String("path", path))),
		OnHeadmatter: func(ctx context.Context, head map[string]any, base []parser.Extension, fp string) ([]parser.Extension, error) {
			var err error
			exts, err = l.extensionsFor(ctx, head, base, fp)
			return exts, err
		},
	})
	if err != nil {
		return nil, fmt.Errorf("deck: parse %s: %w", path, err)
	}

	r := &resolver{loader: l, root: path, dir: filepath.Dir(path), exts: exts}
	if err := r.expand(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// extensionsFor merges the loader-supplied extensions for a file's head
// front matter into base.
func (l *Loader) extensionsFor(ctx context.Context, head map[string]any, base []parser.Extension, fp string) ([]parser.Extension, error) {
	if l.extLoader == nil {
		return base, nil
	}
	extra, err := l.extLoader.Extensions(ctx, head, fp)
	if err != nil {
		return nil, fmt.Errorf("load extensions for %s: %w", fp, err)
	}
	return parser.MergeExtensions(base, extra), nil
}

// parseFragment reads and parses a single file without expanding its
// inclusions, using exts plus whatever its own head front matter asks for.
func (l *Loader) parseFragment(ctx context.Context, path string, exts []parser.Extension) (*models.Document, string, error) {
	data, err := l.store.Read(path)
	if err != nil {
		return nil, "", err
	}
	raw := string(data)
	doc, err := parser.Parse(ctx, parser.Input{
		Markdown:     raw,
		Filepath:     path,
		Theme:        l.theme,
		Extensions:   exts,
		OnHeadmatter: l.extensionsFor,
	})
	if err != nil {
		return nil, "", err
	}
	return doc, raw, nil
}
