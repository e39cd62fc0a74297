package deckconfig

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/starford/flashdeck/internal/models"
)

func TestParseAspectRatio(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{"16/9", 16.0 / 9.0},
		{"1:1", 1},
		{"3x4", 0.75},
		{"4|3", 4.0 / 3.0},
		{"1.5", 1.5},
		{2, 2},
		{1.25, 1.25},
	}
	for _, c := range cases {
		got, err := ParseAspectRatio(c.in)
		if err != nil {
			t.Errorf("ParseAspectRatio(%v): %v", c.in, err)
			continue
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("ParseAspectRatio(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseAspectRatio_Invalid(t *testing.T) {
	for _, in := range []any{"bogus", "16/0", "a:b", []any{1}, "NaN", "Inf", "-inf", math.Inf(1), math.NaN()} {
		if _, err := ParseAspectRatio(in); !errors.Is(err, ErrInvalidAspectRatio) {
			t.Errorf("ParseAspectRatio(%v) err = %v, want ErrInvalidAspectRatio", in, err)
		}
	}
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(map[string]any{}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Theme != "default" || cfg.RouterMode != RouterModeHistory || cfg.CanvasWidth != 980 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ColorSchema != models.ColorSchemaAuto {
		t.Errorf("colorSchema = %q, want auto", cfg.ColorSchema)
	}
	if math.Abs(cfg.AspectRatio-16.0/9.0) > 1e-9 {
		t.Errorf("aspectRatio = %v", cfg.AspectRatio)
	}
	if !cfg.Monaco.IsString || cfg.Monaco.String != "dev" {
		t.Errorf("monaco = %+v, want dev", cfg.Monaco)
	}
}

func TestResolve_Precedence(t *testing.T) {
	theme := &models.ThemeMeta{Defaults: map[string]any{
		"canvasWidth": 800,
		"routerMode":  "hash",
		"title":       "Theme Title",
	}}
	head := map[string]any{
		"config": map[string]any{
			"canvasWidth": 1000,
			"title":       "Config Title",
		},
		"title": "Top Title",
	}
	cfg, err := Resolve(head, theme)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.CanvasWidth != 1000 {
		t.Errorf("canvasWidth = %d, want 1000 from config section", cfg.CanvasWidth)
	}
	if cfg.RouterMode != "hash" {
		t.Errorf("routerMode = %q, want hash from theme", cfg.RouterMode)
	}
	if cfg.Title != "Top Title" {
		t.Errorf("title = %q, want top-level override", cfg.Title)
	}
}

func TestResolve_ColorSchema(t *testing.T) {
	cfg, _ := Resolve(map[string]any{"colorSchema": "purple"}, nil)
	if cfg.ColorSchema != models.ColorSchemaAuto {
		t.Errorf("colorSchema = %q, want auto", cfg.ColorSchema)
	}

	dark := &models.ThemeMeta{ColorSchema: "dark"}
	cfg, _ = Resolve(map[string]any{"colorSchema": "auto"}, dark)
	if cfg.ColorSchema != models.ColorSchemaDark {
		t.Errorf("colorSchema = %q, want theme's dark", cfg.ColorSchema)
	}

	cfg, _ = Resolve(map[string]any{"colorSchema": "light"}, dark)
	if cfg.ColorSchema != models.ColorSchemaLight {
		t.Errorf("colorSchema = %q, want explicit light", cfg.ColorSchema)
	}
}

func TestResolve_AspectRatioError(t *testing.T) {
	_, err := Resolve(map[string]any{"aspectRatio": "wide"}, nil, WithFilepath("slides.md"))
	if !errors.Is(err, ErrInvalidAspectRatio) {
		t.Fatalf("err = %v, want ErrInvalidAspectRatio", err)
	}
	if !strings.Contains(err.Error(), "slides.md") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestResolve_FontsMergedAcrossSources(t *testing.T) {
	theme := &models.ThemeMeta{Defaults: map[string]any{
		"fonts": map[string]any{"mono": "Fira Code", "sans": "Theme Sans"},
	}}
	head := map[string]any{
		"config": map[string]any{"fonts": map[string]any{"serif": "Lora"}},
		"fonts":  map[string]any{"sans": "Inter"},
	}
	cfg, err := Resolve(head, theme)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Fonts.Sans[0] != `"Inter"` {
		t.Errorf("sans = %v", cfg.Fonts.Sans)
	}
	if cfg.Fonts.Serif[0] != `"Lora"` || cfg.Fonts.Mono[0] != `"Fira Code"` {
		t.Errorf("serif = %v, mono = %v", cfg.Fonts.Serif, cfg.Fonts.Mono)
	}
}

func TestResolve_TypeMismatchWarns(t *testing.T) {
	var warnings []string
	cfg, err := Resolve(map[string]any{"canvasWidth": "wide", "selectable": true}, nil,
		WithVerify(func(s string) { warnings = append(warnings, s) }))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.CanvasWidth != 980 {
		t.Errorf("canvasWidth = %d, want default kept", cfg.CanvasWidth)
	}
	if !cfg.Selectable {
		t.Error("other fields should still decode")
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for the mismatched value")
	}
}

func TestResolve_BoolOrString(t *testing.T) {
	cfg, err := Resolve(map[string]any{"download": true, "info": "# About"}, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Download.IsString || !cfg.Download.Bool {
		t.Errorf("download = %+v", cfg.Download)
	}
	if !cfg.Info.IsString || cfg.Info.String != "# About" {
		t.Errorf("info = %+v", cfg.Info)
	}
}

func TestVerify_Warnings(t *testing.T) {
	var warnings []string
	warn := func(s string) { warnings = append(warnings, s) }

	cfg := Default(nil)
	cfg.ColorSchema = models.ColorSchemaLight
	cfg.CSS = "unocss"
	cfg.RouterMode = "memory"
	Verify(&cfg, &models.ThemeMeta{ColorSchema: "dark"}, warn)

	if len(warnings) != 3 {
		t.Fatalf("warnings = %v, want 3", warnings)
	}
	if cfg.ColorSchema != models.ColorSchemaLight {
		t.Error("color schema conflict must not alter the config")
	}
	if cfg.CSS != CSSWindi {
		t.Errorf("css = %q, want fallback", cfg.CSS)
	}
	if cfg.RouterMode != RouterModeHistory {
		t.Errorf("routerMode = %q, want fallback", cfg.RouterMode)
	}
}

func TestVerify_Clean(t *testing.T) {
	cfg, _ := Resolve(map[string]any{}, nil)
	called := false
	Verify(&cfg, nil, func(string) { called = true })
	if called {
		t.Error("defaults should verify cleanly")
	}
}

func TestParseThemeMeta(t *testing.T) {
	meta, err := ParseThemeMeta([]byte("colorSchema: dark\ndefaults:\n  canvasWidth: 800\n"))
	if err != nil {
		t.Fatal(err)
	}
	if meta.FixedColorSchema() != models.ColorSchemaDark {
		t.Errorf("color schema = %q", meta.ColorSchema)
	}
	cfg, err := Resolve(map[string]any{}, meta)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CanvasWidth != 800 || cfg.ColorSchema != models.ColorSchemaDark {
		t.Errorf("cfg = %+v", cfg)
	}

	if meta, err := ParseThemeMeta(nil); meta != nil || err != nil {
		t.Errorf("empty = %v, %v", meta, err)
	}
	if _, err := ParseThemeMeta([]byte("defaults: [")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
