package models

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Color schemas.
const (
	ColorSchemaAuto  = "auto"
	ColorSchemaLight = "light"
	ColorSchemaDark  = "dark"
)

// Config is the resolved presentation configuration of a deck.
type Config struct {
	Theme          string              `yaml:"theme" json:"theme"`
	Title          string              `yaml:"title" json:"title"`
	TitleTemplate  string              `yaml:"titleTemplate" json:"titleTemplate"`
	Favicon        string              `yaml:"favicon" json:"favicon"`
	RemoteAssets   BoolOrString        `yaml:"remoteAssets" json:"remoteAssets"`
	Monaco         BoolOrString        `yaml:"monaco" json:"monaco"`
	Download       BoolOrString        `yaml:"download" json:"download"`
	Info           BoolOrString        `yaml:"info" json:"info"`
	LineNumbers    bool                `yaml:"lineNumbers" json:"lineNumbers"`
	ColorSchema    string              `yaml:"colorSchema" json:"colorSchema"`
	RouterMode     string              `yaml:"routerMode" json:"routerMode"`
	AspectRatio    float64             `yaml:"-" json:"aspectRatio"`
	CanvasWidth    int                 `yaml:"canvasWidth" json:"canvasWidth"`
	ExportFilename string              `yaml:"exportFilename" json:"exportFilename"`
	Selectable     bool                `yaml:"selectable" json:"selectable"`
	ThemeConfig    map[string]any      `yaml:"themeConfig" json:"themeConfig"`
	Fonts          ResolvedFontOptions `yaml:"-" json:"fonts"`
	CodeCopy       bool                `yaml:"codeCopy" json:"codeCopy"`
	CSS            string              `yaml:"css" json:"css"`
}

// BoolOrString holds settings that accept either a flag or a mode name,
// such as `monaco: dev` or `download: true`.
type BoolOrString struct {
	Bool   bool
	String string
	// IsString is set when the value was given as a string.
	IsString bool
}

// Flag returns a boolean-valued setting.
func Flag(b bool) BoolOrString { return BoolOrString{Bool: b} }

// Mode returns a string-valued setting.
func Mode(s string) BoolOrString { return BoolOrString{String: s, IsString: true} }

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *BoolOrString) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a boolean or string", n.Line)
	}
	var b bool
	if n.ShortTag() == "!!bool" {
		if err := n.Decode(&b); err != nil {
			return err
		}
		*v = Flag(b)
		return nil
	}
	*v = Mode(n.Value)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v BoolOrString) MarshalYAML() (any, error) {
	if v.IsString {
		return v.String, nil
	}
	return v.Bool, nil
}

// MarshalJSON implements json.Marshaler.
func (v BoolOrString) MarshalJSON() ([]byte, error) {
	if v.IsString {
		return json.Marshal(v.String)
	}
	return json.Marshal(v.Bool)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *BoolOrString) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Mode(s)
	return nil
}

// StringList accepts either a single scalar or a sequence of scalars.
// Numbers are kept in their source spelling.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{n.Value}
	case yaml.SequenceNode:
		out := make(StringList, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: expected a scalar list item", c.Line)
			}
			out = append(out, c.Value)
		}
		*l = out
	default:
		return fmt.Errorf("line %d: expected a string or list", n.Line)
	}
	return nil
}

// FontOptions are the user-facing font settings as written in front matter.
type FontOptions struct {
	Sans    StringList `yaml:"sans"`
	Serif   StringList `yaml:"serif"`
	Mono    StringList `yaml:"mono"`
	Custom  StringList `yaml:"custom"`
	Weights StringList `yaml:"weights"`
	Italic  bool       `yaml:"italic"`
	// Provider is "google" or "none".
	Provider string `yaml:"provider"`
	// Webfonts, when set, replaces the list detected from Sans/Serif/Mono/Custom.
	Webfonts StringList `yaml:"webfonts"`
	Local    StringList `yaml:"local"`
	// Fallbacks defaults to true when unset.
	Fallbacks *bool `yaml:"fallbacks"`
}

// ResolvedFontOptions are the font stacks derived from FontOptions.
type ResolvedFontOptions struct {
	Sans     []string `json:"sans"`
	Serif    []string `json:"serif"`
	Mono     []string `json:"mono"`
	Weights  []string `json:"weights"`
	Italic   bool     `json:"italic"`
	Provider string   `json:"provider"`
	Webfonts []string `json:"webfonts"`
	Local    []string `json:"local"`
}
