// Package frontmatter wraps yaml.v3 for the loosely typed front-matter maps
// carried by cards.
package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses src as a YAML mapping. Documents that are empty or not a
// mapping decode to an empty map.
func Decode(src string) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		return map[string]any{}, fmt.Errorf("frontmatter: decode: %w", err)
	}
	switch m := v.(type) {
	case map[string]any:
		return Clone(m), nil
	case map[any]any:
		return stringKeys(m), nil
	}
	return map[string]any{}, nil
}

// stringKeys converts a mapping with non-string keys, which yaml.v3 produces
// for documents such as "1: x", into a string-keyed map.
func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = cloneValue(v)
	}
	return out
}

// Lenient is Decode with errors discarded.
func Lenient(src string) map[string]any {
	m, _ := Decode(src)
	return m
}

// Encode renders m as block YAML with two-space indentation and no trailing newline.
func Encode(m map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("frontmatter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("frontmatter: encode: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// DecodeInto converts a loosely typed map into a typed target through a
// yaml.Node, so yaml tags and custom unmarshalers on the target apply.
func DecodeInto(m map[string]any, target any) error {
	var n yaml.Node
	if err := n.Encode(m); err != nil {
		return fmt.Errorf("frontmatter: encode node: %w", err)
	}
	return n.Decode(target)
}

// Truthy reports whether v counts as set: nil, false, "", and zero numbers do not.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0
	}
	return true
}

// String renders a scalar front-matter value as text; nil becomes "".
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Int converts a numeric or numeric-string value.
func Int(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

// Map returns v as a string-keyed map, or nil.
func Map(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// Clone deep-copies nested maps and slices so a hook can edit the result
// without touching the original.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case map[any]any:
		return stringKeys(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// Merge shallow-merges maps left to right; later maps win. Nil maps are skipped.
func Merge(maps ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
