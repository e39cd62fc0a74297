package deckconfig

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidAspectRatio is returned when an aspect ratio cannot be parsed.
var ErrInvalidAspectRatio = errors.New("invalid aspect ratio")

var ratioSepRe = regexp.MustCompile(`[:/x|]`)

// ParseAspectRatio accepts a number, a numeric string, or "16/9", "1:1",
// "3x4" and "4|3" forms, and returns width divided by height. NaN and
// infinite results are rejected.
func ParseAspectRatio(v any) (float64, error) {
	r, err := aspectRatio(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w %v", ErrInvalidAspectRatio, v)
	}
	return r, nil
}

func aspectRatio(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case string:
		return parseRatioString(t)
	}
	return 0, fmt.Errorf("%w %v", ErrInvalidAspectRatio, v)
}

func parseRatioString(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		// Blank values parse as zero, like any other numeric string.
		return 0, nil
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n, nil
	}
	parts := ratioSepRe.Split(s, -1)
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w %q", ErrInvalidAspectRatio, s)
	}
	w, errW := leadingFloat(parts[0])
	h, errH := leadingFloat(parts[1])
	if errW != nil || errH != nil || h == 0 {
		return 0, fmt.Errorf("%w %q", ErrInvalidAspectRatio, s)
	}
	return w / h, nil
}

var leadingFloatRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// leadingFloat parses the numeric prefix of s, ignoring trailing text.
func leadingFloat(s string) (float64, error) {
	m := leadingFloatRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(m, 64)
}
