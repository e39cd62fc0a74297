package parser

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned for an unparsable card range expression.
var ErrInvalidRange = errors.New("invalid range")

var rangeSepRe = regexp.MustCompile(`[,;]`)

// ParseRange expands a 1-based range expression such as "1,3-5,8" over
// total cards. "", "all" and "*" select every card; "3-" runs to the end.
// The result is sorted, deduplicated and capped at total.
func ParseRange(total int, expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "all" || expr == "*" {
		return span(1, total), nil
	}

	seen := make(map[int]struct{})
	var out []int
	add := func(n int) {
		if n < 1 || n > total {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	for _, part := range rangeSepRe.Split(expr, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, isSpan := strings.Cut(part, "-")
		if !isSpan {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w %q", ErrInvalidRange, part)
			}
			add(n)
			continue
		}
		lo, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrInvalidRange, part)
		}
		hi := total
		if to = strings.TrimSpace(to); to != "" {
			if hi, err = strconv.Atoi(to); err != nil {
				return nil, fmt.Errorf("%w %q", ErrInvalidRange, part)
			}
		}
		for n := lo; n <= hi && n <= total; n++ {
			add(n)
		}
	}
	sort.Ints(out)
	return out, nil
}

func span(from, to int) []int {
	out := make([]int, 0, max(to-from+1, 0))
	for n := from; n <= to; n++ {
		out = append(out, n)
	}
	return out
}
