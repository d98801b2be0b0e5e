package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// supportedFlags are the inline flags RE2 understands.
const supportedFlags = "imsU"

// MatchPattern is a compiled title expression.
// The zero value is not usable; build one with CompileMatchPattern.
type MatchPattern struct {
	expr  string
	flags string
	re    *regexp.Regexp
}

// CompileMatchPattern compiles expr with the given inline flags (any of "imsU").
func CompileMatchPattern(expr, flags string) (MatchPattern, error) {
	seen := make(map[rune]bool, len(flags))
	canonical := make([]string, 0, len(flags))
	for _, f := range flags {
		if !strings.ContainsRune(supportedFlags, f) {
			return MatchPattern{}, fmt.Errorf("%w: unsupported flag %q", ErrInvalidPattern, f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		canonical = append(canonical, string(f))
	}
	sort.Strings(canonical)
	normalizedFlags := strings.Join(canonical, "")

	source := expr
	if normalizedFlags != "" {
		source = "(?" + normalizedFlags + ")" + expr
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return MatchPattern{}, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return MatchPattern{expr: expr, flags: normalizedFlags, re: re}, nil
}

// MustCompileMatchPattern is like CompileMatchPattern but panics on error.
func MustCompileMatchPattern(expr, flags string) MatchPattern {
	p, err := CompileMatchPattern(expr, flags)
	if err != nil {
		panic(err)
	}
	return p
}

// Text returns the full pattern text including flags, e.g. "/LIVE/i".
func (p MatchPattern) Text() string {
	return "/" + p.expr + "/" + p.flags
}

// CaseInsensitive reports whether the pattern was compiled with the i flag.
func (p MatchPattern) CaseInsensitive() bool {
	return strings.ContainsRune(p.flags, 'i')
}

// Compiled reports whether the pattern is ready for matching.
func (p MatchPattern) Compiled() bool {
	return p.re != nil
}

// MatchTitle evaluates the pattern against a video title.
func (p MatchPattern) MatchTitle(title string) (bool, error) {
	if p.re == nil {
		return false, fmt.Errorf("%w: pattern not compiled", ErrInvalidPattern)
	}
	return p.re.MatchString(title), nil
}
