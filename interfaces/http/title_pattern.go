package http

import (
	"fmt"
	"regexp"
	"strings"

	"yt-latest/domain/model"
)

// ParseTitlePattern turns the title parameter into a compiled pattern.
// "/expr/flags" is a regular expression; the u flag is accepted and dropped since
// matching is always UTF-8. Anything else is plain text, matched literally and
// case-insensitively.
func ParseTitlePattern(raw string) (model.MatchPattern, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return model.MatchPattern{}, fmt.Errorf("%w: empty title", model.ErrInvalidPattern)
	}
	if !strings.HasPrefix(text, "/") {
		return model.CompileMatchPattern(regexp.QuoteMeta(text), "i")
	}

	end := strings.LastIndex(text, "/")
	if end == 0 {
		return model.MatchPattern{}, fmt.Errorf("%w: missing closing delimiter in %q", model.ErrInvalidPattern, text)
	}
	expr := text[1:end]
	flags := strings.ReplaceAll(text[end+1:], "u", "")
	return model.CompileMatchPattern(expr, flags)
}
