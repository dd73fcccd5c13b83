package sqlguard

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRegex  = regexp.MustCompile("(?is)```(?:sql)?\n?(.*?)```")
	inlineSpanRegex   = regexp.MustCompile("`([^`]+)`")
	selectTokenRegex  = regexp.MustCompile(`(?i)\bselect\b`)
	trailingSemiRegex = regexp.MustCompile(`\s*;\s*$`)
	trailingFences    = regexp.MustCompile("```+$")
)

// Sanitize extracts a bare SQL statement from free-form model output.
// Models tend to wrap SQL in markdown fences or surround it with commentary,
// so we try the most specific shape first and fall back progressively:
//
//  1. content of a ``` / ```sql fenced block
//  2. an inline `...` span that contains a SELECT
//  3. everything from the first SELECT token onward
//  4. the trimmed text with backtick fences stripped
//
// The result is trimmed and has no trailing semicolon.
func Sanitize(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}

	if m := fencedBlockRegex.FindStringSubmatch(t); m != nil {
		return stripTrailingSemi(strings.TrimSpace(m[1]))
	}

	if m := inlineSpanRegex.FindStringSubmatch(t); m != nil && selectTokenRegex.MatchString(m[1]) {
		return stripTrailingSemi(strings.TrimSpace(m[1]))
	}

	if loc := selectTokenRegex.FindStringIndex(t); loc != nil {
		s := strings.TrimSpace(t[loc[0]:])
		s = trailingFences.ReplaceAllString(s, "")
		s = strings.Trim(s, "`")
		return stripTrailingSemi(strings.TrimSpace(s))
	}

	return strings.TrimSpace(strings.ReplaceAll(t, "```", ""))
}

func stripTrailingSemi(s string) string {
	return trailingSemiRegex.ReplaceAllString(s, "")
}
