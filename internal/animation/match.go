package animation

import "strings"

// Matcher decides whether a track belongs to the animation family of a
// rest track, and returns the animation name prefix when it does.
//
// The grouping is inferred from naming alone, so titles with other
// conventions can supply their own Matcher.
type Matcher interface {
	Match(track, rest string) (prefix string, ok bool)
}

// SuffixMatcher matches tracks whose name ends with the rest track name:
// "D02HUM_BL_R_TRACK" belongs to "HUM_BL_R_TRACK" with prefix "D02".
type SuffixMatcher struct{}

func (SuffixMatcher) Match(track, rest string) (string, bool) {
	if rest == "" {
		return "", false
	}
	return strings.CutSuffix(track, rest)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(track, rest string) (string, bool)

func (f MatcherFunc) Match(track, rest string) (string, bool) { return f(track, rest) }
