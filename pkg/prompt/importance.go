package prompt

import (
	"math"
	"regexp"
	"strings"
)

// SalienceKeywords are the terms that mark a memory as worth keeping.
// CJK terms are matched verbatim, Latin ones case-insensitively.
var SalienceKeywords = []string{
	"重要", "关键", "记住", "注意", "总结", "结论",
	"important", "critical", "remember", "note", "summary", "conclusion",
}

var (
	digitPattern = regexp.MustCompile(`[0-9]`)
	namePattern  = regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,4}`)
)

// ImportanceScore rates a memory text with a cheap heuristic.
//
// Contributions:
//   - length in (50, 500) runes: +0.3, length >= 500: +0.1
//   - each distinct salience keyword: +0.2
//   - any digit: +0.1
//   - LooksLikeName: +0.1
//
// The sum is clamped to [0, 1].
func ImportanceScore(text string) float64 {
	if text == "" {
		return 0.0
	}

	score := 0.0

	length := runeLen(text)
	if length > 50 && length < 500 {
		score += 0.3
	} else if length >= 500 {
		score += 0.1
	}

	lower := strings.ToLower(text)
	for _, keyword := range SalienceKeywords {
		if strings.Contains(lower, keyword) {
			score += 0.2
		}
	}

	if digitPattern.MatchString(text) {
		score += 0.1
	}

	if LooksLikeName(text) {
		score += 0.1
	}

	return math.Max(0.0, math.Min(score, 1.0))
}

// LooksLikeName reports whether text contains a short run of CJK ideographs.
//
// It is a crude proxy for a proper name and over-matches on any CJK text.
func LooksLikeName(text string) bool {
	return namePattern.MatchString(text)
}
