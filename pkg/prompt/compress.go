// Package prompt implements the prompt budgeting pipeline: input compression,
// memory selection, prompt assembly and reply extraction.
//
// Every function in this package is pure. Lengths are counted in runes so that
// truncation never splits a multi-byte character.
package prompt

import (
	"strings"
	"unicode/utf8"
)

const (
	// paragraphSeparator splits user input into paragraphs.
	paragraphSeparator = "\n\n"

	// middleSummaryOpen and middleSummaryClose wrap the summarized interior paragraphs.
	middleSummaryOpen  = "\n\n[Summary of middle content: "
	middleSummaryClose = "]\n\n"

	// middleSummarySeparator joins the interior paragraph summaries.
	middleSummarySeparator = " | "

	// paragraphPreviewChars is how much of each interior paragraph is kept.
	paragraphPreviewChars = 100

	// OmittedMarker joins the head and tail of over-long input.
	OmittedMarker = "\n\n[Content too long, middle part omitted]\n\n"

	// CompressedTextMarker joins the head and tail of a compressed memory.
	CompressedTextMarker = "...[middle omitted]..."

	// MaxCompressedTextChars is the target length of a compressed memory text.
	MaxCompressedTextChars = 200
)

// CompressInput bounds the size of raw user input before it is used as a
// search query.
//
// Input that fits in limit is returned unchanged. Multi-paragraph input keeps
// its first and last paragraph verbatim and summarizes the ones in between.
// If that is still too long, or the input is a single paragraph, the first
// and last limit/2 characters are kept around OmittedMarker. The result may
// exceed limit by the marker length. A non-positive limit disables compression.
func CompressInput(input string, limit int) string {
	if limit <= 0 || runeLen(input) <= limit {
		return input
	}

	paragraphs := splitParagraphs(input)
	if len(paragraphs) > 1 {
		compressed := summarizeParagraphs(paragraphs)
		if runeLen(compressed) <= limit {
			return compressed
		}
	}

	return headTail(input, limit/2, OmittedMarker)
}

// CompressText shortens a memory text to MaxCompressedTextChars using the
// same head/tail shape as CompressInput.
func CompressText(text string) string {
	if runeLen(text) <= MaxCompressedTextChars {
		return text
	}
	return headTail(text, MaxCompressedTextChars/2, CompressedTextMarker)
}

// splitParagraphs splits on blank lines and drops trailing empty paragraphs.
func splitParagraphs(input string) []string {
	paragraphs := strings.Split(input, paragraphSeparator)
	for len(paragraphs) > 0 && paragraphs[len(paragraphs)-1] == "" {
		paragraphs = paragraphs[:len(paragraphs)-1]
	}
	return paragraphs
}

func summarizeParagraphs(paragraphs []string) string {
	var b strings.Builder
	b.WriteString(paragraphs[0])

	if len(paragraphs) > 2 {
		interior := paragraphs[1 : len(paragraphs)-1]
		summaries := make([]string, len(interior))
		for i, p := range interior {
			if runeLen(p) > paragraphPreviewChars {
				summaries[i] = firstRunes(p, paragraphPreviewChars) + "..."
			} else {
				summaries[i] = p
			}
		}
		b.WriteString(middleSummaryOpen)
		b.WriteString(strings.Join(summaries, middleSummarySeparator))
		b.WriteString(middleSummaryClose)
	} else {
		b.WriteString(paragraphSeparator)
	}

	b.WriteString(paragraphs[len(paragraphs)-1])
	return b.String()
}

// headTail keeps the first and last n runes of s joined by marker.
func headTail(s string, n int, marker string) string {
	r := []rune(s)
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n]) + marker + string(r[len(r)-n:])
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if n >= len(r) {
		return s
	}
	if n < 0 {
		n = 0
	}
	return string(r[:n])
}
