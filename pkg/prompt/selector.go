package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// MaxMemoriesPerPrompt caps how many memories any strategy renders.
//
// It does not follow the search limit requested by the caller.
const MaxMemoriesPerPrompt = 5

// Record is a retrieved memory as seen by the selector.
type Record struct {
	// ID is the opaque identifier assigned by the memory store.
	ID string

	// Text is the memory content.
	Text string

	// Score is the relevance reported by the search collaborator (0 if unknown).
	Score float64
}

// Strategy names one of the memory selection algorithms.
type Strategy string

const (
	// SlidingWindow keeps the first records in received order.
	SlidingWindow Strategy = "sliding-window"

	// ImportanceRanking keeps the records with the highest ImportanceScore.
	ImportanceRanking Strategy = "importance-ranking"

	// SummaryCompression shortens every record with CompressText.
	SummaryCompression Strategy = "summary-compression"

	// RecentFirst keeps the first records, assuming most-recent-first order.
	RecentFirst Strategy = "recent-first"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{SlidingWindow, ImportanceRanking, SummaryCompression, RecentFirst}

// ParseStrategy maps a configured name to a Strategy.
//
// Unknown names select SlidingWindow.
func ParseStrategy(name string) Strategy {
	if s, ok := LookupStrategy(name); ok {
		return s
	}
	return SlidingWindow
}

// LookupStrategy reports the Strategy called name. Matching ignores case and
// treats '_' as '-', so "SLIDING_WINDOW" and "sliding-window" are the same.
func LookupStrategy(name string) (Strategy, bool) {
	s := Strategy(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-"))
	return s, s.Valid()
}

// Valid reports whether s is one of Strategies.
func (s Strategy) Valid() bool {
	switch s {
	case SlidingWindow, ImportanceRanking, SummaryCompression, RecentFirst:
		return true
	}
	return false
}

// Select reduces records to a single rendered text blob.
func (s Strategy) Select(records []Record) string {
	return Render(s.Pick(records))
}

// Pick returns the records s keeps, at most MaxMemoriesPerPrompt of them.
// The input slice is never modified.
func (s Strategy) Pick(records []Record) []Record {
	if len(records) == 0 {
		return nil
	}

	switch ParseStrategy(string(s)) {
	case ImportanceRanking:
		return rankByImportance(records)
	case SummaryCompression:
		return compressRecords(records)
	default:
		// SlidingWindow and RecentFirst differ only in the order the caller
		// guarantees.
		return limitRecords(records)
	}
}

// Render formats records as "- {text} (ID: {id})" lines.
func Render(records []Record) string {
	if len(records) == 0 {
		return ""
	}

	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("- %s (ID: %s)", r.Text, r.ID)
	}
	return strings.Join(lines, "\n")
}

func limitRecords(records []Record) []Record {
	n := len(records)
	if n > MaxMemoriesPerPrompt {
		n = MaxMemoriesPerPrompt
	}
	out := make([]Record, n)
	copy(out, records[:n])
	return out
}

type scoredRecord struct {
	record Record
	score  float64
}

func rankByImportance(records []Record) []Record {
	scored := make([]scoredRecord, len(records))
	for i, r := range records {
		scored[i] = scoredRecord{record: r, score: ImportanceScore(r.Text)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	out := make([]Record, len(scored))
	for i, sr := range scored {
		out[i] = sr.record
	}
	return limitRecords(out)
}

func compressRecords(records []Record) []Record {
	out := limitRecords(records)
	for i := range out {
		out[i].Text = CompressText(out[i].Text)
	}
	return out
}
