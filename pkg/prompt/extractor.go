package prompt

import (
	"encoding/json"
	"strings"
)

// Extraction is the structured content found in a generation reply.
type Extraction struct {
	// Answer is the text to show the user.
	Answer string

	// Summary is the memory summary, empty when none was extracted.
	Summary string

	// Structured is false when the reply carried no parseable payload and
	// Answer fell back to the raw reply.
	Structured bool

	// Reason explains why the reply was not structured.
	Reason string
}

type replyPayload struct {
	Answer        *string `json:"answer"`
	MemorySummary *string `json:"memory_summary"`
}

// Extract parses a free-text reply for an embedded JSON object with answer
// and memory_summary fields.
//
// The object is taken between the first '{' and the last '}'. Extract never
// fails: a missing or malformed payload yields the raw reply as the answer and
// an empty summary.
func Extract(raw string) Extraction {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return Extraction{Answer: raw, Reason: "no JSON object in reply"}
	}

	var payload replyPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return Extraction{Answer: raw, Reason: "malformed JSON payload: " + err.Error()}
	}

	ext := Extraction{Answer: raw, Structured: true}
	if payload.Answer != nil {
		ext.Answer = *payload.Answer
	}
	if payload.MemorySummary != nil {
		ext.Summary = *payload.MemorySummary
	}
	return ext
}
