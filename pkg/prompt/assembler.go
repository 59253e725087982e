package prompt

import "strings"

const (
	// MemoriesMarker introduces the related memories section.
	MemoriesMarker = "Related memories:\n"

	// ContextMarker introduces the optional context section.
	ContextMarker = "Context:\n"

	// QuestionMarker introduces the user's question.
	QuestionMarker = "User's current question: "

	// MemoryTruncatedMarker ends a memory section cut to fit the budget.
	MemoryTruncatedMarker = "\n...[memory truncated]..."

	// ContentTruncatedMarker ends a prompt cut flat to fit the budget.
	ContentTruncatedMarker = "\n...[content truncated]..."

	// TruncationReserve is kept free when cutting the memory section.
	TruncationReserve = 100

	// CharsPerToken approximates how many characters make one token.
	CharsPerToken = 4
)

const framing = "You are an AI assistant with memory. Below are related memories from the user's earlier conversations.\n\n"

const instructions = "Answer the user's question using the information above, especially the related memories. " +
	"Keep the answer natural and coherent, and show that you know the user's history.\n\n" +
	"Reply strictly in the following JSON format:\n" +
	"{\n" +
	"  \"answer\": \"your answer\",\n" +
	"  \"memory_summary\": \"a concise summary of the key information from this conversation worth remembering\"\n" +
	"}\n\n" +
	"Note: memory_summary should capture what the user told you or other important content, for later memory retrieval."

// Assemble builds the prompt sent to the generation backend and enforces
// budget, measured in characters.
//
// When the prompt is too long the memory section is cut first, keeping every
// other section intact. If that is impossible the whole prompt is cut flat.
// Either way the result exceeds budget by at most the truncation marker. A
// non-positive budget disables truncation.
func Assemble(userInput, memoryText, context string, budget int) string {
	head := framing
	if memoryText != "" {
		head += MemoriesMarker
	}

	var tail strings.Builder
	if memoryText != "" {
		tail.WriteString("\n\n")
	}
	if context != "" {
		tail.WriteString(ContextMarker)
		tail.WriteString(context)
		tail.WriteString("\n\n")
	}
	tail.WriteString(QuestionMarker)
	tail.WriteString(userInput)
	tail.WriteString("\n\n")
	tail.WriteString(instructions)

	full := head + memoryText + tail.String()
	if budget <= 0 || runeLen(full) <= budget {
		return full
	}

	if memoryText != "" {
		available := budget - runeLen(head) - runeLen(tail.String()) - TruncationReserve
		if available > 0 && runeLen(memoryText) > available {
			return head + firstRunes(memoryText, available) + MemoryTruncatedMarker + tail.String()
		}
	}

	return firstRunes(full, budget) + ContentTruncatedMarker
}

// EstimateTokens approximates the token count of text at CharsPerToken
// characters per token, rounding up.
func EstimateTokens(text string) int {
	n := runeLen(text)
	if n == 0 {
		return 0
	}
	return (n + CharsPerToken - 1) / CharsPerToken
}

// TokensToChars converts a token budget into a character budget.
func TokensToChars(tokens int) int {
	return tokens * CharsPerToken
}
