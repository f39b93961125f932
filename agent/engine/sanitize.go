package engine

import (
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/zaidtausif56/smart-calling-agent/agent/contract"
	llmx "github.com/zaidtausif56/smart-calling-agent/agent/llm"
)

// Column names of the inventory relation. A reply quoting several of them
// across multiple lines is almost certainly a table dump, not speech.
var columnHeaderTokens = []string{
	"Product Name", "Category", "Brand", "Price in Rupees", "Stock", "Description",
}

// Sanitize guards the caller from raw protocol text. The agent is instructed
// to keep lookups and data out of spoken replies, but it is not trusted to
// comply; anything that still looks like a lookup request or a tabular dump
// becomes empty, and the caller substitutes a safe utterance.
func Sanitize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if looksLikeLookup(trimmed) || looksLikeDataDump(trimmed) {
		return ""
	}
	return trimmed
}

func looksLikeLookup(text string) bool {
	lower := strings.ToLower(text)
	return strings.HasPrefix(lower, strings.ToLower(contractx.LookupPrefix)) ||
		strings.HasPrefix(lower, strings.ToLower(contractx.LookupResultPrefix)) ||
		strings.HasPrefix(lower, "select ")
}

func looksLikeDataDump(text string) bool {
	if strings.Count(text, "\n") < 2 {
		return false
	}
	if strings.Contains(text, " | ") {
		return true
	}
	headers := 0
	for _, tok := range columnHeaderTokens {
		if strings.Contains(text, tok) {
			headers++
		}
	}
	return headers >= 2
}

func lookupResultMessage(result string) *schema.Message {
	return schema.UserMessage(llmx.FormatLookupResult(result))
}
