package service

import (
	"log"
	"strings"
	"unicode/utf8"
)

const maxResearchLogSnippetRunes = 1024

// logResearchExchange prints the research request and response so odd model
// output can be traced.
func logResearchExchange(phase, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		log.Printf("[AI research] %s: <empty>", phase)
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxResearchLogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxResearchLogSnippetRunes]) + "…(truncated)"
	}
	log.Printf("[AI research] %s (runes=%d): %s", phase, runeCount, snippet)
}
