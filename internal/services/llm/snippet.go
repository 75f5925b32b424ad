package llm

import "strings"

const snippetLimit = 160

// SummarizeSnippet flattens whitespace and truncates content for log output.
func SummarizeSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	if runes := []rune(clean); len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}
