package extraction

import (
	"fmt"
	"strings"
)

// BuildUserMessage assembles the oracle user message. Empty OCR texts are
// skipped but keep their image number.
func BuildUserMessage(title, description string, imageTexts []string) string {
	var b strings.Builder
	b.WriteString("Title:\n")
	b.WriteString(title)
	b.WriteString("\n\nDescription:\n")
	b.WriteString(description)

	blocks := make([]string, 0, len(imageTexts))
	for i, text := range imageTexts {
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("--- OCR Result for Image %d ---\n%s", i+1, text))
	}
	if len(blocks) > 0 {
		b.WriteString("\n\nImage texts (OCR Results):\n")
		b.WriteString(strings.Join(blocks, "\n\n"))
	}
	return b.String()
}
