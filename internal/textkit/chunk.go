package textkit

import "strings"

// Chunk splits text into pieces no longer than maxLen characters, preferring
// paragraph boundaries and falling back to sentence boundaries for oversized
// paragraphs. Chunks preserve their original order.
func Chunk(text string, maxLen int) []string {
	if maxLen <= 0 || len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		if current.Len()+len(para)+2 <= maxLen {
			current.WriteString(para)
			current.WriteString("\n\n")
			continue
		}

		flush()

		if len(para) <= maxLen {
			current.WriteString(para)
			current.WriteString("\n\n")
			continue
		}

		for _, sentence := range SplitSentences(para) {
			if current.Len()+len(sentence)+1 > maxLen {
				flush()
			}
			current.WriteString(sentence)
			current.WriteString(" ")
		}
		flush()
	}

	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
