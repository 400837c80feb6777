package textkit

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultEndHeaders are the section headers that commonly terminate a section
// when no explicit end marker is supplied.
var DefaultEndHeaders = []string{
	"education", "skills", "projects", "certifications",
	"interests", "awards", "publications", "references",
}

var bulletLine = regexp.MustCompile(`^[ \t]*([•\-*>–])[ \t]+(.+)$`)

// ExtractBullets returns bullet-marked lines found in the text. When no bullet
// glyphs are present it falls back to sentence splitting, keeping fragments
// longer than 10 characters as bullet surrogates.
func ExtractBullets(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			bullets = append(bullets, strings.TrimSpace(m[2]))
		}
	}

	if len(bullets) > 0 {
		return bullets
	}

	for _, sentence := range SplitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 10 {
			bullets = append(bullets, sentence)
		}
	}

	return bullets
}

// SplitSentences splits text after terminal punctuation followed by whitespace.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		i++
		for i < len(runes) && isSpace(runes[i]) {
			i++
		}
		start = i
		i--
	}
	if start < len(runes) {
		if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// ExtractSection locates the first case-insensitive whole-word match of any
// header keyword and returns the text up to the first following end keyword.
// End keywords that are also header keywords are skipped, and the search for
// the end boundary starts past the matched header so a header never terminates
// itself. An empty string is returned when no header matches; the unbounded
// remainder is returned when no end keyword is found.
func ExtractSection(text string, headers []string, endHeaders ...string) string {
	if len(endHeaders) == 0 {
		endHeaders = DefaultEndHeaders
	}

	start, headerEnd := -1, -1
	for _, header := range headers {
		loc := wholeWord(header).FindStringIndex(text)
		if loc != nil {
			start, headerEnd = loc[0], loc[1]
			break
		}
	}
	if start < 0 {
		return ""
	}

	headerSet := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		headerSet[strings.ToLower(h)] = struct{}{}
	}

	end := len(text)
	rest := text[headerEnd:]
	for _, marker := range endHeaders {
		if _, dup := headerSet[strings.ToLower(marker)]; dup {
			continue
		}
		loc := wholeWord(marker).FindStringIndex(rest)
		if loc != nil && headerEnd+loc[0] < end {
			end = headerEnd + loc[0]
		}
	}

	return strings.TrimSpace(text[start:end])
}

func wholeWord(keyword string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(keyword)))
}
