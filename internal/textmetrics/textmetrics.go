// Package textmetrics implements the classic readability indices over plain
// text. All functions are pure and safe for concurrent use.
package textmetrics

import (
	"math"
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[A-Za-z']+`)

// Words returns the alphabetic tokens of the text.
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// SentenceCount returns the number of sentences, never less than 1 for
// non-empty text.
func SentenceCount(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			count++
		}
	}
	if count == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return count
}

// SyllableCount estimates the syllables in a single word by counting vowel
// groups, discounting a silent trailing "e".
func SyllableCount(word string) int {
	word = strings.ToLower(strings.Trim(word, "'"))
	if word == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// FleschReadingEase computes the Flesch reading-ease score. Higher values
// indicate easier text; business prose typically lands between 40 and 70.
func FleschReadingEase(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}
	sentences := float64(SentenceCount(text))
	syllables := 0
	for _, w := range words {
		syllables += SyllableCount(w)
	}

	return 206.835 - 1.015*(float64(len(words))/sentences) - 84.6*(float64(syllables)/float64(len(words)))
}

// GunningFog computes the Gunning fog index, estimating the years of formal
// education needed to understand the text on first reading.
func GunningFog(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}
	sentences := float64(SentenceCount(text))
	hard := float64(polysyllableCount(words))

	return 0.4 * (float64(len(words))/sentences + 100*hard/float64(len(words)))
}

// SMOGIndex computes the SMOG grade from the polysyllable density.
func SMOGIndex(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}
	sentences := float64(SentenceCount(text))
	poly := float64(polysyllableCount(words))

	return 1.0430*math.Sqrt(poly*30/sentences) + 3.1291
}

// ColemanLiauIndex computes the Coleman-Liau grade from letter and sentence
// densities per 100 words.
func ColemanLiauIndex(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}
	letters := 0
	for _, w := range words {
		for _, r := range w {
			if r != '\'' {
				letters++
			}
		}
	}
	l := float64(letters) / float64(len(words)) * 100
	s := float64(SentenceCount(text)) / float64(len(words)) * 100

	return 0.0588*l - 0.296*s - 15.8
}

// DaleChallReadabilityScore computes the Dale-Chall score using a syllable
// based approximation of the familiar-word list: words of one or two
// syllables count as familiar.
func DaleChallReadabilityScore(text string) float64 {
	words := Words(text)
	if len(words) == 0 {
		return 0
	}
	difficult := float64(polysyllableCount(words))
	pdw := difficult / float64(len(words)) * 100
	asl := float64(len(words)) / float64(SentenceCount(text))

	score := 0.1579*pdw + 0.0496*asl
	if pdw > 5 {
		score += 3.6365
	}
	return score
}

func polysyllableCount(words []string) int {
	count := 0
	for _, w := range words {
		if SyllableCount(w) >= 3 {
			count++
		}
	}
	return count
}
