package evaluate

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/talentops/resume-quality/internal/lingo"
	"github.com/talentops/resume-quality/internal/textkit"
)

// Grammar quantifies language-mechanics errors reported by the configured
// grammar checker and penalizes them by type, density and clustering.
type Grammar struct {
	cfg  GrammarTuning
	deps Deps
}

// NewGrammar creates the grammar and spelling evaluator.
func NewGrammar(cfg GrammarTuning, deps Deps) *Grammar {
	return &Grammar{cfg: cfg, deps: deps}
}

func (g *Grammar) Name() string { return "grammar" }

var wordToken = regexp.MustCompile(`\w+`)

// Categories are matched in this order; spelling indicators win over
// everything else.
var grammarCategories = []struct {
	name     string
	keywords []string
}{
	{"grammar", []string{"grammar", "verb", "noun", "agreement", "determiner", "tense"}},
	{"punctuation", []string{"punctuation", "comma", "period", "semicolon", "apostrophe"}},
	{"repetition", []string{"repeat", "repetition", "duplicate", "redundant"}},
	{"casing", []string{"case", "capitalization", "uppercase", "lowercase"}},
	{"style", []string{"style", "wordy", "simplify", "passive voice", "consider"}},
}

var spellingIndicators = []string{"spell", "typo", "misspell", "unknown word"}

func (g *Grammar) Evaluate(ctx context.Context, text string) (Result, error) {
	if g.deps.Checker == nil {
		return softFail(g.cfg.FallbackScore, "grammar checker is not configured"), nil
	}

	issues, err := g.collectIssues(ctx, text)
	if err != nil {
		g.deps.logger().Warn("grammar check failed", zap.Error(err))
		return softFail(g.cfg.FallbackScore, err.Error()), nil
	}

	sentenceCount := len(textkit.SplitSentences(text))
	if sentenceCount == 0 {
		sentenceCount = 1
	}
	wordCount := len(wordToken.FindAllString(text, -1))

	counts, positions, categorized := g.categorize(issues)
	totalErrors := 0
	for _, n := range counts {
		totalErrors += n
	}

	weighted := g.weightedPenalty(counts)
	density := g.densityPenalty(totalErrors, sentenceCount)
	proximity := g.proximityPenalty(positions)
	spellingExtra := float64(counts["spelling"]) * g.cfg.SpellingExtraWeight

	lengthFactor := math.Min(1.0, math.Max(0.5, float64(wordCount)/g.cfg.LengthNormalization))

	raw := 100 - (weighted*2+density+proximity+spellingExtra)*lengthFactor

	// Any detected error forces at least a minimum penalty, regardless of
	// the length factor.
	if totalErrors > 0 {
		minPenalty := math.Min(15, float64(totalErrors)*2)
		raw = math.Min(raw, 100-minPenalty)
	}

	score := round1(ClampScore(raw))

	errorRatio := 0.0
	if wordCount > 0 {
		errorRatio = round2(float64(totalErrors) / (float64(wordCount) / 100))
	}

	return Result{
		Score: score,
		Details: map[string]any{
			"error_counts":   counts,
			"total_errors":   totalErrors,
			"word_count":     wordCount,
			"sentence_count": sentenceCount,
			"error_ratio":    errorRatio,
			"penalties": map[string]float64{
				"weighted":  weighted,
				"density":   density,
				"proximity": proximity,
				"spelling":  spellingExtra,
			},
			"error_examples": examplesByCategory(categorized),
		},
	}, nil
}

// collectIssues submits the text in chunks and re-offsets issues found in
// later chunks back into the coordinate space of the full text.
func (g *Grammar) collectIssues(ctx context.Context, text string) ([]lingo.Issue, error) {
	chunks := textkit.Chunk(text, g.cfg.ChunkSize)

	var all []lingo.Issue
	searchFrom := 0
	for i, chunk := range chunks {
		issues, err := g.deps.Checker.Check(ctx, chunk)
		if err != nil {
			return nil, err
		}

		start := 0
		if i > 0 {
			if idx := strings.Index(text[searchFrom:], chunk); idx >= 0 {
				start = searchFrom + idx
			} else {
				start = searchFrom
			}
		}
		searchFrom = start + len(chunk)

		for _, issue := range issues {
			issue.Offset += start
			all = append(all, issue)
		}
	}

	return all, nil
}

type categorizedIssue struct {
	category string
	issue    lingo.Issue
}

func (g *Grammar) categorize(issues []lingo.Issue) (map[string]int, []int, []categorizedIssue) {
	counts := map[string]int{}
	positions := make([]int, 0, len(issues))
	categorized := make([]categorizedIssue, 0, len(issues))

	for _, issue := range issues {
		category := classifyIssue(issue)
		counts[category]++
		positions = append(positions, issue.Offset)
		categorized = append(categorized, categorizedIssue{category: category, issue: issue})
	}

	return counts, positions, categorized
}

func classifyIssue(issue lingo.Issue) string {
	msg := strings.ToLower(issue.Message)
	rule := strings.ToLower(issue.Rule)

	for _, kw := range spellingIndicators {
		if strings.Contains(rule, kw) || strings.Contains(msg, kw) {
			return "spelling"
		}
	}

	for _, cat := range grammarCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(msg, kw) || strings.Contains(rule, kw) {
				return cat.name
			}
		}
	}

	return "other"
}

func (g *Grammar) weightedPenalty(counts map[string]int) float64 {
	var penalty float64
	for category, count := range counts {
		weight, ok := g.cfg.ErrorWeights[category]
		if !ok {
			weight = g.cfg.DefaultErrorWeight
		}
		penalty += float64(count) * weight
	}
	return penalty
}

func (g *Grammar) densityPenalty(totalErrors, sentenceCount int) float64 {
	density := float64(totalErrors) / float64(sentenceCount)
	excess := math.Max(0, density-g.cfg.MaxErrorsPerSentence)
	return math.Min(g.cfg.MaxDensityPenalty, excess*g.cfg.PenaltyPerExcess)
}

func (g *Grammar) proximityPenalty(positions []int) float64 {
	if len(positions) < 2 {
		return 0
	}

	sort.Ints(positions)
	total := 0.0
	for i := 1; i < len(positions); i++ {
		total += math.Max(1, float64(positions[i]-positions[i-1]))
	}
	avg := total / float64(len(positions)-1)

	if avg >= g.cfg.CriticalDistance {
		return 0
	}
	return math.Min((g.cfg.CriticalDistance-avg)*g.cfg.ProximityFactor, g.cfg.MaxProximityPenalty)
}

// examplesByCategory keeps up to three representative issues per category.
func examplesByCategory(categorized []categorizedIssue) map[string][]map[string]any {
	examples := map[string][]map[string]any{}
	for _, entry := range categorized {
		if len(examples[entry.category]) >= 3 {
			continue
		}
		suggestions := entry.issue.Replacements
		if len(suggestions) > 3 {
			suggestions = suggestions[:3]
		}
		examples[entry.category] = append(examples[entry.category], map[string]any{
			"message":     entry.issue.Message,
			"suggestions": suggestions,
		})
	}
	return examples
}
