package evaluate

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Formatting checks heading, bullet, date and whitespace consistency across
// the document. Each category accrues an individually capped penalty.
type Formatting struct {
	cfg  FormattingTuning
	deps Deps
}

// NewFormatting creates the formatting evaluator.
func NewFormatting(cfg FormattingTuning, deps Deps) *Formatting {
	return &Formatting{cfg: cfg, deps: deps}
}

func (f *Formatting) Name() string { return "formatting" }

var headingShapes = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z][a-z]+(?: [A-Z][a-z]+)*:?$`),     // Title Case
	regexp.MustCompile(`^[A-Z\s&]+:?$`),                        // ALL CAPS
	regexp.MustCompile(`^[A-Z][a-z]+(?:[-/&][A-Z][a-z]+)*:?$`), // Mixed
}

var formattingSectionChecks = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"education", regexp.MustCompile(`(?i)\b(education|academic)\b`)},
	{"experience", regexp.MustCompile(`(?i)\b(experience|employment|work\s*history)\b`)},
	{"skills", regexp.MustCompile(`(?i)\b(skills?|competencies|expertise)\b`)},
	{"projects", regexp.MustCompile(`(?i)\b(projects|portfolio)\b`)},
}

var bulletMarker = regexp.MustCompile(`^([ \t]*)([•\-*●◦○]|\d+\.)\s+`)

var datePatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"month_year", regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{4}\b`)},
	{"mm/yyyy", regexp.MustCompile(`\b(0[1-9]|1[0-2])/\d{4}\b`)},
	{"yyyy-mm", regexp.MustCompile(`\d{4}-(0[1-9]|1[0-2])\b`)},
	{"full_date", regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)},
	{"year_range", regexp.MustCompile(`\d{4}[-–—]\d{4}\b`)},
	{"month_range", regexp.MustCompile(`(?i)(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* [-–—] `)},
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

func (f *Formatting) Evaluate(_ context.Context, text string) (Result, error) {
	lines := strings.Split(text, "\n")
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimSpace(line)
	}

	sections := f.analyzeSections(trimmed)
	bullets := analyzeBulletStyles(lines)
	dates := analyzeDateFormats(trimmed)
	spacing := analyzeSpacing(trimmed)

	penalties := map[string]float64{}

	penalties["sections"] = math.Min(
		float64(len(sections.missing))*f.cfg.MissingSectionPenalty,
		f.cfg.MaxCategoryPenalty,
	)

	if n := len(bullets.styles); n > 1 {
		penalties["bullets"] = math.Min(float64(n-1)*f.cfg.BulletStylePenalty, f.cfg.MaxCategoryPenalty)
	}

	if n := len(dates.formats); n > 1 {
		penalties["dates"] = math.Min(float64(n-1)*f.cfg.DateFormatPenalty, f.cfg.MaxCategoryPenalty)
	}

	penalties["spacing"] = math.Min(float64(spacing.issues)*f.cfg.SpacingIssuePenalty, f.cfg.MaxCategoryPenalty)

	if sections.mixedStyle {
		penalties["headings"] = f.cfg.MixedHeadingPenalty
	}

	total := 0.0
	for category, penalty := range penalties {
		weight, ok := f.cfg.Weights[category]
		if !ok {
			weight = 1.0
		}
		total += math.Min(penalty*weight, f.cfg.MaxCategoryPenalty)
	}

	score := ClampScore(100 - math.Floor(total))

	return Result{
		Score: score,
		Details: map[string]any{
			"penalties": penalties,
			"sections": map[string]any{
				"headings":    sections.headings,
				"styles":      sections.styles,
				"mixed_style": sections.mixedStyle,
				"present":     sections.present,
				"missing":     sections.missing,
			},
			"bullets": map[string]any{
				"count":  bullets.count,
				"styles": bullets.styles,
			},
			"dates": map[string]any{
				"formats":  dates.formats,
				"examples": dates.examples,
			},
			"spacing": map[string]any{
				"multi_space_count": spacing.multiSpace,
				"consecutive_empty": spacing.consecutiveEmpty,
				"issues":            spacing.issues,
			},
		},
	}, nil
}

type sectionAnalysis struct {
	headings   []string
	styles     []string
	mixedStyle bool
	present    []string
	missing    []string
}

func (f *Formatting) analyzeSections(lines []string) sectionAnalysis {
	var headings []string
	styleSet := map[string]struct{}{}
	presentSet := map[string]struct{}{}

	for _, line := range lines {
		if line == "" || !isHeadingShaped(line) {
			continue
		}
		headings = append(headings, line)
		styleSet[headingCase(line)] = struct{}{}

		for _, check := range formattingSectionChecks {
			if check.pattern.MatchString(line) {
				presentSet[check.name] = struct{}{}
				break
			}
		}
	}

	analysis := sectionAnalysis{
		headings:   headings,
		mixedStyle: len(styleSet) > 1,
	}
	for style := range styleSet {
		analysis.styles = append(analysis.styles, style)
	}
	for _, check := range formattingSectionChecks {
		if _, ok := presentSet[check.name]; ok {
			analysis.present = append(analysis.present, check.name)
		} else {
			analysis.missing = append(analysis.missing, check.name)
		}
	}

	return analysis
}

func isHeadingShaped(line string) bool {
	if len(line) >= 40 {
		return false
	}
	for _, shape := range headingShapes {
		if shape.MatchString(line) {
			return true
		}
	}
	return false
}

func headingCase(line string) string {
	switch {
	case line == strings.ToUpper(line):
		return "all_caps"
	case isTitleCase(line):
		return "title_case"
	default:
		return "mixed_case"
	}
}

func isTitleCase(s string) bool {
	sawWord := false
	for _, word := range strings.Fields(strings.TrimSuffix(s, ":")) {
		runes := []rune(word)
		if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
			continue
		}
		sawWord = true
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes[1:] {
			if unicode.IsUpper(r) {
				return false
			}
		}
	}
	return sawWord
}

type bulletAnalysis struct {
	count  int
	styles []string
}

// analyzeBulletStyles records every distinct glyph/indent combination.
func analyzeBulletStyles(lines []string) bulletAnalysis {
	styleSet := map[string]struct{}{}
	count := 0

	for _, line := range lines {
		m := bulletMarker.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		count++
		styleSet[fmt.Sprintf("%s@%d", m[2], len(m[1]))] = struct{}{}
	}

	analysis := bulletAnalysis{count: count}
	for style := range styleSet {
		analysis.styles = append(analysis.styles, style)
	}
	return analysis
}

type dateAnalysis struct {
	formats  []string
	examples map[string]string
}

func analyzeDateFormats(lines []string) dateAnalysis {
	analysis := dateAnalysis{examples: map[string]string{}}

	for _, entry := range datePatterns {
		for _, line := range lines {
			if m := entry.pattern.FindString(line); m != "" {
				if _, seen := analysis.examples[entry.name]; !seen {
					analysis.formats = append(analysis.formats, entry.name)
				}
				analysis.examples[entry.name] = m
			}
		}
	}

	return analysis
}

type spacingAnalysis struct {
	multiSpace       int
	consecutiveEmpty int
	issues           int
}

func analyzeSpacing(lines []string) spacingAnalysis {
	var analysis spacingAnalysis

	prevEmpty := false
	for _, line := range lines {
		if multiSpace.MatchString(line) {
			analysis.multiSpace++
			analysis.issues++
		}

		if line == "" {
			if prevEmpty {
				analysis.consecutiveEmpty++
				analysis.issues++
			}
			prevEmpty = true
		} else {
			prevEmpty = false
		}
	}

	return analysis
}
