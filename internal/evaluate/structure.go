package evaluate

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// Structure checks the presence, order and completeness of the expected
// resume sections. Heading detection here is intentionally independent from
// the formatting evaluator's heuristics so the two scores stay decorrelated.
type Structure struct {
	cfg  StructureTuning
	deps Deps
}

// NewStructure creates the structure evaluator.
func NewStructure(cfg StructureTuning, deps Deps) *Structure {
	return &Structure{cfg: cfg, deps: deps}
}

func (s *Structure) Name() string { return "structure" }

// sectionPatterns classifies headings into section types. Order matters: the
// first matching pattern wins.
var sectionPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"contact", regexp.MustCompile(`(?i)\b(?:contact|contact info|personal info|address|phone|email)\b`)},
	{"summary", regexp.MustCompile(`(?i)\b(?:summary|profile|objective|about me|professional summary)\b`)},
	{"experience", regexp.MustCompile(`(?i)\b(?:experience|employment|work history|professional experience|career)\b`)},
	{"education", regexp.MustCompile(`(?i)\b(?:education|academic|degree|university|school|college)\b`)},
	{"skills", regexp.MustCompile(`(?i)\b(?:skills|technical skills|core competencies|expertise|qualifications)\b`)},
	{"projects", regexp.MustCompile(`(?i)\b(?:projects|portfolio|works|case studies)\b`)},
	{"certifications", regexp.MustCompile(`(?i)\b(?:certifications|certificates|licenses|credentials)\b`)},
	{"awards", regexp.MustCompile(`(?i)\b(?:awards|honors|achievements|recognitions)\b`)},
	{"publications", regexp.MustCompile(`(?i)\b(?:publications|papers|articles|research|presentations)\b`)},
	{"languages", regexp.MustCompile(`(?i)\b(?:languages|language skills)\b`)},
	{"volunteer", regexp.MustCompile(`(?i)\b(?:volunteer|community service|activities)\b`)},
	{"interests", regexp.MustCompile(`(?i)\b(?:interests|hobbies|personal)\b`)},
	{"references", regexp.MustCompile(`(?i)\b(?:references|referees)\b`)},
}

// idealOrder is the conventional resume section sequence used for inversion
// counting. Unknown sections sort to the end.
var idealOrder = []string{
	"contact", "summary", "experience", "education",
	"skills", "projects", "certifications", "awards",
	"publications", "languages", "volunteer", "interests", "references",
}

type section struct {
	heading   string
	content   string
	lineIndex int
	format    headingFormat
}

type headingFormat struct {
	caseStyle string
	colon     bool
	bullet    bool
}

func (s *Structure) Evaluate(_ context.Context, text string) (Result, error) {
	sections := extractSections(text)

	missing := s.missingSections(sections)
	orderPenalty, orderIssues := s.orderPenalty(sections)
	completeness := completenessScore(sections, s.cfg.MaxCompletenessPenalty)
	consistency := consistencyScore(sections, s.cfg.MaxConsistencyPenalty)

	missingPenalty := 0.0
	for _, name := range missing {
		missingPenalty += s.cfg.Essentials[name]
	}
	missingPenalty = math.Min(missingPenalty, s.cfg.MaxMissingPenalty)

	penalties := map[string]float64{
		"missing":      missingPenalty,
		"order":        orderPenalty,
		"completeness": s.cfg.MaxCompletenessPenalty - completeness,
		"formatting":   s.cfg.MaxConsistencyPenalty - consistency,
	}

	maxPenalty := s.cfg.MaxMissingPenalty + s.cfg.MaxOrderPenalty +
		s.cfg.MaxCompletenessPenalty + s.cfg.MaxConsistencyPenalty

	total := 0.0
	for _, p := range penalties {
		total += p
	}
	total = math.Min(total, maxPenalty)

	score := round1(ClampScore(100 - total*100/maxPenalty))

	found := sectionsByPosition(sections)

	return Result{
		Score: score,
		Details: map[string]any{
			"sections_found":               found,
			"missing_sections":             missing,
			"order_issues":                 orderIssues,
			"completeness_score":           completeness,
			"formatting_consistency_score": consistency,
			"penalties":                    penalties,
		},
	}, nil
}

// extractSections detects heading-shaped lines, classifies them and assigns
// each classified heading the content up to the next heading. A later
// duplicate heading of the same type replaces the earlier one.
func extractSections(text string) map[string]section {
	lines := strings.Split(text, "\n")

	type headingAt struct {
		index int
		text  string
	}
	var headings []headingAt
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isLikelyHeading(line) {
			headings = append(headings, headingAt{index: i, text: line})
		}
	}

	sections := map[string]section{}
	for i, h := range headings {
		sectionType := identifySectionType(h.text)
		if sectionType == "" {
			continue
		}

		start := h.index + 1
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].index
		}
		content := strings.TrimSpace(strings.Join(lines[start:end], "\n"))

		sections[sectionType] = section{
			heading:   h.text,
			content:   content,
			lineIndex: h.index,
			format:    analyzeHeadingFormat(h.text),
		}
	}

	return sections
}

func isLikelyHeading(line string) bool {
	if len(line) < 40 &&
		(line == strings.ToUpper(line) || isTitleCase(line) || strings.HasSuffix(line, ":")) {
		return true
	}
	return identifySectionType(line) != ""
}

func identifySectionType(heading string) string {
	for _, entry := range sectionPatterns {
		if entry.pattern.MatchString(heading) {
			return entry.name
		}
	}
	return ""
}

func analyzeHeadingFormat(heading string) headingFormat {
	return headingFormat{
		caseStyle: headingCase(heading),
		colon:     strings.HasSuffix(heading, ":"),
		bullet:    strings.ContainsAny(heading, "•-*"),
	}
}

func (s *Structure) missingSections(sections map[string]section) []string {
	var missing []string
	for _, name := range idealOrder {
		if _, essential := s.cfg.Essentials[name]; !essential {
			continue
		}
		if _, ok := sections[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func idealIndex(sectionType string) int {
	for i, name := range idealOrder {
		if name == sectionType {
			return i
		}
	}
	return len(idealOrder)
}

func sectionsByPosition(sections map[string]section) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && sections[names[j-1]].lineIndex > sections[names[j]].lineIndex; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}

// orderPenalty counts pairwise inversions against the ideal section order.
func (s *Structure) orderPenalty(sections map[string]section) (float64, []string) {
	if len(sections) == 0 {
		return s.cfg.MaxOrderPenalty, nil
	}

	actual := sectionsByPosition(sections)

	var issues []string
	violations := 0
	for i, name := range actual {
		for _, other := range actual[i+1:] {
			if idealIndex(name) > idealIndex(other) {
				violations++
				issues = append(issues, name+" should come after "+other)
			}
		}
	}

	return math.Min(s.cfg.MaxOrderPenalty, float64(violations)*s.cfg.OrderViolationPenalty), issues
}

var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern   = regexp.MustCompile(`[\d\-+()\s]{10,}`)
	degreePattern  = regexp.MustCompile(`(?i)\b(?:degree|bachelor|master|phd|diploma|certificate)\b`)
	yearPattern    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	companyPattern = regexp.MustCompile(`[A-Z][a-z]+ (?:Inc|LLC|Ltd|Co|Corporation|Company)`)
	skillToken     = regexp.MustCompile(`\b[A-Za-z][A-Za-z+#.]{2,}\b`)
)

// completenessScore awards points for expected sub-content per section type,
// up to the completeness cap.
func completenessScore(sections map[string]section, limit float64) float64 {
	earned := 0.0

	if contact, ok := sections["contact"]; ok {
		if emailPattern.MatchString(contact.content) {
			earned += 5
		}
		if phonePattern.MatchString(contact.content) {
			earned += 5
		}
	}

	if education, ok := sections["education"]; ok {
		if degreePattern.MatchString(education.content) {
			earned += 5
		}
		if yearPattern.MatchString(education.content) {
			earned += 2
		}
	}

	if experience, ok := sections["experience"]; ok {
		if companyPattern.MatchString(experience.content) {
			earned += 3
		}
		if yearPattern.MatchString(experience.content) {
			earned += 2
		}
		if hasBulletedLines(experience.content) {
			earned += 5
		}
	}

	if skills, ok := sections["skills"]; ok {
		count := len(skillToken.FindAllString(skills.content, -1))
		earned += math.Min(3, float64(count/5))
	}

	return math.Min(earned, limit)
}

func hasBulletedLines(content string) bool {
	if strings.Count(content, "\n") <= 3 {
		return false
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			return true
		}
	}
	return false
}

// consistencyScore rewards headings that share one casing, colon and bullet
// convention. Fewer distinct conventions earn more points.
func consistencyScore(sections map[string]section, limit float64) float64 {
	if len(sections) < 2 {
		return 0
	}

	caseSet := map[string]struct{}{}
	colonSet := map[bool]struct{}{}
	bulletSet := map[bool]struct{}{}
	for _, sec := range sections {
		caseSet[sec.format.caseStyle] = struct{}{}
		colonSet[sec.format.colon] = struct{}{}
		bulletSet[sec.format.bullet] = struct{}{}
	}

	score := 0.0
	switch len(caseSet) {
	case 1:
		score += 8
	case 2:
		score += 4
	}
	if len(colonSet) == 1 {
		score += 6
	} else {
		score += 3
	}
	if len(bulletSet) == 1 {
		score += 6
	} else {
		score += 3
	}

	return math.Min(score, limit)
}
