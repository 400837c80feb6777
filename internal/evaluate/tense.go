package evaluate

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/talentops/resume-quality/internal/lingo"
	"github.com/talentops/resume-quality/internal/textkit"
)

// Timeline checks tense agreement between employment bullets and the
// open/closed state of each role, and detects gaps and overlaps between
// consecutive roles.
type Timeline struct {
	cfg  TimelineTuning
	deps Deps
	now  func() time.Time
}

// NewTimeline creates the tense and timeline evaluator.
func NewTimeline(cfg TimelineTuning, deps Deps) *Timeline {
	return &Timeline{cfg: cfg, deps: deps, now: time.Now}
}

func (t *Timeline) Name() string { return "timeline" }

var experienceHeaders = []string{
	"experience", "work history", "employment", "jobs", "professional experience",
}

var dateRangePattern = regexp.MustCompile(
	`(?i)\b((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4})\s*[-–—]\s*` +
		`((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}|present|current)`,
)

// irregularPast covers common irregular past-tense verbs that the -ed suffix
// heuristic misses.
var irregularPast = map[string]struct{}{
	"ran": {}, "spoke": {}, "wrote": {}, "ate": {}, "drank": {}, "drove": {},
	"broke": {}, "began": {}, "flew": {}, "knew": {}, "took": {}, "saw": {},
	"came": {}, "went": {}, "built": {}, "led": {}, "made": {}, "grew": {},
	"held": {}, "taught": {}, "brought": {}, "sold": {}, "won": {}, "wore": {},
}

type role struct {
	start    time.Time
	end      *time.Time // nil for an ongoing role
	bullets  []string
	rawDates string
}

func (t *Timeline) Evaluate(ctx context.Context, text string) (Result, error) {
	experience := textkit.ExtractSection(text, experienceHeaders)
	if experience == "" {
		return Result{
			Score:   t.cfg.NeutralScore,
			Details: map[string]any{"reason": "no work experience section found"},
		}, nil
	}

	entries := extractWorkEntries(experience)
	if len(entries) == 0 {
		return Result{
			Score:   t.cfg.NeutralScore,
			Details: map[string]any{"reason": "no dated work experience entries found"},
		}, nil
	}

	var roles []role
	var parseErrors []map[string]any
	for i, entry := range entries {
		start, end, err := parseDateRange(entry.dates)
		if err != nil {
			parseErrors = append(parseErrors, map[string]any{
				"entry": i,
				"dates": entry.dates,
				"error": err.Error(),
			})
			continue
		}
		roles = append(roles, role{start: start, end: end, bullets: entry.bullets, rawDates: entry.dates})
	}

	if len(roles) == 0 {
		return Result{
			Score: t.cfg.NeutralScore,
			Details: map[string]any{
				"reason":       "no parseable work experience entries",
				"parse_errors": parseErrors,
			},
		}, nil
	}

	sort.Slice(roles, func(i, j int) bool { return roles[i].start.Before(roles[j].start) })

	gaps, overlaps := t.timelineIssues(roles)
	tenseErrors := t.tenseErrors(ctx, roles)

	penalties := map[string]float64{
		"tense_errors": float64(len(tenseErrors)) * t.cfg.TenseErrorWeight,
		"gaps":         float64(len(gaps)) * t.cfg.GapWeight,
		"date_errors":  float64(len(parseErrors)) * t.cfg.DateErrorWeight,
		"overlaps":     float64(len(overlaps)) * t.cfg.OverlapWeight,
	}

	total := 0.0
	for _, p := range penalties {
		total += p
	}

	score := math.Max(0, 100-total)

	return Result{
		Score: score,
		Details: map[string]any{
			"penalties":    penalties,
			"gaps":         gaps,
			"overlaps":     overlaps,
			"tense_errors": tenseErrors,
			"parse_errors": parseErrors,
			"roles_count":  len(roles),
		},
	}, nil
}

type workEntry struct {
	dates   string
	bullets []string
}

// extractWorkEntries locates date-range spans and treats the text between
// consecutive spans as that entry's bullets.
func extractWorkEntries(text string) []workEntry {
	matches := dateRangePattern.FindAllStringIndex(text, -1)

	entries := make([]workEntry, 0, len(matches))
	for i, loc := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])

		bullets := textkit.ExtractBullets(body)
		if len(bullets) == 0 && body != "" {
			bullets = []string{body}
		}

		entries = append(entries, workEntry{
			dates:   text[loc[0]:loc[1]],
			bullets: bullets,
		})
	}

	return entries
}

var rangeSeparator = regexp.MustCompile(`\s*(?:–|—|-|\bto\b|\bthrough\b|\buntil\b)\s*`)

func parseDateRange(raw string) (time.Time, *time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil, fmt.Errorf("empty date range")
	}

	parts := rangeSeparator.Split(raw, 2)
	if len(parts) < 2 {
		return time.Time{}, nil, fmt.Errorf("no range separator in %q", raw)
	}

	start, err := parseMonthYear(parts[0])
	if err != nil {
		return time.Time{}, nil, err
	}

	endRaw := strings.ToLower(strings.TrimSpace(parts[1]))
	if endRaw == "present" || endRaw == "current" {
		return start, nil, nil
	}

	end, err := parseMonthYear(parts[1])
	if err != nil {
		return time.Time{}, nil, err
	}

	return start, &end, nil
}

var monthYearLayouts = []string{"January 2006", "Jan 2006"}

func parseMonthYear(raw string) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(raw, ".", ""))
	cleaned := strings.Join(fields, " ")
	for _, layout := range monthYearLayouts {
		if ts, err := time.Parse(layout, cleaned); err == nil {
			return ts, nil
		}
	}
	// Abbreviations like "Sept" are neither a full month name nor the
	// standard three-letter form, so retry on the truncated month.
	if len(fields) == 2 && len(fields[0]) > 3 {
		short := fields[0][:3] + " " + fields[1]
		if ts, err := time.Parse("Jan 2006", short); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %s", strings.TrimSpace(raw))
}

// timelineIssues flags gaps above the configured maximum and overlapping
// roles. An ongoing previous role extends to "now" for overlap comparison.
func (t *Timeline) timelineIssues(roles []role) (gaps, overlaps []map[string]any) {
	for i := 1; i < len(roles); i++ {
		previous := roles[i-1]
		current := roles[i]

		if previous.end != nil {
			gapDays := int(current.start.Sub(*previous.end).Hours() / 24)
			if gapDays > t.cfg.MaxGapDays {
				gaps = append(gaps, map[string]any{
					"days": gapDays,
					"from": previous.rawDates,
					"to":   current.rawDates,
				})
			}
		}

		previousEnd := t.now()
		if previous.end != nil {
			previousEnd = *previous.end
		}
		if current.start.Before(previousEnd) {
			overlaps = append(overlaps, map[string]any{
				"from": previous.rawDates,
				"to":   current.rawDates,
			})
		}
	}
	return gaps, overlaps
}

// tenseErrors compares each bullet's dominant verb tense against the tense
// expected for the role: present for ongoing, past for finished.
func (t *Timeline) tenseErrors(ctx context.Context, roles []role) []map[string]any {
	var errors []map[string]any
	for _, r := range roles {
		expected := "past"
		if r.end == nil {
			expected = "present"
		}

		for _, bullet := range r.bullets {
			for _, mismatch := range t.bulletTenseMismatches(ctx, bullet, expected) {
				errors = append(errors, map[string]any{
					"text":     bullet,
					"role":     r.rawDates,
					"token":    mismatch.token,
					"expected": expected,
					"detected": mismatch.detected,
				})
			}
		}
	}
	return errors
}

type tenseMismatch struct {
	token    string
	detected string
}

func (t *Timeline) bulletTenseMismatches(ctx context.Context, bullet, expected string) []tenseMismatch {
	if t.deps.Tagger != nil {
		tokens, err := t.deps.Tagger.Tag(ctx, bullet)
		if err == nil {
			return taggedMismatches(tokens, expected)
		}
		t.deps.logger().Debug("tagger failed, using tense heuristic", zap.Error(err))
	}

	return heuristicMismatches(bullet, expected)
}

func taggedMismatches(tokens []lingo.Token, expected string) []tenseMismatch {
	var mismatches []tenseMismatch
	for _, token := range tokens {
		if token.POS != "VERB" {
			continue
		}
		detected := detectTokenTense(token)
		if detected != "unknown" && detected != expected {
			mismatches = append(mismatches, tenseMismatch{token: token.Text, detected: detected})
		}
	}
	return mismatches
}

func detectTokenTense(token lingo.Token) string {
	switch token.Morph["Tense"] {
	case "Past":
		return "past"
	case "Pres":
		return "present"
	}

	switch token.Tag {
	case "VBD":
		return "past"
	case "VBZ", "VBP", "VBG":
		return "present"
	}

	return wordTense(token.Text)
}

// heuristicMismatches is the fallback without a tagger: only the bullet's
// leading word is classified, and only confident classifications count.
func heuristicMismatches(bullet, expected string) []tenseMismatch {
	words := wordToken.FindAllString(bullet, 1)
	if len(words) == 0 {
		return nil
	}

	detected := wordTense(words[0])
	if detected == "unknown" || detected == expected {
		return nil
	}
	return []tenseMismatch{{token: words[0], detected: detected}}
}

func wordTense(word string) string {
	lower := strings.ToLower(word)
	if _, ok := irregularPast[lower]; ok {
		return "past"
	}
	if strings.HasSuffix(lower, "ed") {
		return "past"
	}
	if strings.HasSuffix(lower, "ing") {
		return "present"
	}
	return "unknown"
}
