package evaluate

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/talentops/resume-quality/internal/lingo"
	"github.com/talentops/resume-quality/internal/textkit"
)

//go:embed action_verbs.json
var actionVerbsJSON []byte

// verbLexicon holds the general action-verb vocabulary plus optional
// domain-specific extensions.
type verbLexicon struct {
	general map[string]struct{}
	domains map[string]map[string]struct{}
}

type verbsFile struct {
	General []string            `json:"general"`
	Domains map[string][]string `json:"domains"`
}

func newVerbLexicon(raw []byte) (*verbLexicon, error) {
	var file verbsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing verb list: %w", err)
	}

	lex := &verbLexicon{
		general: make(map[string]struct{}, len(file.General)),
		domains: make(map[string]map[string]struct{}, len(file.Domains)),
	}
	lex.add(file)
	return lex, nil
}

func (l *verbLexicon) add(file verbsFile) {
	for _, verb := range file.General {
		l.general[strings.ToLower(verb)] = struct{}{}
	}
	for domain, verbs := range file.Domains {
		set := l.domains[domain]
		if set == nil {
			set = make(map[string]struct{}, len(verbs))
			l.domains[domain] = set
		}
		for _, verb := range verbs {
			set[strings.ToLower(verb)] = struct{}{}
		}
	}
}

func (l *verbLexicon) contains(word, domain string) bool {
	if _, ok := l.general[word]; ok {
		return true
	}
	return l.inDomain(word, domain)
}

func (l *verbLexicon) inDomain(word, domain string) bool {
	if domain == "" {
		return false
	}
	_, ok := l.domains[domain][word]
	return ok
}

// weakStarters are openers that describe duties rather than outcomes.
var weakStarters = map[string]struct{}{
	"responsible": {}, "duties": {}, "working": {}, "helping": {},
	"assisting": {}, "supporting": {}, "participating": {}, "attending": {},
}

// ActionVerb scores how forcefully experience bullets open: strong action
// verbs score up, weak starters and repeated verbs score down, and verbs
// followed by a measurable object score extra.
type ActionVerb struct {
	cfg  ActionVerbTuning
	deps Deps
	lex  *verbLexicon
}

// NewActionVerb creates the action-verb evaluator with the embedded verb list.
func NewActionVerb(cfg ActionVerbTuning, deps Deps) (*ActionVerb, error) {
	lex, err := newVerbLexicon(actionVerbsJSON)
	if err != nil {
		return nil, err
	}
	return &ActionVerb{cfg: cfg, deps: deps, lex: lex}, nil
}

func (a *ActionVerb) Name() string { return "action_verbs" }

// LoadVerbsFile merges an external verb list into the lexicon.
func (a *ActionVerb) LoadVerbsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading verb list: %w", err)
	}

	var file verbsFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing verb list %s: %w", path, err)
	}

	a.lex.add(file)
	return nil
}

// AddVerbs extends the general vocabulary at runtime.
func (a *ActionVerb) AddVerbs(verbs ...string) {
	a.lex.add(verbsFile{General: verbs})
}

func (a *ActionVerb) Evaluate(ctx context.Context, text string) (Result, error) {
	bullets := a.collectBullets(text)
	if len(bullets) == 0 {
		return Result{
			Score:   a.cfg.FallbackScore,
			Details: map[string]any{"reason": "no bullet points found"},
		}, nil
	}

	actionCount := 0
	weakCount := 0
	nonActionCount := 0
	domainCount := 0
	verbUses := map[string]int{}
	domainVerbs := map[string]struct{}{}
	contextTotal := 0.0
	var weakExamples []string

	for _, bullet := range bullets {
		first := leadingWord(bullet)
		if first == "" {
			nonActionCount++
			continue
		}

		if _, weak := weakStarters[first]; weak {
			weakCount++
			if len(weakExamples) < 3 {
				weakExamples = append(weakExamples, bullet)
			}
			continue
		}

		matched := ""
		for _, candidate := range a.verbCandidates(ctx, bullet, first) {
			if a.lex.contains(candidate, a.cfg.Domain) {
				matched = candidate
				break
			}
		}
		if matched == "" {
			nonActionCount++
			continue
		}

		actionCount++
		verbUses[matched]++
		if a.lex.inDomain(matched, a.cfg.Domain) {
			domainCount++
			domainVerbs[matched] = struct{}{}
		}
		contextTotal += a.verbContext(ctx, bullet)
	}

	duplicates := 0
	for _, uses := range verbUses {
		duplicates += uses - 1
	}

	contextBonus := 0.0
	if actionCount > 0 {
		contextBonus = (contextTotal/float64(actionCount) - 0.5) * 20
	}

	raw := a.cfg.ActionReward*float64(actionCount) -
		a.cfg.NonActionPenalty*float64(weakCount+nonActionCount) -
		a.cfg.DuplicatePenalty*float64(duplicates) +
		contextBonus

	score := ClampScore(50 + raw*100/(2*float64(len(bullets))))

	details := map[string]any{
		"bullet_count":     len(bullets),
		"action_count":     actionCount,
		"weak_count":       weakCount,
		"non_action_count": nonActionCount,
		"duplicates":       duplicates,
		"context_bonus":    round2(contextBonus),
		"weak_examples":    weakExamples,
		"top_verbs":        topVerbs(verbUses, 5),
	}
	if a.cfg.Domain != "" {
		used := make([]string, 0, len(domainVerbs))
		for verb := range domainVerbs {
			used = append(used, verb)
		}
		sort.Strings(used)
		details["domain_specific"] = map[string]any{
			"domain":         a.cfg.Domain,
			"match_fraction": round2(float64(domainCount) / float64(len(bullets))),
			"verbs_used":     used,
		}
	}

	return Result{Score: score, Details: details}, nil
}

// collectBullets prefers bullets from the experience section and falls back
// to bullets from the whole document.
func (a *ActionVerb) collectBullets(text string) []string {
	if experience := textkit.ExtractSection(text, experienceHeaders); experience != "" {
		if bullets := textkit.ExtractBullets(experience); len(bullets) > 0 {
			return bullets
		}
	}
	return textkit.ExtractBullets(text)
}

// verbContext rates how concrete a bullet is. A verb acting on a direct
// object beats a bare verb, and a quantified object beats both.
func (a *ActionVerb) verbContext(ctx context.Context, bullet string) float64 {
	score := 0.5
	if a.deps.Tagger == nil {
		return score
	}

	tokens, err := a.deps.Tagger.Tag(ctx, bullet)
	if err != nil {
		a.deps.logger().Debug("tagger failed, using neutral verb context", zap.Error(err))
		return score
	}

	hasObject := false
	hasQuantifier := false
	for _, token := range tokens {
		switch token.Dep {
		case "dobj", "obj", "pobj":
			hasObject = true
		case "nummod", "quantmod":
			hasQuantifier = true
		}
		if token.POS == "NUM" {
			hasQuantifier = true
		}
	}

	if hasObject {
		score += 0.25
	}
	if hasQuantifier {
		score += 0.25
	}
	return score
}

// verbCandidates picks the words to try against the lexicon for a bullet.
// With a tagger available the main verb of the clause wins over the literal
// first word, so adverb-led bullets like "Successfully managed the team"
// still resolve to their verb. The lemma is tried alongside the surface
// form so inflections match a base-form vocabulary.
func (a *ActionVerb) verbCandidates(ctx context.Context, bullet, first string) []string {
	if a.deps.Tagger == nil {
		return []string{first}
	}

	tokens, err := a.deps.Tagger.Tag(ctx, bullet)
	if err != nil {
		a.deps.logger().Debug("tagger failed, matching on leading word", zap.Error(err))
		return []string{first}
	}

	var verb *lingo.Token
	for i := range tokens {
		if tokens[i].POS != "VERB" {
			continue
		}
		if tokens[i].Dep == "ROOT" {
			verb = &tokens[i]
			break
		}
		if verb == nil {
			verb = &tokens[i]
		}
	}
	if verb == nil {
		return []string{first}
	}

	candidates := []string{strings.ToLower(verb.Text)}
	if lemma := strings.ToLower(verb.Lemma); lemma != "" && lemma != candidates[0] {
		candidates = append(candidates, lemma)
	}
	return candidates
}

func leadingWord(bullet string) string {
	words := wordToken.FindAllString(bullet, 1)
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(words[0])
}

func topVerbs(uses map[string]int, limit int) []string {
	verbs := make([]string, 0, len(uses))
	for verb := range uses {
		verbs = append(verbs, verb)
	}
	sort.Slice(verbs, func(i, j int) bool {
		if uses[verbs[i]] != uses[verbs[j]] {
			return uses[verbs[i]] > uses[verbs[j]]
		}
		return verbs[i] < verbs[j]
	})
	if len(verbs) > limit {
		verbs = verbs[:limit]
	}
	return verbs
}
