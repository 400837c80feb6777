package evaluate

import (
	"context"
	"math"

	"github.com/talentops/resume-quality/internal/textmetrics"
)

// Readability folds five readability indices into a single banded score.
// Business documents should sit in the "acceptable" band; both very hard and
// oversimplified language is penalized.
type Readability struct {
	cfg  ReadabilityTuning
	deps Deps
}

// NewReadability creates the readability evaluator.
func NewReadability(cfg ReadabilityTuning, deps Deps) *Readability {
	return &Readability{cfg: cfg, deps: deps}
}

func (r *Readability) Name() string { return "readability" }

// Band boundaries for the normalized composite, inclusive on both ends.
var readabilityBands = []struct {
	name string
	low  float64
	high float64
}{
	{"unacceptable", 0, 49},
	{"poor", 50, 59},
	{"acceptable", 60, 79},
	{"oversimplified", 80, 100},
}

func (r *Readability) Evaluate(_ context.Context, text string) (Result, error) {
	if len(textmetrics.Words(text)) == 0 {
		return softFail(r.cfg.FallbackScore, "no readable words in text"), nil
	}

	raw := map[string]float64{
		"flesch_ease":  textmetrics.FleschReadingEase(text),
		"gunning_fog":  textmetrics.GunningFog(text),
		"smog":         textmetrics.SMOGIndex(text),
		"coleman_liau": textmetrics.ColemanLiauIndex(text),
		"dale_chall":   textmetrics.DaleChallReadabilityScore(text),
	}

	// Each index is mapped to a 0-100 "higher is better" scale. The grade
	// based indices invert around a 20-grade ceiling; Dale-Chall maps its
	// useful 4-10 range.
	normalized := map[string]float64{
		"flesch_ease":  math.Max(0, math.Min(raw["flesch_ease"], 100)),
		"gunning_fog":  (20 - math.Min(raw["gunning_fog"], 20)) * 5,
		"smog":         (20 - math.Min(raw["smog"], 20)) * 5,
		"coleman_liau": (20 - math.Min(raw["coleman_liau"], 20)) * 5,
		"dale_chall":   (10 - math.Max(math.Min(raw["dale_chall"], 10), 4)) * (100.0 / 6),
	}

	composite := 0.0
	for metric, weight := range r.cfg.Weights {
		composite += normalized[metric] * weight
	}
	composite = ClampScore(composite)

	band := "acceptable"
	for _, b := range readabilityBands {
		if composite >= b.low && composite <= b.high {
			band = b.name
			break
		}
	}

	penalty := r.cfg.BandPenalties[band]
	score := ClampScore(100 - penalty)

	return Result{
		Score: score,
		Details: map[string]any{
			"raw_scores":        raw,
			"normalized_scores": normalized,
			"composite_score":   round1(composite),
			"category":          band,
			"penalty":           penalty,
		},
	}, nil
}
