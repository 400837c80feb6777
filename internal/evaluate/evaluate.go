// Package evaluate contains the resume quality evaluators. Each evaluator
// scores one quality dimension of the raw resume text on a 0-100 scale and
// returns diagnostic details alongside the score.
package evaluate

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/talentops/resume-quality/internal/lingo"
)

// Result is the outcome of a single evaluator run. Score is always within
// [0,100]; Details carries evaluator-specific diagnostics.
type Result struct {
	Score   float64
	Details map[string]any
}

// Evaluator scores one quality dimension of a resume. A returned error marks
// the run as failed; callers substitute a default result in that case.
// Implementations soft-fail internally for expected conditions (missing
// collaborator, insufficient input) and reserve errors for the unexpected.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, text string) (Result, error)
}

// Deps aggregates collaborators shared across evaluators. Any field may be
// nil; evaluators degrade to their documented fallbacks.
type Deps struct {
	Logger  *zap.Logger
	Checker lingo.GrammarChecker
	Tagger  lingo.Tagger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// ClampScore bounds a score to the [0,100] range.
func ClampScore(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func softFail(score float64, reason string) Result {
	return Result{
		Score:   ClampScore(score),
		Details: map[string]any{"error": reason},
	}
}
