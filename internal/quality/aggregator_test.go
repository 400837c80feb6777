package quality

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/resume-quality/internal/evaluate"
)

type stubEvaluator struct {
	name  string
	score float64
	err   error
	panic bool
	calls int
}

func (s *stubEvaluator) Name() string { return s.name }

func (s *stubEvaluator) Evaluate(_ context.Context, _ string) (evaluate.Result, error) {
	s.calls++
	if s.panic {
		panic("evaluator blew up")
	}
	if s.err != nil {
		return evaluate.Result{}, s.err
	}
	return evaluate.Result{Score: s.score, Details: map[string]any{"stub": true}}, nil
}

func TestAggregatorWeightedScore(t *testing.T) {
	agg, err := New(
		[]evaluate.Evaluator{
			&stubEvaluator{name: "grammar", score: 80},
			&stubEvaluator{name: "readability", score: 60},
		},
		WithWeights(map[string]float64{"grammar": 0.75, "readability": 0.25}),
	)
	require.NoError(t, err)

	report := agg.Evaluate(context.Background(), "resume text")

	assert.Equal(t, 75.0, report.FinalScore)
	assert.Equal(t, 80.0, report.ComponentScores["grammar"])
	assert.Equal(t, 60.0, report.ComponentScores["readability"])
	assert.Empty(t, report.Errors)
	assert.False(t, report.Degraded)
}

func TestAggregatorCachesByFingerprint(t *testing.T) {
	stub := &stubEvaluator{name: "grammar", score: 90}
	agg, err := New(
		[]evaluate.Evaluator{stub},
		WithWeights(map[string]float64{"grammar": 1}),
	)
	require.NoError(t, err)

	first := agg.Evaluate(context.Background(), "same text")
	second := agg.Evaluate(context.Background(), "same text")

	assert.Same(t, first, second)
	assert.Equal(t, 1, stub.calls)

	agg.Evaluate(context.Background(), "different text")
	assert.Equal(t, 2, stub.calls)
}

func TestAggregatorIsolatesFailures(t *testing.T) {
	agg, err := New(
		[]evaluate.Evaluator{
			&stubEvaluator{name: "grammar", score: 90},
			&stubEvaluator{name: "formatting", err: errors.New("boom")},
		},
		WithWeights(map[string]float64{"grammar": 0.5, "formatting": 0.5}),
	)
	require.NoError(t, err)

	report := agg.Evaluate(context.Background(), "resume text")

	require.Contains(t, report.Errors, "formatting")
	assert.Equal(t, "boom", report.Errors["formatting"])
	assert.Equal(t, substituteScore, report.ComponentScores["formatting"])
	assert.Equal(t, 75.0, report.FinalScore)
}

func TestAggregatorRecoversPanics(t *testing.T) {
	agg, err := New(
		[]evaluate.Evaluator{
			&stubEvaluator{name: "grammar", score: 100},
			&stubEvaluator{name: "structure", panic: true},
		},
		WithWeights(map[string]float64{"grammar": 0.5, "structure": 0.5}),
	)
	require.NoError(t, err)

	report := agg.Evaluate(context.Background(), "resume text")

	require.Contains(t, report.Errors, "structure")
	assert.Contains(t, report.Errors["structure"], "panicked")
	assert.Equal(t, substituteScore, report.ComponentScores["structure"])
	assert.Equal(t, 80.0, report.FinalScore)
}

func TestAggregatorSkipsUnweightedEvaluators(t *testing.T) {
	skipped := &stubEvaluator{name: "timeline", score: 10}
	agg, err := New(
		[]evaluate.Evaluator{
			&stubEvaluator{name: "grammar", score: 70},
			skipped,
		},
		WithWeights(map[string]float64{"grammar": 1}),
	)
	require.NoError(t, err)

	report := agg.Evaluate(context.Background(), "resume text")

	assert.Equal(t, 70.0, report.FinalScore)
	assert.Zero(t, skipped.calls)
	assert.NotContains(t, report.ComponentScores, "timeline")
}

func TestAggregatorDegradedWithoutWeights(t *testing.T) {
	agg, err := New(
		[]evaluate.Evaluator{&stubEvaluator{name: "grammar", score: 95}},
		WithWeights(map[string]float64{}),
	)
	require.NoError(t, err)

	report := agg.Evaluate(context.Background(), "resume text")

	assert.Equal(t, neutralScore, report.FinalScore)
	assert.True(t, report.Degraded)
	assert.Empty(t, report.ComponentScores)
}

func TestAggregatorClampsComponentScores(t *testing.T) {
	agg, err := New(
		[]evaluate.Evaluator{
			&stubEvaluator{name: "grammar", score: 150},
			&stubEvaluator{name: "structure", score: -20},
		},
		WithWeights(map[string]float64{"grammar": 0.5, "structure": 0.5}),
	)
	require.NoError(t, err)

	report := agg.Evaluate(context.Background(), "resume text")

	assert.Equal(t, 100.0, report.ComponentScores["grammar"])
	assert.Equal(t, 0.0, report.ComponentScores["structure"])
	assert.Equal(t, 50.0, report.FinalScore)
}

func TestAggregatorRejectsDuplicateNames(t *testing.T) {
	_, err := New([]evaluate.Evaluator{
		&stubEvaluator{name: "grammar"},
		&stubEvaluator{name: "grammar"},
	})
	assert.Error(t, err)
}

func TestAggregatorRecordsExecutionTime(t *testing.T) {
	agg, err := New(
		[]evaluate.Evaluator{&stubEvaluator{name: "grammar", score: 88}},
		WithWeights(map[string]float64{"grammar": 1}),
	)
	require.NoError(t, err)

	report := agg.Evaluate(context.Background(), "resume text")

	require.Contains(t, report.Details, "grammar")
	assert.Contains(t, report.Details["grammar"], "execution_time_ms")
	assert.Equal(t, true, report.Details["grammar"]["stub"])
}

func TestFingerprintIsStable(t *testing.T) {
	assert.Equal(t, Fingerprint("abc"), Fingerprint("abc"))
	assert.NotEqual(t, Fingerprint("abc"), Fingerprint("abd"))
	assert.Len(t, Fingerprint(""), 64)
}
