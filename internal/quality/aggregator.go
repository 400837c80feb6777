package quality

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/talentops/resume-quality/internal/evaluate"
	"github.com/talentops/resume-quality/internal/logger"
)

const (
	// substituteScore replaces the score of an evaluator that failed.
	substituteScore = 60.0
	// neutralScore is the final score when no evaluator carries weight.
	neutralScore = 60.0

	defaultCacheCapacity = 256
	defaultTimeout       = 60 * time.Second
)

// DefaultWeights is the stock component weighting. Weights are relative;
// the aggregator normalizes by the sum of weights actually in play.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"grammar":      0.25,
		"readability":  0.20,
		"formatting":   0.20,
		"structure":    0.20,
		"timeline":     0.10,
		"action_verbs": 0.05,
	}
}

// Aggregator runs a set of evaluators over a resume and folds their scores
// into one weighted final score. Evaluator failures never fail the run; the
// failing component is substituted and reported in the Errors map. Reports
// are cached by content fingerprint.
type Aggregator struct {
	evaluators map[string]evaluate.Evaluator
	weights    map[string]float64
	timeout    time.Duration
	logger     *zap.Logger
	cache      *lru.Cache[string, *Report]
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWeights replaces the default component weights. Evaluators missing
// from the map get zero weight and are skipped.
func WithWeights(weights map[string]float64) Option {
	return func(a *Aggregator) { a.weights = weights }
}

// WithCacheCapacity sets the report cache size.
func WithCacheCapacity(capacity int) Option {
	return func(a *Aggregator) {
		cache, err := lru.New[string, *Report](capacity)
		if err != nil {
			return
		}
		a.cache = cache
	}
}

// WithLogger sets the aggregator logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// WithTimeout bounds each individual evaluator run.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Aggregator) { a.timeout = timeout }
}

// New creates an aggregator over the given evaluators.
func New(evaluators []evaluate.Evaluator, opts ...Option) (*Aggregator, error) {
	byName := make(map[string]evaluate.Evaluator, len(evaluators))
	for _, ev := range evaluators {
		if _, dup := byName[ev.Name()]; dup {
			return nil, fmt.Errorf("duplicate evaluator name %q", ev.Name())
		}
		byName[ev.Name()] = ev
	}

	cache, err := lru.New[string, *Report](defaultCacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("creating report cache: %w", err)
	}

	a := &Aggregator{
		evaluators: byName,
		weights:    DefaultWeights(),
		timeout:    defaultTimeout,
		logger:     zap.NewNop(),
		cache:      cache,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Evaluate scores the resume text. It never returns an error: component
// failures are substituted and surfaced in the report's Errors map, and a
// fully degenerate run yields the neutral score with Degraded set.
func (a *Aggregator) Evaluate(ctx context.Context, text string) *Report {
	key := Fingerprint(text)
	if cached, ok := a.cache.Get(key); ok {
		a.logger.Debug("returning cached report", zap.String("fingerprint", key[:12]))
		return cached
	}

	report := a.run(ctx, text)
	a.cache.Add(key, report)
	return report
}

func (a *Aggregator) run(ctx context.Context, text string) *Report {
	report := &Report{
		ComponentScores: map[string]float64{},
		Details:         map[string]map[string]any{},
	}

	weightedSum := 0.0
	weightTotal := 0.0

	for _, name := range a.sortedNames() {
		weight := a.weights[name]
		if weight <= 0 {
			continue
		}

		started := time.Now()
		result, err := a.runOne(ctx, a.evaluators[name], text)
		elapsed := time.Since(started)

		// Scores from the open evaluator registry are not trusted to be
		// in range.
		score := evaluate.ClampScore(result.Score)
		details := result.Details
		if err != nil {
			logger.WithEvaluator(a.logger, name).Warn(
				"evaluator failed, substituting default score",
				zap.Error(err),
			)
			score = substituteScore
			details = map[string]any{"error": err.Error()}
			if report.Errors == nil {
				report.Errors = map[string]string{}
			}
			report.Errors[name] = err.Error()
		}
		if details == nil {
			details = map[string]any{}
		}
		details["execution_time_ms"] = elapsed.Milliseconds()

		report.ComponentScores[name] = score
		report.Details[name] = details
		weightedSum += score * weight
		weightTotal += weight
	}

	if weightTotal == 0 {
		report.FinalScore = neutralScore
		report.Degraded = true
		return report
	}

	report.FinalScore = round1(weightedSum / weightTotal)
	return report
}

// runOne isolates a single evaluator: panics become errors and a run that
// outlives the timeout is abandoned.
func (a *Aggregator) runOne(ctx context.Context, ev evaluate.Evaluator, text string) (evaluate.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type outcome struct {
		result evaluate.Result
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("evaluator panicked: %v", r)}
			}
		}()
		result, err := ev.Evaluate(ctx, text)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return evaluate.Result{}, ctx.Err()
	}
}

func (a *Aggregator) sortedNames() []string {
	names := make([]string, 0, len(a.evaluators))
	for name := range a.evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
