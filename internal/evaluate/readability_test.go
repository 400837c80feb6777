package evaluate

import (
	"context"
	"testing"
)

func TestReadabilityEmptyText(t *testing.T) {
	r := NewReadability(DefaultReadabilityTuning(), Deps{})

	result, err := r.Evaluate(context.Background(), "   \n\t ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != DefaultReadabilityTuning().FallbackScore {
		t.Fatalf("expected fallback score for empty text, got %v", result.Score)
	}
	if result.Details["error"] == nil {
		t.Fatalf("expected error detail, got %v", result.Details)
	}
}

func TestReadabilityBandConsistency(t *testing.T) {
	r := NewReadability(DefaultReadabilityTuning(), Deps{})

	text := "Led a team of five engineers building payment systems. " +
		"Improved release speed by forty percent over two years. " +
		"Designed the billing pipeline and mentored two junior developers."

	result, err := r.Evaluate(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	band, ok := result.Details["category"].(string)
	if !ok {
		t.Fatalf("expected category detail, got %v", result.Details["category"])
	}

	penalty := DefaultReadabilityTuning().BandPenalties[band]
	if want := ClampScore(100 - penalty); result.Score != want {
		t.Fatalf("score %v does not match band %q penalty %v", result.Score, band, penalty)
	}
}

func TestReadabilityDetailsCarryAllIndices(t *testing.T) {
	r := NewReadability(DefaultReadabilityTuning(), Deps{})

	result, err := r.Evaluate(context.Background(), "Managed the team. Shipped the product. Wrote the documentation.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, ok := result.Details["raw_scores"].(map[string]float64)
	if !ok {
		t.Fatalf("expected raw_scores detail, got %T", result.Details["raw_scores"])
	}
	for _, metric := range []string{"flesch_ease", "gunning_fog", "smog", "coleman_liau", "dale_chall"} {
		if _, ok := raw[metric]; !ok {
			t.Fatalf("missing raw metric %q in %v", metric, raw)
		}
	}

	normalized, ok := result.Details["normalized_scores"].(map[string]float64)
	if !ok {
		t.Fatalf("expected normalized_scores detail, got %T", result.Details["normalized_scores"])
	}
	for metric, value := range normalized {
		if value < 0 || value > 100 {
			t.Fatalf("normalized %q out of range: %v", metric, value)
		}
	}
}
