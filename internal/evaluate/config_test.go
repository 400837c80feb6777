package evaluate

import "testing"

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultTimelineTuning()

	overrides := map[string]any{
		"max-gap-days":  90,
		"gap-weight":    "3.5", // weakly typed input
		"neutral-score": 75,
	}
	if err := ApplyOverrides(overrides, &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxGapDays != 90 {
		t.Fatalf("expected max gap override, got %d", cfg.MaxGapDays)
	}
	if cfg.GapWeight != 3.5 {
		t.Fatalf("expected gap weight override, got %v", cfg.GapWeight)
	}
	if cfg.NeutralScore != 75 {
		t.Fatalf("expected neutral score override, got %v", cfg.NeutralScore)
	}
	// Untouched fields keep their defaults.
	if cfg.OverlapWeight != DefaultTimelineTuning().OverlapWeight {
		t.Fatalf("expected overlap weight untouched, got %v", cfg.OverlapWeight)
	}
}

func TestApplyOverridesEmpty(t *testing.T) {
	cfg := DefaultGrammarTuning()
	if err := ApplyOverrides(nil, &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ChunkSize != DefaultGrammarTuning().ChunkSize {
		t.Fatalf("expected defaults preserved, got %d", cfg.ChunkSize)
	}
}
