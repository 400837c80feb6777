package evaluate

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// GrammarTuning controls the grammar and spelling evaluator.
type GrammarTuning struct {
	// ChunkSize is the character budget per grammar-checker request.
	ChunkSize int `mapstructure:"chunk-size"`
	// LengthNormalization is the word count at which penalties apply in full.
	LengthNormalization float64 `mapstructure:"length-normalization"`

	ErrorWeights       map[string]float64 `mapstructure:"error-weights"`
	DefaultErrorWeight float64            `mapstructure:"default-error-weight"`

	MaxErrorsPerSentence float64 `mapstructure:"max-errors-per-sentence"`
	PenaltyPerExcess     float64 `mapstructure:"penalty-per-excess"`
	MaxDensityPenalty    float64 `mapstructure:"max-density-penalty"`

	CriticalDistance    float64 `mapstructure:"critical-distance"`
	ProximityFactor     float64 `mapstructure:"proximity-factor"`
	MaxProximityPenalty float64 `mapstructure:"max-proximity-penalty"`

	SpellingExtraWeight float64 `mapstructure:"spelling-extra-weight"`
	FallbackScore       float64 `mapstructure:"fallback-score"`
}

// DefaultGrammarTuning returns the stock grammar tuning. Spelling is weighted
// highest since misspellings hurt professional documents the most.
func DefaultGrammarTuning() GrammarTuning {
	return GrammarTuning{
		ChunkSize:           5000,
		LengthNormalization: 250,
		ErrorWeights: map[string]float64{
			"spelling":    3.0,
			"grammar":     2.0,
			"punctuation": 1.5,
			"repetition":  1.5,
			"casing":      1.0,
			"style":       0.5,
			"other":       0.5,
		},
		DefaultErrorWeight:   1.5,
		MaxErrorsPerSentence: 0.25,
		PenaltyPerExcess:     15,
		MaxDensityPenalty:    25,
		CriticalDistance:     60,
		ProximityFactor:      0.35,
		MaxProximityPenalty:  15,
		SpellingExtraWeight:  1.5,
		FallbackScore:        50,
	}
}

// ReadabilityTuning controls the readability evaluator.
type ReadabilityTuning struct {
	Weights       map[string]float64 `mapstructure:"weights"`
	BandPenalties map[string]float64 `mapstructure:"band-penalties"`
	FallbackScore float64            `mapstructure:"fallback-score"`
}

// DefaultReadabilityTuning returns the stock readability tuning.
func DefaultReadabilityTuning() ReadabilityTuning {
	return ReadabilityTuning{
		Weights: map[string]float64{
			"flesch_ease":  0.30,
			"gunning_fog":  0.20,
			"smog":         0.15,
			"coleman_liau": 0.25,
			"dale_chall":   0.10,
		},
		BandPenalties: map[string]float64{
			"unacceptable":   30,
			"poor":           15,
			"acceptable":     0,
			"oversimplified": 10,
		},
		FallbackScore: 70,
	}
}

// FormattingTuning controls the formatting evaluator.
type FormattingTuning struct {
	MaxCategoryPenalty    float64            `mapstructure:"max-category-penalty"`
	Weights               map[string]float64 `mapstructure:"weights"`
	MissingSectionPenalty float64            `mapstructure:"missing-section-penalty"`
	BulletStylePenalty    float64            `mapstructure:"bullet-style-penalty"`
	DateFormatPenalty     float64            `mapstructure:"date-format-penalty"`
	SpacingIssuePenalty   float64            `mapstructure:"spacing-issue-penalty"`
	MixedHeadingPenalty   float64            `mapstructure:"mixed-heading-penalty"`
	FallbackScore         float64            `mapstructure:"fallback-score"`
}

// DefaultFormattingTuning returns the stock formatting tuning.
func DefaultFormattingTuning() FormattingTuning {
	return FormattingTuning{
		MaxCategoryPenalty: 30,
		Weights: map[string]float64{
			"sections": 1.5,
			"dates":    1.3,
			"headings": 1.2,
			"bullets":  1.0,
			"spacing":  0.8,
		},
		MissingSectionPenalty: 12,
		BulletStylePenalty:    6,
		DateFormatPenalty:     8,
		SpacingIssuePenalty:   3,
		MixedHeadingPenalty:   8,
		FallbackScore:         60,
	}
}

// StructureTuning controls the structure evaluator.
type StructureTuning struct {
	// Essentials maps essential section types to their missing-section
	// penalty weight.
	Essentials map[string]float64 `mapstructure:"essentials"`

	MaxMissingPenalty      float64 `mapstructure:"max-missing-penalty"`
	MaxOrderPenalty        float64 `mapstructure:"max-order-penalty"`
	MaxCompletenessPenalty float64 `mapstructure:"max-completeness-penalty"`
	MaxConsistencyPenalty  float64 `mapstructure:"max-consistency-penalty"`
	OrderViolationPenalty  float64 `mapstructure:"order-violation-penalty"`

	FallbackScore float64 `mapstructure:"fallback-score"`
}

// DefaultStructureTuning returns the stock structure tuning.
func DefaultStructureTuning() StructureTuning {
	return StructureTuning{
		Essentials: map[string]float64{
			"contact":    15,
			"experience": 15,
			"education":  10,
			"skills":     10,
		},
		MaxMissingPenalty:      40,
		MaxOrderPenalty:        15,
		MaxCompletenessPenalty: 30,
		MaxConsistencyPenalty:  20,
		OrderViolationPenalty:  5,
		FallbackScore:          65,
	}
}

// TimelineTuning controls the tense and timeline evaluator.
type TimelineTuning struct {
	MaxGapDays int `mapstructure:"max-gap-days"`

	TenseErrorWeight float64 `mapstructure:"tense-error-weight"`
	GapWeight        float64 `mapstructure:"gap-weight"`
	DateErrorWeight  float64 `mapstructure:"date-error-weight"`
	OverlapWeight    float64 `mapstructure:"overlap-weight"`

	// NeutralScore is returned when no experience evidence is found.
	NeutralScore  float64 `mapstructure:"neutral-score"`
	FallbackScore float64 `mapstructure:"fallback-score"`
}

// DefaultTimelineTuning returns the stock tense/timeline tuning. Overlaps are
// weighted above gaps: simultaneous full-time roles raise more questions than
// a pause between them.
func DefaultTimelineTuning() TimelineTuning {
	return TimelineTuning{
		MaxGapDays:       180,
		TenseErrorWeight: 3,
		GapWeight:        2,
		DateErrorWeight:  5,
		OverlapWeight:    4,
		NeutralScore:     70,
		FallbackScore:    65,
	}
}

// ActionVerbTuning controls the action-verb evaluator.
type ActionVerbTuning struct {
	ActionReward     float64 `mapstructure:"action-reward"`
	NonActionPenalty float64 `mapstructure:"non-action-penalty"`
	DuplicatePenalty float64 `mapstructure:"duplicate-penalty"`

	// Domain selects an additional domain-specific verb set.
	Domain string `mapstructure:"domain"`

	FallbackScore float64 `mapstructure:"fallback-score"`
}

// DefaultActionVerbTuning returns the stock action-verb tuning.
func DefaultActionVerbTuning() ActionVerbTuning {
	return ActionVerbTuning{
		ActionReward:     2.0,
		NonActionPenalty: 1.0,
		DuplicatePenalty: 0.5,
		FallbackScore:    60,
	}
}

// ApplyOverrides decodes a generic override map into a tuning struct, leaving
// fields absent from the map untouched.
func ApplyOverrides(overrides map[string]any, tuning any) error {
	if len(overrides) == 0 {
		return nil
	}

	cfg := &mapstructure.DecoderConfig{
		Result:           tuning,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return fmt.Errorf("building tuning decoder: %w", err)
	}

	if err := decoder.Decode(overrides); err != nil {
		return fmt.Errorf("decoding tuning overrides: %w", err)
	}

	return nil
}
