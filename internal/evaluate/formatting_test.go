package evaluate

import (
	"context"
	"strings"
	"testing"
)

const tidyResume = `EXPERIENCE
• Led the platform team, Jan 2020 - Dec 2022
• Shipped the billing service

EDUCATION
• BSc Computer Science, Jan 2016 - Dec 2019

SKILLS
• Go, SQL, Kubernetes

PROJECTS
• Open source contributions`

func TestFormattingConsistentDocument(t *testing.T) {
	f := NewFormatting(DefaultFormattingTuning(), Deps{})

	result, err := f.Evaluate(context.Background(), tidyResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score < 90 {
		t.Fatalf("expected high score for tidy document, got %v", result.Score)
	}
}

func TestFormattingMixedBulletsScoreLower(t *testing.T) {
	f := NewFormatting(DefaultFormattingTuning(), Deps{})

	mixed := strings.NewReplacer(
		"• Shipped", "- Shipped",
		"• BSc", "* BSc",
	).Replace(tidyResume)

	tidyResult, err := f.Evaluate(context.Background(), tidyResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mixedResult, err := f.Evaluate(context.Background(), mixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mixedResult.Score >= tidyResult.Score {
		t.Fatalf("expected mixed bullets to score lower: %v vs %v", mixedResult.Score, tidyResult.Score)
	}
}

func TestFormattingMissingSections(t *testing.T) {
	f := NewFormatting(DefaultFormattingTuning(), Deps{})

	result, err := f.Evaluate(context.Background(), "Just a paragraph about my career with no headings at all, running long enough not to look like one.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sections, ok := result.Details["sections"].(map[string]any)
	if !ok {
		t.Fatalf("expected sections detail, got %T", result.Details["sections"])
	}
	missing, ok := sections["missing"].([]string)
	if !ok {
		t.Fatalf("expected missing list, got %T", sections["missing"])
	}
	if len(missing) != 4 {
		t.Fatalf("expected all four checked sections missing, got %v", missing)
	}
	if result.Score > 70 {
		t.Fatalf("expected low score with all sections missing, got %v", result.Score)
	}
}

func TestHeadingCase(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"EXPERIENCE", "all_caps"},
		{"Work Experience", "title_case"},
		{"Work experience", "mixed_case"},
		{"Skills:", "title_case"},
	}

	for _, tc := range tests {
		if got := headingCase(tc.line); got != tc.want {
			t.Fatalf("headingCase(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestIsHeadingShaped(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"EXPERIENCE", true},
		{"Work Experience", true},
		{"Skills:", true},
		{"worked on various backend services for years", false},
		{strings.Repeat("LONG ", 10), false},
	}

	for _, tc := range tests {
		if got := isHeadingShaped(tc.line); got != tc.want {
			t.Fatalf("isHeadingShaped(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}
