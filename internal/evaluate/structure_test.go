package evaluate

import (
	"context"
	"testing"
)

const structuredResume = `CONTACT
jane.doe@example.com
(555) 123-4567

SUMMARY
Platform engineer with eight years of experience.

EXPERIENCE
Acme Inc
• Led the payments team, 2019-2023
• Shipped the billing pipeline
• Reduced deploy time
• Mentored two engineers

EDUCATION
Bachelor degree in Computer Science, 2015

SKILLS
Go Python SQL Kubernetes Terraform Docker Linux Grafana Kafka Redis`

func TestStructureWellFormedResume(t *testing.T) {
	s := NewStructure(DefaultStructureTuning(), Deps{})

	result, err := s.Evaluate(context.Background(), structuredResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing, ok := result.Details["missing_sections"].([]string)
	if !ok && result.Details["missing_sections"] != nil {
		t.Fatalf("expected missing_sections list, got %T", result.Details["missing_sections"])
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing sections, got %v", missing)
	}
	if result.Score < 70 {
		t.Fatalf("expected high score for well formed resume, got %v", result.Score)
	}
}

func TestStructureNoHeadings(t *testing.T) {
	s := NewStructure(DefaultStructureTuning(), Deps{})

	text := "a plain block of lowercase prose that never once resembles any kind of resume heading or labeled block"
	result, err := s.Evaluate(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 0 {
		t.Fatalf("expected zero score with no detectable sections, got %v", result.Score)
	}

	missing := result.Details["missing_sections"].([]string)
	if len(missing) != 4 {
		t.Fatalf("expected all essential sections missing, got %v", missing)
	}
}

func TestStructureOrderViolation(t *testing.T) {
	s := NewStructure(DefaultStructureTuning(), Deps{})

	inverted := `SKILLS
Go Python SQL

EXPERIENCE
Acme Inc, led the payments team

CONTACT
jane.doe@example.com`

	result, err := s.Evaluate(context.Background(), inverted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issues, _ := result.Details["order_issues"].([]string)
	if len(issues) == 0 {
		t.Fatalf("expected order issues for inverted layout, got none")
	}
}

func TestIdentifySectionType(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"WORK HISTORY", "experience"},
		{"Education", "education"},
		{"Technical Skills", "skills"},
		{"Volunteer Work", "volunteer"},
		{"Referees", "references"},
		{"Completely Unrelated", ""},
	}

	for _, tc := range tests {
		if got := identifySectionType(tc.heading); got != tc.want {
			t.Fatalf("identifySectionType(%q) = %q, want %q", tc.heading, got, tc.want)
		}
	}
}

func TestSectionsByPosition(t *testing.T) {
	sections := map[string]section{
		"skills":     {lineIndex: 9},
		"contact":    {lineIndex: 0},
		"experience": {lineIndex: 4},
	}

	got := sectionsByPosition(sections)
	want := []string{"contact", "experience", "skills"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sectionsByPosition = %v, want %v", got, want)
		}
	}
}
