package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestCheckerParsesIssues(t *testing.T) {
	stub := &stubGenerator{response: `[
		{"offset": 4, "length": 5, "message": "Possible spelling mistake", "rule": "MORFOLOGIK_RULE_EN_US", "context": "the manger of", "replacements": ["manager"]},
		{"offset": 20, "length": 2, "message": "Use a comma", "rule": "COMMA_RULE", "context": "which", "replacements": []}
	]`}
	checker := NewChecker(stub, zap.NewNop(), 0)

	issues, err := checker.Check(context.Background(), "the manger of things which were done here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Rule != "MORFOLOGIK_RULE_EN_US" {
		t.Fatalf("unexpected rule: %q", issues[0].Rule)
	}
	if issues[0].Offset != 4 || issues[0].Length != 5 {
		t.Fatalf("unexpected position: offset=%d length=%d", issues[0].Offset, issues[0].Length)
	}
	if len(issues[0].Replacements) != 1 || issues[0].Replacements[0] != "manager" {
		t.Fatalf("unexpected replacements: %v", issues[0].Replacements)
	}

	if !strings.Contains(stub.lastPrompt, "the manger of things") {
		t.Fatalf("expected chunk embedded in prompt")
	}
}

func TestCheckerStripsCodeFences(t *testing.T) {
	stub := &stubGenerator{response: "```json\n[{\"offset\": 0, \"length\": 3, \"message\": \"Sentence starts lowercase\", \"rule\": \"UPPERCASE_SENTENCE_START\"}]\n```"}
	checker := NewChecker(stub, zap.NewNop(), 0)

	issues, err := checker.Check(context.Background(), "the text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
}

func TestCheckerDropsOutOfRangeOffsets(t *testing.T) {
	stub := &stubGenerator{response: `[
		{"offset": 900, "length": 5, "message": "hallucinated", "rule": "X"},
		{"offset": 2, "length": 100, "message": "clamped", "rule": "Y"}
	]`}
	checker := NewChecker(stub, zap.NewNop(), 0)

	issues, err := checker.Check(context.Background(), "short text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected out-of-range issue dropped, got %d issues", len(issues))
	}
	if issues[0].Offset+issues[0].Length > len("short text") {
		t.Fatalf("expected length clamped to chunk, got %d+%d", issues[0].Offset, issues[0].Length)
	}
}

func TestCheckerEmptyChunk(t *testing.T) {
	stub := &stubGenerator{response: "[]"}
	checker := NewChecker(stub, zap.NewNop(), 0)

	issues, err := checker.Check(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issues != nil {
		t.Fatalf("expected no call for blank chunk, got %v", issues)
	}
	if stub.lastPrompt != "" {
		t.Fatalf("expected no prompt for blank chunk")
	}
}

func TestCheckerPropagatesGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	checker := NewChecker(stub, zap.NewNop(), 0)

	if _, err := checker.Check(context.Background(), "some text"); err == nil {
		t.Fatalf("expected error from generator")
	}
}

func TestCheckerMalformedResponse(t *testing.T) {
	stub := &stubGenerator{response: "I could not find any issues."}
	checker := NewChecker(stub, zap.NewNop(), 0)

	if _, err := checker.Check(context.Background(), "some text"); err == nil {
		t.Fatalf("expected parse error for prose response")
	}
}
