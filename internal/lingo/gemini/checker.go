package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/talentops/resume-quality/internal/lingo"
	"github.com/talentops/resume-quality/internal/util"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Checker implements lingo.GrammarChecker on top of a Gemini content
// generator. The model is asked for a JSON array of issues with offsets
// relative to the submitted chunk.
type Checker struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// NewChecker builds a grammar checker backed by the provided generator.
func NewChecker(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Checker {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Checker{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Check submits the chunk to Gemini and parses the reported issues.
func (c *Checker) Check(ctx context.Context, chunk string) ([]lingo.Issue, error) {
	if c == nil || c.generator == nil {
		return nil, fmt.Errorf("gemini checker is not initialized")
	}

	if strings.TrimSpace(chunk) == "" {
		return nil, nil
	}

	prompt := buildPrompt(chunk)

	c.logger.Debug("gemini grammar check request",
		zap.Int("chunk_length", utf8.RuneCountInString(chunk)),
		zap.String("chunk_preview", util.TruncateForLog(chunk, c.maxLogLen)),
	)

	raw, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gemini grammar check response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, c.maxLogLen)),
	)

	issues, err := parseIssues(raw)
	if err != nil {
		return nil, err
	}

	// Offsets must fall inside the chunk. Entries outside it are dropped and
	// lengths are clamped to the chunk end.
	valid := issues[:0]
	for _, issue := range issues {
		if issue.Offset < 0 || issue.Offset >= len(chunk) {
			continue
		}
		if issue.Length < 0 {
			issue.Length = 0
		}
		if issue.Offset+issue.Length > len(chunk) {
			issue.Length = len(chunk) - issue.Offset
		}
		valid = append(valid, issue)
	}

	return valid, nil
}

func buildPrompt(chunk string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Report grammar issues as a JSON array for:\n{{TEXT}}"
	}
	return strings.ReplaceAll(template, "{{TEXT}}", chunk)
}

func parseIssues(raw string) ([]lingo.Issue, error) {
	cleaned := extractJSON(raw)

	var entries []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	issues := make([]lingo.Issue, 0, len(entries))
	for _, entry := range entries {
		issue := lingo.Issue{
			Offset:  coerceInt(entry["offset"]),
			Length:  coerceInt(entry["length"]),
			Message: coerceString(entry["message"]),
			Rule:    coerceString(entry["rule"]),
			Context: coerceString(entry["context"]),
		}
		if list, ok := entry["replacements"].([]any); ok {
			for _, item := range list {
				if s := coerceString(item); s != "" {
					issue.Replacements = append(issue.Replacements, s)
				}
			}
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
