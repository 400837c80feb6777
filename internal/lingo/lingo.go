// Package lingo defines the contracts for external linguistic collaborators.
// Evaluators depend on these interfaces only and must degrade gracefully when
// an implementation is not configured.
package lingo

import "context"

// Issue is a single grammar or spelling problem reported by a checker.
// Offset and Length are byte positions within the checked chunk.
type Issue struct {
	Offset       int
	Length       int
	Message      string
	Rule         string
	Context      string
	Replacements []string
}

// GrammarChecker reports language-mechanics issues found in a text chunk.
type GrammarChecker interface {
	Check(ctx context.Context, chunk string) ([]Issue, error)
}

// Token is a single token produced by a part-of-speech tagger. POS carries
// the coarse universal tag (VERB, NOUN), Tag the fine-grained one (VBD, VBZ)
// and Dep the dependency relation to the token's head (ROOT, dobj, nummod).
type Token struct {
	Text        string
	Lemma       string
	POS         string
	Tag         string
	Dep         string
	Morph       map[string]string
	IsEntity    bool
	EntityLabel string
}

// Tagger annotates text with part-of-speech and dependency information.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Token, error)
}
