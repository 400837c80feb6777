// Package quality combines the individual evaluators into a single weighted
// resume quality score with per-evaluator failure isolation and caching.
package quality

import (
	"crypto/sha256"
	"encoding/hex"
)

// Report is the combined outcome of one evaluation run. ComponentScores and
// Details are keyed by evaluator name; Errors records evaluators that failed
// and were substituted with the default score.
type Report struct {
	FinalScore      float64                   `json:"final_score"`
	ComponentScores map[string]float64        `json:"component_scores"`
	Details         map[string]map[string]any `json:"details"`
	Errors          map[string]string         `json:"errors,omitempty"`
	Degraded        bool                      `json:"degraded,omitempty"`
}

// Fingerprint returns the cache key for a resume text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
