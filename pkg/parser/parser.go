package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/helmcode/logtriage/pkg/model"
)

// ErrMalformed marks model output that is not the JSON object we asked for.
// Callers use it to pick the malformed-response fallback instead of the
// transport-failure one.
var ErrMalformed = errors.New("malformed model response")

var fenceRe = regexp.MustCompile("```[a-zA-Z]*\n?|```")

// StripFences removes markdown code fences such as ```json ... ``` so JSON can be parsed
func StripFences(text string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(text), ""))
}

// Classification is the per-file object the classifier prompt asks for.
type Classification struct {
	ErrorCount int                 `json:"error_count"`
	Errors     []model.ErrorRecord `json:"errors"`
	Categories []string            `json:"categories"`
	Summary    string              `json:"summary"`
}

func ParseClassification(raw string) (*Classification, error) {
	var w wireClassification
	if err := decodeObject(raw, &w); err != nil {
		return nil, err
	}
	return w.classification(), nil
}

func ParseRollup(raw string) (*model.AggregatedAnalysis, error) {
	var w wireAnalysis
	if err := decodeObject(raw, &w); err != nil {
		return nil, err
	}
	return w.analysis(), nil
}

// ParseSolutions returns the candidates exactly as the model sent them;
// cardinality is enforced by the solver.
func ParseSolutions(raw string) ([]model.SolutionCandidate, error) {
	var envelope struct {
		Solutions []wireSolution `json:"solutions"`
	}
	if err := decodeObject(raw, &envelope); err != nil {
		return nil, err
	}
	out := make([]model.SolutionCandidate, 0, len(envelope.Solutions))
	for _, w := range envelope.Solutions {
		out = append(out, w.candidate())
	}
	return out, nil
}

func decodeObject(raw string, v interface{}) error {
	cleaned := StripFences(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return fmt.Errorf("%w: expected a JSON object, got %q", ErrMalformed, preview(cleaned, 60))
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
