package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/helmcode/logtriage/pkg/llm"
	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/parser"
	"github.com/helmcode/logtriage/pkg/prompts"
)

// CandidateCount is the number of remediation options every successful
// generation yields.
const CandidateCount = 3

const missingRank = 999

// Solver asks the model for remediation options for the dominant error.
type Solver struct {
	llm    llm.LLM
	logger *log.Logger
}

func New(l llm.LLM, logger *log.Logger) *Solver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Solver{llm: l, logger: logger}
}

// PrimaryError returns the entry with the highest count. Ties go to the
// lexically smallest error type. ok is false when entries is empty.
func PrimaryError(entries map[string]model.AggregatedErrorEntry) (primary model.AggregatedErrorEntry, ok bool) {
	ranked := model.RankedEntries(entries)
	if len(ranked) == 0 {
		return model.AggregatedErrorEntry{}, false
	}
	return ranked[0], true
}

// FindSolutions generates exactly CandidateCount candidates sorted by their
// rank label. A malformed reply yields the fixed fallback set; any other
// failure yields a single candidate describing it. Both are degraded.
func (s *Solver) FindSolutions(ctx context.Context, primary model.AggregatedErrorEntry, analysis *model.AggregatedAnalysis) (candidates []model.SolutionCandidate, outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			candidates, outcome = failureCandidates(err), model.Degraded(err.Error())
		}
	}()

	prompt, err := prompts.BuildSolutionPrompt(primary, analysis)
	if err != nil {
		return failureCandidates(err), model.Degraded(err.Error())
	}

	raw, err := s.llm.Generate(ctx, prompts.SolutionSystem, prompt)
	if err != nil {
		s.logger.Printf("solver: generation failed: %v", err)
		return failureCandidates(err), model.Degraded(err.Error())
	}

	parsed, err := parser.ParseSolutions(raw)
	if err != nil {
		s.logger.Printf("solver: %v", err)
		if errors.Is(err, parser.ErrMalformed) {
			return FallbackCandidates(), model.Degraded(err.Error())
		}
		return failureCandidates(err), model.Degraded(err.Error())
	}

	return Normalize(parsed), model.OK()
}

// Normalize pads or truncates to CandidateCount, orders by rank label and
// relabels ranks densely from 1.
func Normalize(in []model.SolutionCandidate) []model.SolutionCandidate {
	out := make([]model.SolutionCandidate, 0, CandidateCount)
	for _, c := range in {
		if len(out) == CandidateCount {
			break
		}
		out = append(out, c)
	}
	for len(out) < CandidateCount {
		out = append(out, placeholder(len(out)+1))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rankKey(out[i]) < rankKey(out[j])
	})
	for i := range out {
		out[i].Rank = i + 1
		if out[i].Steps == nil {
			out[i].Steps = []string{}
		}
		if out[i].Prerequisites == nil {
			out[i].Prerequisites = []string{}
		}
	}
	return out
}

func rankKey(c model.SolutionCandidate) int {
	if c.Rank <= 0 {
		return missingRank
	}
	return c.Rank
}

func placeholder(n int) model.SolutionCandidate {
	return model.SolutionCandidate{
		Rank:          n,
		Title:         fmt.Sprintf("Alternative Solution %d", n),
		Description:   "Review the error context and apply appropriate fixes",
		Effectiveness: "Medium",
		Complexity:    "Medium",
		TimeEstimate:  "Unknown",
		Steps:         []string{"Analyze the error", "Identify root cause", "Apply fix"},
		Prerequisites: []string{},
		RiskLevel:     "Medium",
	}
}

// FallbackCandidates is the fixed set returned when the model's reply cannot
// be parsed.
func FallbackCandidates() []model.SolutionCandidate {
	return []model.SolutionCandidate{
		{
			Rank:          1,
			Title:         "Retry Analysis",
			Description:   "Try analyzing the error again with more context",
			Effectiveness: "Medium",
			Complexity:    "Low",
			TimeEstimate:  "5 minutes",
			Steps:         []string{"Run the analysis again", "Check API key", "Verify log file format"},
			Prerequisites: []string{},
			RiskLevel:     "Low",
		},
		{
			Rank:          2,
			Title:         "Manual Review",
			Description:   "Review the log file manually for errors",
			Effectiveness: "High",
			Complexity:    "Medium",
			TimeEstimate:  "30 minutes",
			Steps:         []string{"Open log file", "Search for error keywords", "Review stack traces"},
			Prerequisites: []string{},
			RiskLevel:     "Low",
		},
		{
			Rank:          3,
			Title:         "Contact Support",
			Description:   "If issue persists, contact support team",
			Effectiveness: "High",
			Complexity:    "Low",
			TimeEstimate:  "1 hour",
			Steps:         []string{"Document the error", "Check logs", "Contact administrator"},
			Prerequisites: []string{},
			RiskLevel:     "Low",
		},
	}
}

func failureCandidates(err error) []model.SolutionCandidate {
	return []model.SolutionCandidate{{
		Rank:          1,
		Title:         "Error in Solution Generation",
		Description:   fmt.Sprintf("Error occurred: %v", err),
		Effectiveness: "Low",
		Complexity:    "Low",
		TimeEstimate:  "Unknown",
		Steps:         []string{"Check error message", "Retry operation"},
		Prerequisites: []string{},
		RiskLevel:     "Low",
	}}
}
