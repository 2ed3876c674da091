package analyzer

import (
	"context"
	"fmt"

	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/parser"
	"github.com/helmcode/logtriage/pkg/prompts"
)

const topErrorCount = 5

// FallbackAnalysis is returned whenever the rollup cannot be produced.
func FallbackAnalysis(err error) model.AggregatedAnalysis {
	return model.AggregatedAnalysis{
		OverallSeverity:      string(model.SeverityMedium),
		PrimaryIssueCategory: "General",
		KeyFindings:          []string{"Analysis completed with errors"},
		RecommendedActions:   []string{"Review logs manually"},
		RiskAssessment:       fmt.Sprintf("Analysis error: %v", err),
	}
}

// Summarize issues one generation call over the aggregate statistics only.
// It never fails; on any error the fixed fallback is returned with a degraded outcome.
func (a *Analyzer) Summarize(ctx context.Context, agg Aggregation) (analysis model.AggregatedAnalysis, outcome model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			analysis, outcome = FallbackAnalysis(err), model.Degraded(err.Error())
		}
	}()

	prompt, err := prompts.BuildRollupPrompt(rollupInput(agg))
	if err != nil {
		return FallbackAnalysis(err), model.Degraded(err.Error())
	}

	raw, err := a.llm.Generate(ctx, prompts.RollupSystem, prompt)
	if err != nil {
		a.logger.Printf("analyzer: rollup generation failed: %v", err)
		return FallbackAnalysis(err), model.Degraded(err.Error())
	}

	parsed, err := parser.ParseRollup(raw)
	if err != nil {
		a.logger.Printf("analyzer: rollup: %v", err)
		return FallbackAnalysis(err), model.Degraded(err.Error())
	}
	return *parsed, model.OK()
}

func rollupInput(agg Aggregation) prompts.RollupInput {
	breakdown := make(map[string]int, len(model.Severities))
	for _, s := range model.Severities {
		breakdown[string(s)] = agg.Distribution[s]
	}

	top := agg.Top(topErrorCount)
	topErrors := make([]prompts.TopError, 0, len(top))
	for _, e := range top {
		topErrors = append(topErrors, prompts.TopError{
			ErrorType: e.ErrorType,
			Count:     e.Count,
			Severity:  string(e.Severity),
			Files:     e.Files,
		})
	}

	errorTypes := append([]string{}, agg.Order...)
	return prompts.RollupInput{
		TotalFiles:        agg.FileCount,
		TotalErrors:       agg.TotalErrors,
		ErrorTypes:        errorTypes,
		SeverityBreakdown: breakdown,
		TopErrors:         topErrors,
	}
}
