package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/helmcode/logtriage/pkg/model"
)

const SolutionSystem = "You are an expert software engineer and DevOps specialist who provides actionable solutions. Always respond with valid JSON only."

func BuildSolutionPrompt(primary model.AggregatedErrorEntry, analysis *model.AggregatedAnalysis) (string, error) {
	details, err := json.MarshalIndent(primary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal error details: %w", err)
	}

	errContext := fmt.Sprintf("Error Type: %s\nSeverity: %s\nError Details: %s\n", primary.ErrorType, primary.Severity, details)
	if analysis != nil {
		rollup, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal aggregated analysis: %w", err)
		}
		errContext += fmt.Sprintf("\nAggregated Analysis: %s\n", rollup)
	}

	return fmt.Sprintf(`Based on the following error information, provide exactly 3 solutions ranked by effectiveness and practicality.

%s
Provide a JSON response with this structure:
{
  "solutions": [
    {
      "rank": 1,
      "title": "Solution title (be specific and actionable)",
      "description": "What this solution does and why it works",
      "effectiveness": "High|Medium|Low",
      "complexity": "Low|Medium|High",
      "time_estimate": "Brief time estimate (e.g., '5 minutes', '1 hour', '1 day')",
      "steps": ["Step 1 (specific action)", "Step 2 (specific action)", "Step 3 (specific action)"],
      "code_example": "Optional code example if applicable, otherwise empty string",
      "prerequisites": ["prerequisite1", "prerequisite2"],
      "risk_level": "Low|Medium|High"
    }
  ]
}

Requirements:
- Provide exactly 3 solutions with ranks 1, 2 and 3
- Rank them by effectiveness (rank 1 = best)
- Solutions should be practical and actionable
- Include code examples if applicable
- Focus on root causes, not just symptoms

Return ONLY valid JSON, no additional text.`, errContext), nil
}
