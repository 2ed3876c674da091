package prompts

import (
	"encoding/json"
	"fmt"
)

const RollupSystem = "You are an expert DevOps analyst. Always respond with valid JSON only."

// TopError is one of the highest-count entries shown to the summarizer.
type TopError struct {
	ErrorType string   `json:"error_type"`
	Count     int      `json:"count"`
	Severity  string   `json:"severity"`
	Files     []string `json:"files"`
}

// RollupInput is the aggregate-only view the summarizer sees. It never
// contains raw log text.
type RollupInput struct {
	TotalFiles        int            `json:"total_files"`
	TotalErrors       int            `json:"total_errors"`
	ErrorTypes        []string       `json:"error_types"`
	SeverityBreakdown map[string]int `json:"severity_breakdown"`
	TopErrors         []TopError     `json:"top_errors"`
}

func BuildRollupPrompt(in RollupInput) (string, error) {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal rollup input: %w", err)
	}

	return fmt.Sprintf(`Based on the following aggregated error data, provide a comprehensive analysis:

%s

Provide a JSON response with:
{
  "overall_severity": "Critical|High|Medium|Low",
  "primary_issue_category": "Network|Database|Security|Resource|Code|General",
  "key_findings": ["finding1", "finding2", "finding3"],
  "recommended_actions": ["action1", "action2", "action3"],
  "risk_assessment": "Brief risk assessment"
}

Return ONLY valid JSON.`, string(data)), nil
}
