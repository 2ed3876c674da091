package prompts

import (
	"fmt"
	"strings"
)

const ClassifySystem = "You are an expert log analyst. Always respond with valid JSON only."

func BuildClassifyPrompt(filename string, lines []string) string {
	return fmt.Sprintf(`Analyze the following log errors and provide a structured classification.

Log File: %s
Error Context:
%s

Provide a JSON response with this structure:
{
  "error_count": <number>,
  "errors": [
    {
      "error_type": "Brief error type",
      "severity": "Critical|High|Medium|Low",
      "frequency": <number of occurrences>,
      "first_occurrence": "timestamp or line number",
      "last_occurrence": "timestamp or line number",
      "message": "Error message summary"
    }
  ],
  "categories": ["Network", "Database", "Security", "Resource", "Code", "General"],
  "summary": "Brief summary of all errors"
}

Use the same error_type string for the same kind of error so results can be merged across files.
Return ONLY valid JSON.`, filename, strings.Join(lines, "\n"))
}
