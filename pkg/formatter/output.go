package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/notify"
	"github.com/helmcode/logtriage/pkg/pipeline"
)

// DisplayResult writes a run result to w as human, json or yaml output.
func DisplayResult(w io.Writer, result *pipeline.Result, format string) error {
	switch format {
	case "json":
		return displayJSON(w, result)
	case "yaml":
		return displayYAML(w, result)
	case "human", "":
		displayHuman(w, result)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func displayJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, v interface{}) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, result *pipeline.Result) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	if cr := result.ClassificationResult; cr != nil {
		white.Fprintf(w, "📂 FILES PROCESSED: %d   TOTAL ERRORS: %d\n\n", cr.FilesProcessed, cr.TotalErrors)

		ranked := model.RankedEntries(result.AggregatedErrors)
		for _, f := range cr.FileResults {
			fmt.Fprintf(w, "   %s %s (%s, %d error lines)\n", statusIcon(f.Status), f.Filename, f.Status, f.ErrorCount)
			if len(ranked) > 0 && ranked[0].HasFile(f.Filename) {
				fmt.Fprintf(w, "      %s primary error %s\n", color.HiBlackString("↳"), ranked[0].ErrorType)
			}
			for _, p := range f.Patterns {
				fmt.Fprintf(w, "      %s %s\n", color.HiBlackString("%4dx", p.Count), p.Template)
			}
		}
		fmt.Fprintln(w)

		if len(result.AggregatedErrors) > 0 {
			yellow.Fprintln(w, "⚠️  AGGREGATED ERRORS:")
			for i, e := range ranked {
				fmt.Fprintf(w, "   %d. %s %s  x%d\n", i+1, getSeverityIcon(string(e.Severity)), e.ErrorType, e.Count)
				fmt.Fprintf(w, "      Files: %s\n", strings.Join(e.Files, ", "))
			}
			fmt.Fprintln(w)

			fmt.Fprint(w, "   ")
			for _, s := range model.Severities {
				fmt.Fprintf(w, "%s %s: %d  ", getSeverityIcon(string(s)), s, cr.SeverityDistribution[s])
			}
			fmt.Fprint(w, "\n\n")
		}

		a := cr.AggregatedAnalysis
		getSeverityColor(a.OverallSeverity).Fprintf(w, "📊 OVERALL SEVERITY: %s (%s)\n\n", strings.ToUpper(a.OverallSeverity), a.PrimaryIssueCategory)
		if len(a.KeyFindings) > 0 {
			red.Fprintln(w, "💡 KEY FINDINGS:")
			for _, f := range a.KeyFindings {
				fmt.Fprintf(w, "   • %s\n", f)
			}
			fmt.Fprintln(w)
		}
		if len(a.RecommendedActions) > 0 {
			green.Fprintln(w, "🚀 RECOMMENDED ACTIONS:")
			for _, act := range a.RecommendedActions {
				fmt.Fprintf(w, "   • %s\n", color.GreenString(act))
			}
			fmt.Fprintln(w)
		}
		if a.RiskAssessment != "" {
			fmt.Fprintln(w, wrapText("Risk: "+a.RiskAssessment, 80, "   "))
			fmt.Fprintln(w)
		}
	}

	if len(result.Solutions) > 0 {
		cyan.Fprintln(w, "🛠  SOLUTIONS:")
		for i, s := range result.Solutions {
			fmt.Fprintf(w, "   %d. %s %s\n", i+1, getPriorityIcon(s.Effectiveness), s.Title)
			fmt.Fprintf(w, "      Effectiveness: %s  Complexity: %s  Risk: %s  Time: %s\n", s.Effectiveness, s.Complexity, s.RiskLevel, s.TimeEstimate)
			if s.Description != "" {
				fmt.Fprintln(w, wrapText(s.Description, 80, "      "))
			}
			for j, step := range s.Steps {
				fmt.Fprintf(w, "      %d) %s\n", j+1, step)
			}
			if s.CodeExample != "" {
				fmt.Fprintf(w, "      Example: %s\n", color.CyanString(s.CodeExample))
			}
			fmt.Fprintln(w)
		}
	}

	if n := result.NotificationResults; n != nil {
		white.Fprintln(w, "📣 NOTIFICATIONS:")
		displayChannel(w, "Slack", n.Slack)
		displayChannel(w, "JIRA", n.Jira)
		fmt.Fprintln(w)
	}

	if len(result.Errors) > 0 {
		red.Fprintln(w, "❌ ERRORS:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "   • %s\n", e)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run %s finished at %s. Use -o json or -o yaml for machine-readable output", result.RunID, result.CurrentStep))
}

func displayChannel(w io.Writer, name string, r *notify.ChannelResult) {
	switch {
	case r == nil:
		fmt.Fprintf(w, "   ⚪ %s: not attempted\n", name)
	case r.Success && r.TicketURL != "":
		fmt.Fprintf(w, "   🟢 %s: %s (%s)\n", name, r.Message, r.TicketURL)
	case r.Success:
		fmt.Fprintf(w, "   🟢 %s: %s\n", name, r.Message)
	default:
		fmt.Fprintf(w, "   🔴 %s: %s\n", name, color.RedString(r.Error))
	}
}

func statusIcon(s model.ClassificationStatus) string {
	switch s {
	case model.StatusAnalyzed:
		return "🔍"
	case model.StatusNoErrors:
		return "✅"
	case model.StatusParseError:
		return "❓"
	default:
		return "❌"
	}
}

func getSeverityColor(severity string) *color.Color {
	switch strings.ToLower(severity) {
	case "critical":
		return color.New(color.FgRed, color.Bold)
	case "high":
		return color.New(color.FgRed)
	case "medium":
		return color.New(color.FgYellow)
	case "low":
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func getSeverityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

func getPriorityIcon(effectiveness string) string {
	switch strings.ToLower(effectiveness) {
	case "high":
		return "⚡"
	case "medium":
		return "🔹"
	case "low":
		return "▫️"
	default:
		return "•"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
