package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/logtriage/pkg/formatter"
)

var (
	selectIndex int
	sendNotify  bool
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [FILE...]",
		Short: "Classify log errors, propose ranked solutions and optionally notify",
		Long: `Run the full triage pipeline: classify errors in every log, aggregate them,
summarize the aggregate, generate three ranked remediation options and, when
asked, send the selected option to Slack and Jira.

Examples:
  # Analyze two local logs
  logtriage analyze api.log worker.log

  # Analyze pod logs and notify with the top ranked solution
  logtriage analyze --pod deployment/api -n production --notify

  # Notify with the second ranked solution, JSON output
  logtriage analyze app.log --select 2 -o json`,
		RunE: runAnalyze,
	}

	addSourceFlags(cmd)
	cmd.Flags().IntVar(&selectIndex, "select", 0, "Send notifications with the Nth ranked solution")
	cmd.Flags().BoolVar(&sendNotify, "notify", false, "Send notifications (uses the top ranked solution unless --select is given)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	files, err := gatherInputs(ctx, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no log files given: pass FILE arguments, --pod or --selector")
	}
	printHeader("Log Error Triage", files)

	p, _, err := newPipeline(ctx, logger)
	if err != nil {
		return err
	}

	s := newSpinner(fmt.Sprintf(" Analyzing %d log files...", len(files)))
	result := p.Run(ctx, files, nil, false)
	s.Stop()
	printSuccess(fmt.Sprintf("Analysis finished at %s", result.CurrentStep))

	if selectIndex > 0 || sendNotify {
		n := selectIndex
		if n == 0 {
			n = 1
		}
		if n > len(result.Solutions) {
			printError(fmt.Sprintf("Solution %d not available (%d generated)", n, len(result.Solutions)))
		} else {
			selected := result.Solutions[n-1]
			s = newSpinner(" Sending notifications...")
			result = p.NotifyResult(ctx, result, files, &selected)
			s.Stop()
			printSuccess(fmt.Sprintf("Notified with %q", selected.Title))
		}
	}

	return formatter.DisplayResult(os.Stdout, result, outputFormat)
}
