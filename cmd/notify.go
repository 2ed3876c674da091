package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/logtriage/pkg/formatter"
	"github.com/helmcode/logtriage/pkg/model"
)

var (
	solutionFile string
	dryRun       bool
)

func NewNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify FILE... --solution SOLUTION.yaml",
		Short: "Classify logs and notify with an externally chosen solution",
		Long: `Classify the logs, skip solution generation and send the solution read from
--solution to Slack and Jira.

Examples:
  logtriage notify api.log --solution fix.yaml
  logtriage notify api.log --solution fix.yaml --dry-run`,
		RunE: runNotify,
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVar(&solutionFile, "solution", "", "YAML or JSON file holding the selected solution")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify only, do not send notifications")
	_ = cmd.MarkFlagRequired("solution")

	return cmd
}

func readSolution(path string) (*model.SolutionCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read solution: %w", err)
	}
	// JSON is valid YAML, so one decoder serves both.
	var sol model.SolutionCandidate
	if err := yaml.Unmarshal(data, &sol); err != nil {
		return nil, fmt.Errorf("failed to parse solution %s: %w", path, err)
	}
	if sol.Title == "" {
		return nil, fmt.Errorf("solution %s has no title", path)
	}
	return &sol, nil
}

func runNotify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	selected, err := readSolution(solutionFile)
	if err != nil {
		return err
	}
	files, err := gatherInputs(ctx, args)
	if err != nil {
		return err
	}
	printHeader("Log Error Notification", files)

	p, _, err := newPipeline(ctx, newLogger())
	if err != nil {
		return err
	}

	s := newSpinner(" Classifying and notifying...")
	result := p.RunWithSelectedSolution(ctx, files, selected, !dryRun)
	s.Stop()
	printSuccess(fmt.Sprintf("Run finished at %s", result.CurrentStep))

	return formatter.DisplayResult(os.Stdout, result, outputFormat)
}
