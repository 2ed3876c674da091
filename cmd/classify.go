package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helmcode/logtriage/pkg/formatter"
)

func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [FILE...]",
		Short: "Classify and aggregate log errors without generating solutions",
		Long: `Run only the classification stage: per-file classification, cross-file
aggregation and the rollup summary.

Examples:
  logtriage classify /var/log/app/*.log
  kubectl logs deploy/api | logtriage classify -`,
		RunE: runClassify,
	}

	addSourceFlags(cmd)

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := gatherInputs(ctx, args)
	if err != nil {
		return err
	}
	printHeader("Log Error Classification", files)

	p, _, err := newPipeline(ctx, newLogger())
	if err != nil {
		return err
	}

	s := newSpinner(fmt.Sprintf(" Classifying %d log files...", len(files)))
	result := p.ClassifyOnly(ctx, files)
	s.Stop()
	printSuccess(fmt.Sprintf("Classification finished at %s", result.CurrentStep))

	return formatter.DisplayResult(os.Stdout, result, outputFormat)
}
