package pipeline

import (
	"context"
	"fmt"

	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/notify"
	"github.com/helmcode/logtriage/pkg/solver"
)

// guard turns a panic inside a stage into a run error so the next stage still
// runs.
func (p *Pipeline) guard(stage Stage, failStep Step, prefix string, in State, out *State) {
	if r := recover(); r != nil {
		msg := fmt.Sprintf("%s: %v", prefix, r)
		p.logger.Printf("pipeline: run %s: %s", in.RunID, msg)
		*out = in.fail(stage, failStep, msg)
	}
}

func (p *Pipeline) classify(ctx context.Context, in State) (out State) {
	defer p.guard(StageClassify, StepClassificationFailed, "Classification error", in, &out)

	st := in.at(StepClassifying)
	if len(st.LogFiles) == 0 {
		return st.fail(StageClassify, StepClassificationFailed, "No log files provided")
	}
	if err := ctx.Err(); err != nil {
		return st.fail(StageClassify, StepClassificationFailed, fmt.Sprintf("Classification error: %v", err))
	}

	p.logger.Printf("pipeline: run %s: classifying %d file(s)", st.RunID, len(st.LogFiles))
	result, outcome := p.classifier.ProcessFiles(ctx, st.LogFiles)
	if result == nil || !outcome.HasValue() {
		return st.fail(StageClassify, StepClassificationFailed, "Classification error: "+outcome.Reason)
	}

	st.Classification = result
	st.AggregatedErrors = result.AggregatedErrors
	return st.at(StepClassificationComplete).record(StageClassify, outcome)
}

func (p *Pipeline) solve(ctx context.Context, in State) (out State) {
	defer p.guard(StageSolve, StepSolutionFindingFailed, "Solution finding error", in, &out)

	st := in.at(StepFindingSolutions)
	if st.Classification == nil {
		return st.fail(StageSolve, StepSolutionFindingFailed, "No classification result available")
	}
	primary, ok := solver.PrimaryError(st.AggregatedErrors)
	if !ok {
		return st.fail(StageSolve, StepSolutionFindingFailed, "No errors found to generate solutions for")
	}

	p.logger.Printf("pipeline: run %s: finding solutions for %s", st.RunID, primary.ErrorType)
	analysis := st.Classification.AggregatedAnalysis
	candidates, outcome := p.finder.FindSolutions(ctx, primary, &analysis)

	st.Solutions = solver.Rank(candidates)
	return st.at(StepSolutionsFound).record(StageSolve, outcome)
}

func (p *Pipeline) notify(ctx context.Context, in State) (out State) {
	defer p.guard(StageNotify, StepNotificationFailed, "Notification error", in, &out)

	st := in.at(StepSendingNotifications)
	if st.SelectedSolution == nil {
		return st.withError("No solution selected for notification").
			at(StepNotificationSkipped).
			record(StageNotify, model.Skipped("no solution selected"))
	}
	primary, ok := solver.PrimaryError(st.AggregatedErrors)
	if !ok {
		return st.withError("No errors to notify about").
			at(StepNotificationSkipped).
			record(StageNotify, model.Skipped("no errors"))
	}

	var analysis *model.AggregatedAnalysis
	if st.Classification != nil {
		analysis = &st.Classification.AggregatedAnalysis
	}
	var logContent string
	if len(st.LogFiles) > 0 {
		logContent = st.LogFiles[0].Content
	}

	p.logger.Printf("pipeline: run %s: notifying about %s", st.RunID, primary.ErrorType)
	results := p.notifier.Send(ctx, notify.Notice{
		ErrorType:  primary.ErrorType,
		Severity:   primary.Severity,
		Causes:     notify.CausesFrom(analysis, primary),
		Solution:   *st.SelectedSolution,
		LogContent: logContent,
	})
	if results == nil {
		return st.fail(StageNotify, StepNotificationFailed, "Notification error: no results returned")
	}

	st.Notifications = results
	outcome := model.OK()
	if !results.AllSuccess {
		outcome = model.Degraded("one or more channels failed")
	}
	return st.at(StepNotificationsSent).record(StageNotify, outcome)
}
