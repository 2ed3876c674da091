package pipeline

import (
	"slices"

	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/notify"
)

// Step is the current_step marker of a run.
type Step string

const (
	StepInitialized            Step = "initialized"
	StepClassifying            Step = "classifying_errors"
	StepClassificationComplete Step = "classification_complete"
	StepClassificationFailed   Step = "classification_failed"
	StepFindingSolutions       Step = "finding_solutions"
	StepSolutionsFound         Step = "solutions_found"
	StepSolutionFindingFailed  Step = "solution_finding_failed"
	StepSendingNotifications   Step = "sending_notifications"
	StepNotificationsSent      Step = "notifications_sent"
	StepNotificationFailed     Step = "notification_failed"
	StepNotificationSkipped    Step = "notification_skipped"
)

type Stage string

const (
	StageClassify Stage = "classify"
	StageSolve    Stage = "solve"
	StageNotify   Stage = "notify"
)

// StageOutcome records how one stage ended.
type StageOutcome struct {
	Stage         Stage `json:"stage" yaml:"stage"`
	model.Outcome `yaml:",inline"`
}

// State is threaded through the stages. Each stage takes a State and returns
// the next one; the input value is never modified.
type State struct {
	RunID            string
	LogFiles         []model.LogFile
	Classification   *model.ClassificationResult
	AggregatedErrors map[string]model.AggregatedErrorEntry
	Solutions        []model.SolutionCandidate
	SelectedSolution *model.SolutionCandidate
	Notifications    *notify.Results
	CurrentStep      Step
	Errors           []string
	Stages           []StageOutcome
}

func (s State) at(step Step) State {
	s.CurrentStep = step
	return s
}

func (s State) withError(msg string) State {
	s.Errors = append(slices.Clone(s.Errors), msg)
	return s
}

func (s State) record(stage Stage, o model.Outcome) State {
	s.Stages = append(slices.Clone(s.Stages), StageOutcome{Stage: stage, Outcome: o})
	return s
}

// fail records msg as a run error, marks the step and the stage outcome.
func (s State) fail(stage Stage, step Step, msg string) State {
	return s.withError(msg).at(step).record(stage, model.Failed(msg))
}

// Outcome returns the recorded outcome for stage, if the stage ran.
func (s State) Outcome(stage Stage) (model.Outcome, bool) {
	for _, so := range s.Stages {
		if so.Stage == stage {
			return so.Outcome, true
		}
	}
	return model.Outcome{}, false
}

// Result is the caller-facing view of a finished run.
type Result struct {
	RunID                string                                `json:"run_id" yaml:"run_id"`
	ClassificationResult *model.ClassificationResult           `json:"classification_result" yaml:"classification_result"`
	AggregatedErrors     map[string]model.AggregatedErrorEntry `json:"aggregated_errors" yaml:"aggregated_errors"`
	Solutions            []model.SolutionCandidate             `json:"solutions" yaml:"solutions"`
	SelectedSolution     *model.SolutionCandidate              `json:"selected_solution" yaml:"selected_solution"`
	NotificationResults  *notify.Results                       `json:"notification_results" yaml:"notification_results"`
	CurrentStep          Step                                  `json:"current_step" yaml:"current_step"`
	Errors               []string                              `json:"errors" yaml:"errors"`
	Stages               []StageOutcome                        `json:"stages" yaml:"stages"`
	Success              bool                                  `json:"success" yaml:"success"`
}

func (s State) Result() *Result {
	errs := s.Errors
	if errs == nil {
		errs = []string{}
	}
	return &Result{
		RunID:                s.RunID,
		ClassificationResult: s.Classification,
		AggregatedErrors:     s.AggregatedErrors,
		Solutions:            s.Solutions,
		SelectedSolution:     s.SelectedSolution,
		NotificationResults:  s.Notifications,
		CurrentStep:          s.CurrentStep,
		Errors:               errs,
		Stages:               s.Stages,
		Success:              len(s.Errors) == 0,
	}
}
