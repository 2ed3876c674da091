package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/helmcode/logtriage/pkg/analyzer"
	"github.com/helmcode/logtriage/pkg/llm"
	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/notify"
	"github.com/helmcode/logtriage/pkg/solver"
)

// Classifier is stage one: per-file classification, aggregation and rollup.
type Classifier interface {
	ProcessFiles(ctx context.Context, files []model.LogFile) (*model.ClassificationResult, model.Outcome)
}

// SolutionFinder is stage two before ranking.
type SolutionFinder interface {
	FindSolutions(ctx context.Context, primary model.AggregatedErrorEntry, analysis *model.AggregatedAnalysis) ([]model.SolutionCandidate, model.Outcome)
}

// Notifier is stage three.
type Notifier interface {
	Send(ctx context.Context, n notify.Notice) *notify.Results
}

// Config is everything a pipeline needs. Nothing is read from the environment
// past this point.
type Config struct {
	LLM         llm.Config
	Notify      notify.Config
	Concurrency int
	CacheSize   int
	Logger      *log.Logger
}

type Pipeline struct {
	classifier Classifier
	finder     SolutionFinder
	notifier   Notifier
	logger     *log.Logger
	newID      func() string
}

// New builds the model client from cfg.LLM and wires every stage.
func New(ctx context.Context, cfg Config) (*Pipeline, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	client, err := llm.NewFactory().Create(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	client = llm.WithLogging(client, logger)

	a := analyzer.New(client,
		analyzer.WithConcurrency(cfg.Concurrency),
		analyzer.WithCache(cfg.CacheSize),
		analyzer.WithLogger(logger),
	)
	return NewWith(a, solver.New(client, logger), notify.NewDispatcher(cfg.Notify, logger), logger), nil
}

func NewWith(c Classifier, f SolutionFinder, n Notifier, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{
		classifier: c,
		finder:     f,
		notifier:   n,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

func (p *Pipeline) newState(files []model.LogFile, selected *model.SolutionCandidate) State {
	return State{
		RunID:            p.newID(),
		LogFiles:         files,
		SelectedSolution: selected,
		CurrentStep:      StepInitialized,
	}
}

// Run classifies, solves and, when sendNotifications is set, notifies with
// selected.
func (p *Pipeline) Run(ctx context.Context, files []model.LogFile, selected *model.SolutionCandidate, sendNotifications bool) *Result {
	st := p.newState(files, selected)
	st = p.classify(ctx, st)
	st = p.solve(ctx, st)
	if sendNotifications {
		st = p.notify(ctx, st)
	} else {
		st = st.record(StageNotify, model.Skipped("notifications not requested"))
	}
	p.finish(st)
	return st.Result()
}

// ClassifyOnly runs stage one alone.
func (p *Pipeline) ClassifyOnly(ctx context.Context, files []model.LogFile) *Result {
	st := p.classify(ctx, p.newState(files, nil))
	p.finish(st)
	return st.Result()
}

// RunWithSelectedSolution classifies, skips solution generation and notifies
// with a caller-supplied candidate when sendNotifications is set.
func (p *Pipeline) RunWithSelectedSolution(ctx context.Context, files []model.LogFile, selected *model.SolutionCandidate, sendNotifications bool) *Result {
	st := p.classify(ctx, p.newState(files, selected))
	st = st.record(StageSolve, model.Skipped("solution supplied by caller"))
	if sendNotifications {
		st = p.notify(ctx, st)
	}
	p.finish(st)
	return st.Result()
}

// NotifyResult sends notifications for a finished run using selected, without
// classifying again. files supplies the log excerpt for tickets.
func (p *Pipeline) NotifyResult(ctx context.Context, prior *Result, files []model.LogFile, selected *model.SolutionCandidate) *Result {
	st := State{
		RunID:            prior.RunID,
		LogFiles:         files,
		Classification:   prior.ClassificationResult,
		AggregatedErrors: prior.AggregatedErrors,
		Solutions:        prior.Solutions,
		SelectedSolution: selected,
		CurrentStep:      prior.CurrentStep,
		Errors:           prior.Errors,
	}
	for _, so := range prior.Stages {
		if so.Stage != StageNotify {
			st = st.record(so.Stage, so.Outcome)
		}
	}
	st = p.notify(ctx, st)
	p.finish(st)
	return st.Result()
}

func (p *Pipeline) finish(st State) {
	p.logger.Printf("pipeline: run %s finished at %s with %d error(s)", st.RunID, st.CurrentStep, len(st.Errors))
}
