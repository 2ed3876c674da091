package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/helmcode/logtriage/pkg/extractor"
	"github.com/helmcode/logtriage/pkg/llm"
	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/parser"
	"github.com/helmcode/logtriage/pkg/prompts"
)

const maxPatterns = 10

// Analyzer classifies log files and rolls the results up across files.
type Analyzer struct {
	llm         llm.LLM
	cache       *lru.Cache[string, model.FileClassification]
	concurrency int
	logger      *log.Logger
	now         func() time.Time
}

type Option func(*Analyzer)

// WithCache remembers successful classifications keyed by filename and error
// window so a resumed run over the same files does not call the model again.
func WithCache(size int) Option {
	return func(a *Analyzer) {
		if size <= 0 {
			return
		}
		c, err := lru.New[string, model.FileClassification](size)
		if err == nil {
			a.cache = c
		}
	}
}

// WithConcurrency classifies up to n files at once. Results keep input order.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) { a.concurrency = n }
}

func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

func New(l llm.LLM, opts ...Option) *Analyzer {
	a := &Analyzer{
		llm:         l,
		concurrency: 1,
		logger:      log.New(io.Discard, "", 0),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessFiles classifies every file, aggregates the results and asks for a
// rollup. The outcome is degraded when any file or the rollup fell back.
func (a *Analyzer) ProcessFiles(ctx context.Context, files []model.LogFile) (*model.ClassificationResult, model.Outcome) {
	results := a.classifyAll(ctx, files)
	agg := Aggregate(results)
	analysis, rollupOutcome := a.Summarize(ctx, agg)

	var reasons []string
	for _, r := range results {
		if r.Status == model.StatusParseError || r.Status == model.StatusError {
			reasons = append(reasons, fmt.Sprintf("%s: %s", r.Filename, r.Status))
		}
	}
	if !rollupOutcome.IsOK() {
		reasons = append(reasons, "rollup: "+rollupOutcome.Reason)
	}

	outcome := model.OK()
	if len(reasons) > 0 {
		outcome = model.Degraded(strings.Join(reasons, "; "))
	}

	return &model.ClassificationResult{
		FilesProcessed:       len(files),
		TotalErrors:          agg.TotalErrors,
		FileResults:          results,
		AggregatedErrors:     agg.Entries,
		SeverityDistribution: agg.Distribution,
		AggregatedAnalysis:   analysis,
		Timestamp:            a.now(),
	}, outcome
}

func (a *Analyzer) classifyAll(ctx context.Context, files []model.LogFile) []model.FileClassification {
	results := make([]model.FileClassification, len(files))
	if a.concurrency <= 1 || len(files) < 2 {
		for i, f := range files {
			results[i] = a.ClassifyFile(ctx, f)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, f := range files {
		g.Go(func() error {
			results[i] = a.ClassifyFile(ctx, f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ClassifyFile turns one log into a FileClassification. It never fails: a
// malformed reply yields status parse_error and any other failure status error,
// each with a single synthetic record.
func (a *Analyzer) ClassifyFile(ctx context.Context, file model.LogFile) (result model.FileClassification) {
	filename := file.Filename
	if filename == "" {
		filename = "unknown"
	}

	lines := extractor.ErrorLines(file.Content, extractor.MultiFileLimit)
	if len(lines) == 0 {
		return model.FileClassification{
			Filename: filename,
			Errors:   []model.ErrorRecord{},
			Status:   model.StatusNoErrors,
		}
	}

	window := extractor.Tail(lines, extractor.ClassifierWindow)
	patterns := extractor.Patterns(lines, maxPatterns)

	defer func() {
		if r := recover(); r != nil {
			result = failedClassification(filename, len(lines), patterns, fmt.Errorf("panic: %v", r))
		}
	}()

	key := cacheKey(filename, window)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			a.logger.Printf("analyzer: %s: using cached classification", filename)
			return cached
		}
	}

	raw, err := a.llm.Generate(ctx, prompts.ClassifySystem, prompts.BuildClassifyPrompt(filename, window))
	if err != nil {
		a.logger.Printf("analyzer: %s: generation failed: %v", filename, err)
		return failedClassification(filename, len(lines), patterns, err)
	}

	parsed, err := parser.ParseClassification(raw)
	if err != nil {
		a.logger.Printf("analyzer: %s: %v", filename, err)
		return failedClassification(filename, len(lines), patterns, err)
	}

	result = model.FileClassification{
		Filename:   filename,
		ErrorCount: max(parsed.ErrorCount, 0),
		Errors:     normalizeRecords(parsed.Errors),
		Categories: parsed.Categories,
		Summary:    parsed.Summary,
		Status:     model.StatusAnalyzed,
		Patterns:   patterns,
	}
	if a.cache != nil {
		a.cache.Add(key, result)
	}
	return result
}

func failedClassification(filename string, lineCount int, patterns []model.LinePattern, err error) model.FileClassification {
	status, errType, sev := model.StatusError, "Analysis Error", model.SeverityHigh
	if errors.Is(err, parser.ErrMalformed) {
		status, errType, sev = model.StatusParseError, "Parse Error", model.SeverityMedium
	}
	return model.FileClassification{
		Filename:   filename,
		ErrorCount: lineCount,
		Errors: []model.ErrorRecord{{
			ErrorType: errType,
			Severity:  sev,
			Message:   err.Error(),
		}},
		Status:   status,
		Patterns: patterns,
	}
}

func normalizeRecords(in []model.ErrorRecord) []model.ErrorRecord {
	out := make([]model.ErrorRecord, 0, len(in))
	for _, r := range in {
		r.ErrorType = strings.TrimSpace(r.ErrorType)
		if r.ErrorType == "" {
			r.ErrorType = "Unknown"
		}
		r.Severity = model.NormalizeSeverity(string(r.Severity))
		out = append(out, r)
	}
	return out
}

func cacheKey(filename string, window []string) string {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(window, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
