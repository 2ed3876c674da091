package model

import (
	"sort"
	"strings"
	"time"
)

// LogFile is one input log, immutable once handed to the pipeline.
type LogFile struct {
	Filename string `json:"filename" yaml:"filename"`
	Content  string `json:"content" yaml:"content"`
}

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Severities lists the histogram buckets in descending order of urgency.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// NormalizeSeverity maps any casing of the four known levels onto the
// canonical value. Anything else becomes Medium.
func NormalizeSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// ErrorRecord is one typed error reported by the classifier for a single file.
type ErrorRecord struct {
	ErrorType       string   `json:"error_type" yaml:"error_type"`
	Severity        Severity `json:"severity" yaml:"severity"`
	Frequency       int      `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	FirstOccurrence string   `json:"first_occurrence,omitempty" yaml:"first_occurrence,omitempty"`
	LastOccurrence  string   `json:"last_occurrence,omitempty" yaml:"last_occurrence,omitempty"`
	Message         string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Freq returns the reported frequency, or 1 when the model left it out.
func (r ErrorRecord) Freq() int {
	if r.Frequency <= 0 {
		return 1
	}
	return r.Frequency
}

type ClassificationStatus string

const (
	StatusNoErrors   ClassificationStatus = "no_errors"
	StatusAnalyzed   ClassificationStatus = "analyzed"
	StatusParseError ClassificationStatus = "parse_error"
	StatusError      ClassificationStatus = "error"
)

// LinePattern is a group of extracted lines sharing one masked template.
type LinePattern struct {
	Template string `json:"template" yaml:"template"`
	Count    int    `json:"count" yaml:"count"`
}

// FileClassification is the classifier output for one file. It is built once
// and never mutated afterwards.
type FileClassification struct {
	Filename   string               `json:"filename" yaml:"filename"`
	ErrorCount int                  `json:"error_count" yaml:"error_count"`
	Errors     []ErrorRecord        `json:"errors" yaml:"errors"`
	Categories []string             `json:"categories,omitempty" yaml:"categories,omitempty"`
	Summary    string               `json:"summary,omitempty" yaml:"summary,omitempty"`
	Status     ClassificationStatus `json:"status" yaml:"status"`
	Patterns   []LinePattern        `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// AggregatedErrorEntry rolls one error type up across every file.
// Severity is the severity of the first record seen for the type.
type AggregatedErrorEntry struct {
	ErrorType string   `json:"error_type" yaml:"error_type"`
	Count     int      `json:"count" yaml:"count"`
	Severity  Severity `json:"severity" yaml:"severity"`
	Files     []string `json:"files" yaml:"files"`
}

// HasFile reports whether filename contributed to the entry.
func (e AggregatedErrorEntry) HasFile(filename string) bool {
	i := sort.SearchStrings(e.Files, filename)
	return i < len(e.Files) && e.Files[i] == filename
}

// SeverityDistribution counts individual error records per severity bucket.
type SeverityDistribution map[Severity]int

func NewSeverityDistribution() SeverityDistribution {
	d := make(SeverityDistribution, len(Severities))
	for _, s := range Severities {
		d[s] = 0
	}
	return d
}

// AggregatedAnalysis is the rollup produced over the aggregate statistics.
type AggregatedAnalysis struct {
	OverallSeverity      string   `json:"overall_severity" yaml:"overall_severity"`
	PrimaryIssueCategory string   `json:"primary_issue_category" yaml:"primary_issue_category"`
	KeyFindings          []string `json:"key_findings" yaml:"key_findings"`
	RecommendedActions   []string `json:"recommended_actions" yaml:"recommended_actions"`
	RiskAssessment       string   `json:"risk_assessment" yaml:"risk_assessment"`
}

// ClassificationResult is everything stage one produces.
type ClassificationResult struct {
	FilesProcessed       int                             `json:"files_processed" yaml:"files_processed"`
	TotalErrors          int                             `json:"total_errors" yaml:"total_errors"`
	FileResults          []FileClassification            `json:"file_results" yaml:"file_results"`
	AggregatedErrors     map[string]AggregatedErrorEntry `json:"aggregated_errors" yaml:"aggregated_errors"`
	SeverityDistribution SeverityDistribution            `json:"severity_distribution" yaml:"severity_distribution"`
	AggregatedAnalysis   AggregatedAnalysis              `json:"aggregated_analysis" yaml:"aggregated_analysis"`
	Timestamp            time.Time                       `json:"timestamp" yaml:"timestamp"`
}

// SolutionCandidate is one remediation option. Rank is the label assigned at
// generation time; after re-ranking the slice position is authoritative.
type SolutionCandidate struct {
	Rank          int      `json:"rank" yaml:"rank"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description" yaml:"description"`
	Effectiveness string   `json:"effectiveness" yaml:"effectiveness"`
	Complexity    string   `json:"complexity" yaml:"complexity"`
	TimeEstimate  string   `json:"time_estimate" yaml:"time_estimate"`
	Steps         []string `json:"steps" yaml:"steps"`
	CodeExample   string   `json:"code_example,omitempty" yaml:"code_example,omitempty"`
	Prerequisites []string `json:"prerequisites" yaml:"prerequisites"`
	RiskLevel     string   `json:"risk_level" yaml:"risk_level"`
}
