package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/helmcode/logtriage/pkg/model"
)

// Models do not keep JSON scalar types straight: counts arrive quoted, line
// numbers arrive where a timestamp string was asked for, lists arrive as null.
// The wire types below accept those variants and only reject values whose
// shape is wrong (an object where a scalar belongs).

// flexString accepts a string, number, boolean or null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", preview(string(data), 40))
	default:
		*s = flexString(data)
	}
	return nil
}

// flexInt accepts a number, a numeric string or null. Fractions are
// truncated; a string that is not a number decodes as zero, which callers
// treat as absent.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*n = 0
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = flexInt(parseLooseInt(v))
		return nil
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*n = flexInt(parseLooseInt(string(data)))
		return nil
	default:
		return fmt.Errorf("expected a number, got %s", preview(string(data), 40))
	}
}

func parseLooseInt(s string) int {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// flexStrings accepts a list of scalars, a single scalar or null.
type flexStrings []string

func (l *flexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] != '[' {
		var one flexString
		if err := one.UnmarshalJSON(data); err != nil {
			return err
		}
		*l = flexStrings{string(one)}
		return nil
	}
	var items []flexString
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(flexStrings, 0, len(items))
	for _, it := range items {
		out = append(out, string(it))
	}
	*l = out
	return nil
}

type wireRecord struct {
	ErrorType       flexString `json:"error_type"`
	Severity        flexString `json:"severity"`
	Frequency       flexInt    `json:"frequency"`
	FirstOccurrence flexString `json:"first_occurrence"`
	LastOccurrence  flexString `json:"last_occurrence"`
	Message         flexString `json:"message"`
}

func (w wireRecord) record() model.ErrorRecord {
	return model.ErrorRecord{
		ErrorType:       string(w.ErrorType),
		Severity:        model.Severity(w.Severity),
		Frequency:       int(w.Frequency),
		FirstOccurrence: string(w.FirstOccurrence),
		LastOccurrence:  string(w.LastOccurrence),
		Message:         string(w.Message),
	}
}

type wireClassification struct {
	ErrorCount flexInt      `json:"error_count"`
	Errors     []wireRecord `json:"errors"`
	Categories flexStrings  `json:"categories"`
	Summary    flexString   `json:"summary"`
}

func (w wireClassification) classification() *Classification {
	records := make([]model.ErrorRecord, 0, len(w.Errors))
	for _, r := range w.Errors {
		records = append(records, r.record())
	}
	return &Classification{
		ErrorCount: int(w.ErrorCount),
		Errors:     records,
		Categories: []string(w.Categories),
		Summary:    string(w.Summary),
	}
}

type wireAnalysis struct {
	OverallSeverity      flexString  `json:"overall_severity"`
	PrimaryIssueCategory flexString  `json:"primary_issue_category"`
	KeyFindings          flexStrings `json:"key_findings"`
	RecommendedActions   flexStrings `json:"recommended_actions"`
	RiskAssessment       flexString  `json:"risk_assessment"`
}

func (w wireAnalysis) analysis() *model.AggregatedAnalysis {
	return &model.AggregatedAnalysis{
		OverallSeverity:      string(w.OverallSeverity),
		PrimaryIssueCategory: string(w.PrimaryIssueCategory),
		KeyFindings:          []string(w.KeyFindings),
		RecommendedActions:   []string(w.RecommendedActions),
		RiskAssessment:       string(w.RiskAssessment),
	}
}

type wireSolution struct {
	Rank          flexInt     `json:"rank"`
	Title         flexString  `json:"title"`
	Description   flexString  `json:"description"`
	Effectiveness flexString  `json:"effectiveness"`
	Complexity    flexString  `json:"complexity"`
	TimeEstimate  flexString  `json:"time_estimate"`
	Steps         flexStrings `json:"steps"`
	CodeExample   flexString  `json:"code_example"`
	Prerequisites flexStrings `json:"prerequisites"`
	RiskLevel     flexString  `json:"risk_level"`
}

func (w wireSolution) candidate() model.SolutionCandidate {
	return model.SolutionCandidate{
		Rank:          int(w.Rank),
		Title:         string(w.Title),
		Description:   string(w.Description),
		Effectiveness: string(w.Effectiveness),
		Complexity:    string(w.Complexity),
		TimeEstimate:  string(w.TimeEstimate),
		Steps:         []string(w.Steps),
		CodeExample:   string(w.CodeExample),
		Prerequisites: []string(w.Prerequisites),
		RiskLevel:     string(w.RiskLevel),
	}
}
