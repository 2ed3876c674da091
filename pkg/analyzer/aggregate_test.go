package analyzer

import (
	"reflect"
	"testing"

	"github.com/helmcode/logtriage/pkg/model"
)

func twoFileScenario() []model.FileClassification {
	return []model.FileClassification{
		{
			Filename:   "A",
			ErrorCount: 3,
			Status:     model.StatusAnalyzed,
			Errors: []model.ErrorRecord{
				{ErrorType: "ConnectionTimeout", Severity: model.SeverityMedium, Frequency: 3},
			},
		},
		{
			Filename:   "B",
			ErrorCount: 6,
			Status:     model.StatusAnalyzed,
			Errors: []model.ErrorRecord{
				{ErrorType: "ConnectionTimeout", Severity: model.SeverityMedium, Frequency: 1},
				{ErrorType: "NullPointerException", Severity: model.SeverityHigh, Frequency: 5},
			},
		},
	}
}

func TestAggregateTwoFiles(t *testing.T) {
	agg := Aggregate(twoFileScenario())

	ct := agg.Entries["ConnectionTimeout"]
	if ct.Count != 4 || !reflect.DeepEqual(ct.Files, []string{"A", "B"}) {
		t.Errorf("ConnectionTimeout = %+v", ct)
	}
	npe := agg.Entries["NullPointerException"]
	if npe.HasFile("A") || !npe.HasFile("B") {
		t.Errorf("NullPointerException files = %v, want only B", npe.Files)
	}
	if npe.Count != 5 || !reflect.DeepEqual(npe.Files, []string{"B"}) || npe.Severity != model.SeverityHigh {
		t.Errorf("NullPointerException = %+v", npe)
	}
	if len(agg.Entries) != 2 {
		t.Errorf("entries = %d", len(agg.Entries))
	}
	if agg.TotalErrors != 9 {
		t.Errorf("total errors = %d", agg.TotalErrors)
	}
	if agg.Distribution[model.SeverityMedium] != 2 || agg.Distribution[model.SeverityHigh] != 1 || agg.Distribution[model.SeverityLow] != 0 {
		t.Errorf("distribution = %v", agg.Distribution)
	}
	if !reflect.DeepEqual(agg.Order, []string{"ConnectionTimeout", "NullPointerException"}) {
		t.Errorf("order = %v", agg.Order)
	}
	if top := agg.Top(1); top[0].ErrorType != "NullPointerException" {
		t.Errorf("top = %+v", top)
	}
}

func TestAggregateCountEqualsFrequencySum(t *testing.T) {
	results := []model.FileClassification{
		{Filename: "x", Errors: []model.ErrorRecord{
			{ErrorType: "A", Frequency: 2},
			{ErrorType: "B"},
			{ErrorType: "A", Frequency: 7, Severity: "Critical"},
		}},
		{Filename: "y", Errors: []model.ErrorRecord{
			{ErrorType: "B", Frequency: 0},
			{ErrorType: "C", Frequency: 4},
		}},
		{Filename: "x", Errors: []model.ErrorRecord{{ErrorType: "A"}}},
	}

	agg := Aggregate(results)
	var entrySum, recordSum int
	for _, e := range agg.Entries {
		entrySum += e.Count
	}
	for _, r := range results {
		for _, rec := range r.Errors {
			recordSum += rec.Freq()
		}
	}
	if entrySum != recordSum {
		t.Fatalf("entry sum %d != record sum %d", entrySum, recordSum)
	}
	if a := agg.Entries["A"]; a.Count != 10 || len(a.Files) != 1 {
		t.Errorf("A = %+v (files must be a set)", a)
	}
	if agg.Entries["A"].Severity != model.SeverityMedium {
		t.Errorf("severity should be first seen (coerced Medium), got %s", agg.Entries["A"].Severity)
	}
	if agg.Distribution[model.SeverityCritical] != 1 || agg.Distribution[model.SeverityMedium] != 5 {
		t.Errorf("distribution = %v", agg.Distribution)
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)
	if len(agg.Entries) != 0 || agg.TotalErrors != 0 {
		t.Errorf("unexpected aggregate: %+v", agg)
	}
	for _, s := range model.Severities {
		if _, ok := agg.Distribution[s]; !ok {
			t.Errorf("bucket %s missing", s)
		}
	}
}

func TestTopTieBreak(t *testing.T) {
	agg := Aggregation{Entries: map[string]model.AggregatedErrorEntry{
		"b": {ErrorType: "b", Count: 3},
		"a": {ErrorType: "a", Count: 3},
		"c": {ErrorType: "c", Count: 9},
		"d": {ErrorType: "d", Count: 1},
	}}
	top := agg.Top(3)
	got := []string{top[0].ErrorType, top[1].ErrorType, top[2].ErrorType}
	if !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("top = %v", got)
	}
}
