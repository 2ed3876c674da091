package solver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/helmcode/logtriage/pkg/llm"
	"github.com/helmcode/logtriage/pkg/model"
)

func TestPrimaryError(t *testing.T) {
	entries := map[string]model.AggregatedErrorEntry{
		"ConnectionTimeout":    {ErrorType: "ConnectionTimeout", Count: 4, Files: []string{"A", "B"}},
		"NullPointerException": {ErrorType: "NullPointerException", Count: 5, Files: []string{"B"}},
	}
	got, ok := PrimaryError(entries)
	if !ok || got.ErrorType != "NullPointerException" {
		t.Fatalf("primary = %+v, %v", got, ok)
	}

	entries["AAA"] = model.AggregatedErrorEntry{ErrorType: "AAA", Count: 5}
	if got, _ := PrimaryError(entries); got.ErrorType != "AAA" {
		t.Errorf("tie should go to smallest error type, got %s", got.ErrorType)
	}

	if _, ok := PrimaryError(nil); ok {
		t.Error("expected no primary error for empty input")
	}
}

func TestFindSolutionsPadsSingleCandidate(t *testing.T) {
	s := llm.NewScripted(llm.Texts("```json\n" + `{"solutions":[{"rank":1,"title":"Add nil check","effectiveness":"High","complexity":"Low","steps":["guard"]}]}` + "\n```")...)
	got, outcome := New(s, nil).FindSolutions(context.Background(), model.AggregatedErrorEntry{ErrorType: "NullPointerException", Count: 5}, nil)

	if !outcome.IsOK() {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(got) != CandidateCount {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Title != "Add nil check" {
		t.Errorf("first = %q", got[0].Title)
	}
	for i, want := range []string{"Alternative Solution 2", "Alternative Solution 3"} {
		c := got[i+1]
		if c.Title != want {
			t.Errorf("candidate %d title = %q, want %q", i+2, c.Title, want)
		}
		if c.Effectiveness != "Medium" || c.Complexity != "Medium" || c.RiskLevel != "Medium" || c.TimeEstimate != "Unknown" {
			t.Errorf("candidate %d defaults = %+v", i+2, c)
		}
		if len(c.Steps) != 3 {
			t.Errorf("candidate %d steps = %v", i+2, c.Steps)
		}
	}

	prompt := s.Calls()[0].Prompt
	if !strings.Contains(prompt, "Error Type: NullPointerException") || strings.Contains(prompt, "Aggregated Analysis") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
}

func TestFindSolutionsTruncatesAndSorts(t *testing.T) {
	reply := `{"solutions":[
		{"rank":3,"title":"c"},
		{"title":"no rank"},
		{"rank":1,"title":"a"},
		{"rank":2,"title":"b"},
		{"rank":1,"title":"extra"}
	]}`
	got, _ := New(llm.NewScripted(llm.Texts(reply)...), nil).FindSolutions(context.Background(), model.AggregatedErrorEntry{ErrorType: "x"}, &model.AggregatedAnalysis{OverallSeverity: "High"})

	titles := []string{got[0].Title, got[1].Title, got[2].Title}
	if strings.Join(titles, ",") != "a,c,no rank" {
		t.Errorf("titles = %v", titles)
	}
	seen := map[int]bool{}
	for _, c := range got {
		if c.Rank < 1 || c.Rank > CandidateCount || seen[c.Rank] {
			t.Errorf("rank %d invalid or duplicated", c.Rank)
		}
		seen[c.Rank] = true
	}
}

func TestFindSolutionsQuotedRanks(t *testing.T) {
	reply := `{"solutions":[
		{"rank":"2","title":"b","steps":"roll back"},
		{"rank":"1","title":"a"},
		{"rank":"3","title":"c","prerequisites":null}
	]}`
	got, outcome := New(llm.NewScripted(llm.Texts(reply)...), nil).FindSolutions(context.Background(), model.AggregatedErrorEntry{ErrorType: "x"}, nil)

	if !outcome.IsOK() {
		t.Fatalf("outcome = %+v", outcome)
	}
	titles := []string{got[0].Title, got[1].Title, got[2].Title}
	if strings.Join(titles, ",") != "a,b,c" {
		t.Errorf("titles = %v", titles)
	}
	if len(got[1].Steps) != 1 || got[1].Steps[0] != "roll back" {
		t.Errorf("steps = %v", got[1].Steps)
	}
}

func TestFindSolutionsMalformed(t *testing.T) {
	got, outcome := New(llm.NewScripted(llm.Texts("I think you should restart it.")...), nil).FindSolutions(context.Background(), model.AggregatedErrorEntry{ErrorType: "x"}, nil)
	if outcome.Status != model.OutcomeDegraded {
		t.Errorf("outcome = %+v", outcome)
	}
	want := []string{"Retry Analysis", "Manual Review", "Contact Support"}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i].Title != want[i] || got[i].RiskLevel != "Low" {
			t.Errorf("candidate %d = %+v", i, got[i])
		}
	}
}

func TestFindSolutionsTransportFailure(t *testing.T) {
	got, outcome := New(llm.NewScripted(llm.Reply{Err: errors.New("quota exceeded")}), nil).FindSolutions(context.Background(), model.AggregatedErrorEntry{ErrorType: "x"}, nil)
	if outcome.Status != model.OutcomeDegraded {
		t.Errorf("outcome = %+v", outcome)
	}
	if len(got) != 1 || got[0].Title != "Error in Solution Generation" {
		t.Fatalf("got = %+v", got)
	}
	if !strings.Contains(got[0].Description, "quota exceeded") {
		t.Errorf("description = %q", got[0].Description)
	}
}
