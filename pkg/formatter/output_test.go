package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/notify"
	"github.com/helmcode/logtriage/pkg/pipeline"
)

func sampleResult() *pipeline.Result {
	entries := map[string]model.AggregatedErrorEntry{
		"NullPointerException": {ErrorType: "NullPointerException", Count: 5, Severity: model.SeverityHigh, Files: []string{"B"}},
	}
	return &pipeline.Result{
		RunID: "run-1",
		ClassificationResult: &model.ClassificationResult{
			FilesProcessed:       1,
			TotalErrors:          5,
			FileResults:          []model.FileClassification{{Filename: "B", ErrorCount: 5, Status: model.StatusAnalyzed}},
			AggregatedErrors:     entries,
			SeverityDistribution: model.SeverityDistribution{model.SeverityHigh: 1},
			AggregatedAnalysis:   model.AggregatedAnalysis{OverallSeverity: "High", KeyFindings: []string{"NPE dominates"}},
		},
		AggregatedErrors: entries,
		Solutions:        []model.SolutionCandidate{{Rank: 1, Title: "Add nil check", Steps: []string{"guard"}}},
		NotificationResults: &notify.Results{
			Slack: &notify.ChannelResult{Error: "Slack notifier not initialized. Provide SLACK_WEBHOOK_URL."},
			Jira:  &notify.ChannelResult{Success: true, Message: "Ticket OPS-1 created successfully", TicketURL: "https://jira/browse/OPS-1"},
		},
		CurrentStep: pipeline.StepNotificationsSent,
		Errors:      []string{},
		Success:     true,
	}
}

func TestDisplayHuman(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	if err := DisplayResult(&buf, sampleResult(), "human"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"NullPointerException  x5", "NPE dominates", "Add nil check", "https://jira/browse/OPS-1", "SLACK_WEBHOOK_URL", "run-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDisplayHumanMarksPrimaryErrorFiles(t *testing.T) {
	color.NoColor = true
	r := sampleResult()
	r.ClassificationResult.FileResults = append(r.ClassificationResult.FileResults,
		model.FileClassification{Filename: "A", Status: model.StatusNoErrors})

	var buf bytes.Buffer
	if err := DisplayResult(&buf, r, "human"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if n := strings.Count(out, "primary error NullPointerException"); n != 1 {
		t.Errorf("primary error marked %d times, want 1:\n%s", n, out)
	}
	if i, j := strings.Index(out, "primary error"), strings.Index(out, " A ("); j < i {
		t.Errorf("marker not attached to file B:\n%s", out)
	}
}

func TestDisplayJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := DisplayResult(&buf, sampleResult(), "json"); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["current_step"] != "notifications_sent" || decoded["success"] != true {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestDisplayYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := DisplayResult(&buf, sampleResult(), "yaml"); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if decoded["run_id"] != "run-1" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
}

func TestDisplayUnknownFormat(t *testing.T) {
	if err := DisplayResult(&bytes.Buffer{}, sampleResult(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("aaa bbb ccc", 8, "  ")
	if got != "  aaa\n  bbb\n  ccc" {
		t.Errorf("wrapText = %q", got)
	}
}
