package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/notify"
	"github.com/helmcode/logtriage/pkg/pipeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubClassifier struct{}

func (stubClassifier) ProcessFiles(_ context.Context, files []model.LogFile) (*model.ClassificationResult, model.Outcome) {
	return &model.ClassificationResult{
		FilesProcessed: len(files),
		AggregatedErrors: map[string]model.AggregatedErrorEntry{
			"OOMKilled": {ErrorType: "OOMKilled", Count: 2, Severity: model.SeverityCritical, Files: []string{"a.log"}},
		},
	}, model.OK()
}

type stubFinder struct{}

func (stubFinder) FindSolutions(context.Context, model.AggregatedErrorEntry, *model.AggregatedAnalysis) ([]model.SolutionCandidate, model.Outcome) {
	return []model.SolutionCandidate{{Rank: 1, Title: "Raise memory limit"}}, model.OK()
}

type stubNotifier struct{ sent int }

func (n *stubNotifier) Send(context.Context, notify.Notice) *notify.Results {
	n.sent++
	return &notify.Results{Slack: &notify.ChannelResult{Success: true}, Jira: &notify.ChannelResult{Success: true}, AllSuccess: true}
}

func newTestServer(t *testing.T) (*stubNotifier, *gin.Engine) {
	t.Helper()
	n := &stubNotifier{}
	srv := NewServer("", pipeline.NewWith(stubClassifier{}, stubFinder{}, n, nil), "scripted")
	srv.startTime = time.Now()
	return n, srv.routes()
}

func post(t *testing.T, r *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

var logFiles = []model.LogFile{{Filename: "a.log", Content: "FATAL out of memory"}}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["status"] != "ok" || body["provider"] != "scripted" {
		t.Errorf("body = %v", body)
	}
}

func TestClassifyEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w, body := post(t, r, "/api/classify", runRequest{LogFiles: logFiles})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["current_step"] != "classification_complete" || body["success"] != true {
		t.Errorf("body = %v", body)
	}
}

func TestClassifyEndpointEmpty(t *testing.T) {
	_, r := newTestServer(t)

	_, body := post(t, r, "/api/classify", runRequest{})
	errs, _ := body["errors"].([]interface{})
	if len(errs) != 1 || errs[0] != "No log files provided" || body["success"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestRunEndpoint(t *testing.T) {
	n, r := newTestServer(t)

	_, body := post(t, r, "/api/run", runRequest{LogFiles: logFiles})
	solutions, _ := body["solutions"].([]interface{})
	if len(solutions) != 1 {
		t.Errorf("solutions = %v", body["solutions"])
	}
	if body["notification_results"] != nil || n.sent != 0 {
		t.Errorf("notification_results = %v", body["notification_results"])
	}
}

func TestNotifyEndpoint(t *testing.T) {
	n, r := newTestServer(t)

	w, _ := post(t, r, "/api/notify", runRequest{LogFiles: logFiles})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing selection status = %d", w.Code)
	}

	w, body := post(t, r, "/api/notify", runRequest{LogFiles: logFiles, SelectedSolution: &model.SolutionCandidate{Title: "Raise memory limit"}})
	if w.Code != http.StatusOK || body["current_step"] != "notifications_sent" || n.sent != 1 {
		t.Errorf("status = %d, body = %v", w.Code, body)
	}
}

func TestInvalidJSON(t *testing.T) {
	_, r := newTestServer(t)
	for _, path := range []string{"/api/classify", "/api/run", "/api/notify"} {
		if w, _ := post(t, r, path, "{not json"); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}
}
