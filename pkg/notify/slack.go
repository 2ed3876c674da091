package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/helmcode/logtriage/pkg/model"
)

const maxSlackCauses = 3

var severityColors = map[model.Severity]string{
	model.SeverityCritical: "#FF0000",
	model.SeverityHigh:     "#FF6B6B",
	model.SeverityMedium:   "#FFA500",
	model.SeverityLow:      "#FFD700",
}

// Slack posts notices to an incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

func NewSlack(webhookURL string, timeout time.Duration) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	TS     int64        `json:"ts"`
}

func (s *Slack) PostMessage(ctx context.Context, n Notice) error {
	color, ok := severityColors[n.Severity]
	if !ok {
		color = "#808080"
	}

	var causes strings.Builder
	for i, c := range n.Causes {
		if i == maxSlackCauses {
			break
		}
		fmt.Fprintf(&causes, "• *%s*: %s\n", orDefault(c.Title, "Unknown"), c.Description)
	}
	var steps strings.Builder
	for _, step := range n.Solution.Steps {
		fmt.Fprintf(&steps, "• %s\n", step)
	}

	payload := map[string]interface{}{
		"attachments": []slackAttachment{{
			Color: color,
			Title: "🔍 Log Error Analysis",
			Fields: []slackField{
				{Title: "Error Type", Value: n.ErrorType, Short: true},
				{Title: "Severity", Value: string(n.Severity), Short: true},
				{Title: "Possible Causes", Value: orDefault(causes.String(), "No causes identified")},
				{Title: "Selected Solution", Value: orDefault(n.Solution.Title, "Unknown")},
				{Title: "Solution Description", Value: orDefault(n.Solution.Description, "No description")},
				{Title: "Implementation Steps", Value: orDefault(steps.String(), "No steps provided")},
			},
			Footer: "logtriage",
			TS:     s.now().Unix(),
		}},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack webhook error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
