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

const (
	jiraLogPreview       = 2000
	jiraDefaultIssueType = "Task"
)

var jiraPriorities = map[model.Severity]string{
	model.SeverityCritical: "Highest",
	model.SeverityHigh:     "High",
	model.SeverityMedium:   "Medium",
	model.SeverityLow:      "Low",
}

// Jira creates issues through the REST v2 API with basic auth.
type Jira struct {
	cfg    JiraConfig
	client *http.Client
	now    func() time.Time
}

func NewJira(cfg JiraConfig, timeout time.Duration) *Jira {
	cfg.Server = strings.TrimSuffix(cfg.Server, "/")
	if cfg.IssueType == "" {
		cfg.IssueType = jiraDefaultIssueType
	}
	return &Jira{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

func (j *Jira) CreateTicket(ctx context.Context, n Notice) (*TicketRef, error) {
	priority, ok := jiraPriorities[n.Severity]
	if !ok {
		priority = "Medium"
	}

	body := map[string]interface{}{
		"fields": map[string]interface{}{
			"project":     map[string]string{"key": j.cfg.ProjectKey},
			"summary":     fmt.Sprintf("[Log Error] %s - %s", n.ErrorType, n.Severity),
			"description": j.description(n),
			"issuetype":   map[string]string{"name": j.cfg.IssueType},
			"priority":    map[string]string{"name": priority},
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.cfg.Server+"/rest/api/2/issue", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(j.cfg.Email, j.cfg.APIToken)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create JIRA ticket: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to create JIRA ticket (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var issue struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Self string `json:"self"`
	}
	if err := json.Unmarshal(respBytes, &issue); err != nil {
		return nil, fmt.Errorf("decode JIRA response: %w", err)
	}
	if issue.Key == "" {
		return nil, fmt.Errorf("JIRA response carried no issue key")
	}
	return &TicketRef{ID: issue.ID, Key: issue.Key, URL: j.cfg.Server + "/browse/" + issue.Key}, nil
}

// description renders the notice as Jira wiki markup.
func (j *Jira) description(n Notice) string {
	var b strings.Builder
	b.WriteString("h2. Error Analysis Summary\n\n")
	fmt.Fprintf(&b, "*Error Type:* %s\n*Severity:* %s\n\n", n.ErrorType, n.Severity)

	b.WriteString("h2. Possible Causes\n\n")
	for i, c := range n.Causes {
		fmt.Fprintf(&b, "h3. Cause %d: %s\n%s\n\n", i+1, orDefault(c.Title, "Unknown"), c.Description)
	}

	fmt.Fprintf(&b, "h2. Selected Solution: %s\n\n%s\n\n", orDefault(n.Solution.Title, "Unknown"), n.Solution.Description)
	if len(n.Solution.Steps) > 0 {
		b.WriteString("h3. Implementation Steps:\n")
		for _, step := range n.Solution.Steps {
			fmt.Fprintf(&b, "# %s\n", step)
		}
	}
	if n.Solution.CodeExample != "" {
		fmt.Fprintf(&b, "\nh3. Code Example:\n{code}\n%s\n{code}\n", n.Solution.CodeExample)
	}

	logPreview := truncateRunes(n.LogContent, jiraLogPreview)
	b.WriteString("\nh2. Log Content (Preview)\n\n{code}\n")
	b.WriteString(orDefault(logPreview, "No log content provided"))
	b.WriteString("\n{code}\n\n----\n")
	fmt.Fprintf(&b, "_Generated by logtriage on %s_\n", j.now().Format("2006-01-02 15:04:05"))
	return b.String()
}
