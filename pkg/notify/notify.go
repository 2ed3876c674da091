package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/helmcode/logtriage/pkg/model"
)

const (
	defaultTimeout = 10 * time.Second
	// logContentLimit bounds the log excerpt attached to a notice.
	logContentLimit = 5000
)

// Cause is one probable cause shown to humans.
type Cause struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Notice is everything a channel needs to report the dominant error and the
// chosen remediation.
type Notice struct {
	ErrorType  string
	Severity   model.Severity
	Causes     []Cause
	Solution   model.SolutionCandidate
	LogContent string
}

type ChatPoster interface {
	PostMessage(ctx context.Context, n Notice) error
}

// TicketRef identifies a created ticket.
type TicketRef struct {
	ID  string
	Key string
	URL string
}

type TicketCreator interface {
	CreateTicket(ctx context.Context, n Notice) (*TicketRef, error)
}

type JiraConfig struct {
	Server     string
	Email      string
	APIToken   string
	ProjectKey string
	IssueType  string
}

func (c JiraConfig) complete() bool {
	return c.Server != "" && c.Email != "" && c.APIToken != ""
}

// Config holds channel credentials. Empty fields leave a channel unconfigured.
type Config struct {
	SlackWebhookURL string
	Jira            JiraConfig
	Timeout         time.Duration
}

// ChannelResult is the outcome of one channel.
type ChannelResult struct {
	Success   bool   `json:"success" yaml:"success"`
	Platform  string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	TicketKey string `json:"ticket_key,omitempty" yaml:"ticket_key,omitempty"`
	TicketURL string `json:"ticket_url,omitempty" yaml:"ticket_url,omitempty"`
}

type Results struct {
	Slack      *ChannelResult `json:"slack" yaml:"slack"`
	Jira       *ChannelResult `json:"jira" yaml:"jira"`
	AllSuccess bool           `json:"all_success" yaml:"all_success"`
}

// Dispatcher fans one notice out to chat and ticketing. A failing channel
// never blocks the other.
type Dispatcher struct {
	chat    ChatPoster
	tickets TicketCreator
	// noTickets explains why tickets is nil.
	noTickets string
	logger    *log.Logger
}

// NewDispatcher wires the channels that cfg has credentials for.
func NewDispatcher(cfg Config, logger *log.Logger) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var chat ChatPoster
	if cfg.SlackWebhookURL != "" {
		chat = NewSlack(cfg.SlackWebhookURL, timeout)
	}
	d := NewDispatcherWith(chat, nil, logger)
	switch {
	case !cfg.Jira.complete():
	case cfg.Jira.ProjectKey == "":
		d.noTickets = "JIRA project key not provided."
	default:
		d.tickets = NewJira(cfg.Jira, timeout)
	}
	return d
}

// NewDispatcherWith uses the given channels as is. Either may be nil.
func NewDispatcherWith(chat ChatPoster, tickets TicketCreator, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dispatcher{
		chat:      chat,
		tickets:   tickets,
		noTickets: "JIRA notifier not initialized. Provide JIRA configuration.",
		logger:    logger,
	}
}

func (d *Dispatcher) Send(ctx context.Context, n Notice) *Results {
	n.LogContent = truncateRunes(n.LogContent, logContentLimit)
	res := &Results{
		Slack: d.postChat(ctx, n),
		Jira:  d.createTicket(ctx, n),
	}
	res.AllSuccess = res.Slack.Success && res.Jira.Success
	return res
}

// truncateRunes keeps the first n characters of s.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func (d *Dispatcher) postChat(ctx context.Context, n Notice) (res *ChannelResult) {
	if d.chat == nil {
		return &ChannelResult{Error: "Slack notifier not initialized. Provide SLACK_WEBHOOK_URL."}
	}
	defer func() {
		if r := recover(); r != nil {
			res = &ChannelResult{Platform: "Slack", Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if err := d.chat.PostMessage(ctx, n); err != nil {
		d.logger.Printf("notify: slack: %v", err)
		return &ChannelResult{Platform: "Slack", Error: err.Error()}
	}
	return &ChannelResult{Success: true, Platform: "Slack", Message: "Notification sent successfully"}
}

func (d *Dispatcher) createTicket(ctx context.Context, n Notice) (res *ChannelResult) {
	if d.tickets == nil {
		return &ChannelResult{Error: d.noTickets}
	}
	defer func() {
		if r := recover(); r != nil {
			res = &ChannelResult{Platform: "JIRA", Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	ref, err := d.tickets.CreateTicket(ctx, n)
	if err != nil {
		d.logger.Printf("notify: jira: %v", err)
		return &ChannelResult{Platform: "JIRA", Error: err.Error()}
	}
	return &ChannelResult{
		Success:   true,
		Platform:  "JIRA",
		TicketKey: ref.Key,
		TicketURL: ref.URL,
		Message:   fmt.Sprintf("Ticket %s created successfully", ref.Key),
	}
}

// CausesFrom turns key findings into causes. Without findings the primary
// entry's count is reported instead.
func CausesFrom(analysis *model.AggregatedAnalysis, primary model.AggregatedErrorEntry) []Cause {
	var causes []Cause
	if analysis != nil {
		for _, f := range analysis.KeyFindings {
			causes = append(causes, Cause{Title: f, Description: f})
		}
	}
	if len(causes) == 0 {
		causes = []Cause{{
			Title:       primary.ErrorType,
			Description: fmt.Sprintf("Error occurred %d times", primary.Count),
		}}
	}
	return causes
}
