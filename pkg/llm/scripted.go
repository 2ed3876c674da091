package llm

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned once every queued reply has been consumed.
var ErrScriptExhausted = errors.New("llm: scripted client has no reply queued")

// Reply is one canned response of a Scripted client.
type Reply struct {
	Text string
	Err  error
}

// Call records what a Scripted client was asked.
type Call struct {
	System string
	Prompt string
}

// Scripted replays queued replies in order. It is used by tests and by
// offline dry runs.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Texts is shorthand for a script of successful replies.
func Texts(texts ...string) []Reply {
	out := make([]Reply, len(texts))
	for i, t := range texts {
		out[i] = Reply{Text: t}
	}
	return out
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Generate(ctx context.Context, system, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{System: system, Prompt: prompt})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.Text, r.Err
}

// Calls returns a copy of every request seen so far.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}
