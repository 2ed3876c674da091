package model

import "sort"

type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeDegraded OutcomeStatus = "degraded"
	OutcomeFailed   OutcomeStatus = "failed"
	OutcomeSkipped  OutcomeStatus = "skipped"
)

// Outcome tags what a step produced: a real value, a fallback value with the
// reason it was used, or nothing.
type Outcome struct {
	Status OutcomeStatus `json:"status" yaml:"status"`
	Reason string        `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func OK() Outcome                    { return Outcome{Status: OutcomeOK} }
func Degraded(reason string) Outcome { return Outcome{Status: OutcomeDegraded, Reason: reason} }
func Failed(reason string) Outcome   { return Outcome{Status: OutcomeFailed, Reason: reason} }
func Skipped(reason string) Outcome  { return Outcome{Status: OutcomeSkipped, Reason: reason} }
func (o Outcome) IsOK() bool         { return o.Status == OutcomeOK }
func (o Outcome) HasValue() bool     { return o.Status == OutcomeOK || o.Status == OutcomeDegraded }

// RankedEntries orders entries by count descending, then error type ascending,
// giving a total order independent of map iteration.
func RankedEntries(entries map[string]AggregatedErrorEntry) []AggregatedErrorEntry {
	out := make([]AggregatedErrorEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ErrorType < out[j].ErrorType
	})
	return out
}
