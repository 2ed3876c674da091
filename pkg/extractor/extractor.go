package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/helmcode/logtriage/pkg/model"
)

const (
	// SingleFileLimit bounds extraction when a single log is analyzed on its own.
	SingleFileLimit = 50
	// MultiFileLimit bounds extraction for each file of a multi-file run.
	MultiFileLimit = 100
	// ClassifierWindow is how many of the extracted lines are sent to the classifier.
	ClassifierWindow = 30
)

// Keywords is the fixed set a line must contain (lowercased) to count as a probable error.
var Keywords = []string{
	"error", "exception", "failed", "failure", "fatal",
	"traceback", "stack trace", "err", "critical",
	"panic", "abort", "timeout", "denied", "forbidden",
	"warning", "warn", "alert",
}

// IsErrorLine reports whether line matches any keyword.
func IsErrorLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ErrorLines returns the last limit lines of text that look like errors.
// An empty result is the "no errors" case.
func ErrorLines(text string, limit int) []string {
	var matched []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if IsErrorLine(line) {
			matched = append(matched, line)
		}
	}
	return Tail(matched, limit)
}

// Tail returns the last n elements of lines. n <= 0 means no limit.
func Tail(lines []string, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

var (
	reTimestamp = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?`)
	reQuoted    = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	reHex       = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b|\b[0-9a-fA-F]{8,}\b`)
	reNumber    = regexp.MustCompile(`\b\d+(?:\.\d+)?`)
	reSpaces    = regexp.MustCompile(`\s+`)
)

// Template masks the variable parts of a log line.
func Template(line string) string {
	t := reTimestamp.ReplaceAllString(line, "<ts>")
	t = reQuoted.ReplaceAllString(t, "<str>")
	t = reHex.ReplaceAllString(t, "<hex>")
	t = reNumber.ReplaceAllString(t, "<num>")
	return strings.TrimSpace(reSpaces.ReplaceAllString(t, " "))
}

// Patterns groups lines by template, most frequent first. max <= 0 keeps all.
func Patterns(lines []string, max int) []model.LinePattern {
	counts := make(map[string]int)
	for _, l := range lines {
		t := Template(l)
		if t == "" {
			continue
		}
		counts[t]++
	}

	out := make([]model.LinePattern, 0, len(counts))
	for t, c := range counts {
		out = append(out, model.LinePattern{Template: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Template < out[j].Template
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
