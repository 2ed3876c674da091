package analyzer

import (
	"sort"

	"github.com/helmcode/logtriage/pkg/model"
)

// Aggregation is the cross-file fold of every FileClassification.
type Aggregation struct {
	FileCount    int
	TotalErrors  int
	Entries      map[string]model.AggregatedErrorEntry
	Distribution model.SeverityDistribution
	// Order lists error types in the order they were first seen.
	Order []string
}

// Aggregate folds classifications into one entry per error type. An entry's
// count is the sum of contributing frequencies, its severity is the severity
// of the first record seen and its files are a set. The distribution counts
// individual records, not entries.
func Aggregate(results []model.FileClassification) Aggregation {
	agg := Aggregation{
		FileCount:    len(results),
		Entries:      make(map[string]model.AggregatedErrorEntry),
		Distribution: model.NewSeverityDistribution(),
	}
	files := make(map[string]map[string]struct{})

	for _, res := range results {
		agg.TotalErrors += res.ErrorCount
		for _, rec := range res.Errors {
			errType := rec.ErrorType
			if errType == "" {
				errType = "Unknown"
			}
			sev := model.NormalizeSeverity(string(rec.Severity))

			entry, ok := agg.Entries[errType]
			if !ok {
				entry = model.AggregatedErrorEntry{ErrorType: errType, Severity: sev}
				files[errType] = make(map[string]struct{})
				agg.Order = append(agg.Order, errType)
			}
			entry.Count += rec.Freq()
			files[errType][res.Filename] = struct{}{}
			agg.Entries[errType] = entry

			agg.Distribution[sev]++
		}
	}

	for errType, set := range files {
		entry := agg.Entries[errType]
		entry.Files = make([]string, 0, len(set))
		for f := range set {
			entry.Files = append(entry.Files, f)
		}
		sort.Strings(entry.Files)
		agg.Entries[errType] = entry
	}
	return agg
}

// Top returns at most n entries by count descending, ties by error type.
func (a Aggregation) Top(n int) []model.AggregatedErrorEntry {
	ranked := model.RankedEntries(a.Entries)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
