package solver

import (
	"sort"

	"github.com/helmcode/logtriage/pkg/model"
)

var effectivenessWeight = map[string]int{"High": 3, "Medium": 2, "Low": 1}

// Lower complexity scores higher.
var complexityWeight = map[string]int{"Low": 3, "Medium": 2, "High": 1}

// Score is 2*effectiveness + complexity. Unknown values weigh as Medium.
func Score(c model.SolutionCandidate) int {
	eff, ok := effectivenessWeight[c.Effectiveness]
	if !ok {
		eff = 2
	}
	comp, ok := complexityWeight[c.Complexity]
	if !ok {
		comp = 2
	}
	return eff*2 + comp
}

// Rank returns a copy of candidates ordered by descending score, keeping the
// prior relative order on ties. Rank labels are left as generated; position is
// the authoritative order afterwards.
func Rank(candidates []model.SolutionCandidate) []model.SolutionCandidate {
	out := append([]model.SolutionCandidate(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return Score(out[i]) > Score(out[j])
	})
	return out
}
