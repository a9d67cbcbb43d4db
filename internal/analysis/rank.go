package analysis

import (
	"cmp"
	"fmt"
	"slices"
)

// Rank orders scored sections by descending score, breaking ties by ascending
// (DocumentID, OrderIndex), and keeps the first k with ranks 1..min(k, n).
func Rank(scored []ScoredSection, k int) (RankedResult, error) {
	if k <= 0 {
		return RankedResult{}, invalidInput("top_k", fmt.Sprintf("must be positive, got %d", k))
	}

	sorted := slices.Clone(scored)
	slices.SortStableFunc(sorted, compareScored)

	n := min(k, len(sorted))
	ranked := make([]RankedSection, n)
	for i := range n {
		ranked[i] = RankedSection{ScoredSection: sorted[i], Rank: i + 1}
	}
	return RankedResult{Sections: ranked}, nil
}

func compareScored(a, b ScoredSection) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(a.DocumentID, b.DocumentID); c != 0 {
		return c
	}
	return cmp.Compare(a.OrderIndex, b.OrderIndex)
}
