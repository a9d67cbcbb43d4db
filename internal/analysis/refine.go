package analysis

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/dgallion1/docrank/internal/lexicon"
	"golang.org/x/sync/errgroup"
)

// DefaultSentencesPerRefinement is how many sentences a refinement keeps.
const DefaultSentencesPerRefinement = 3

// Refiner selects the most relevant sentences of a ranked section.
type Refiner struct {
	Sentences int
	Scorer    *Scorer
}

func NewRefiner(scorer *Scorer, sentences int) *Refiner {
	return &Refiner{Sentences: sentences, Scorer: scorer}
}

type sentenceScore struct {
	index int
	score float64
}

// Refine picks up to r.Sentences sentences with a nonzero score, best first
// (ties to the earlier sentence), and joins them back in document order. When
// nothing matches it falls back to the first sentence. A body with no sentences
// at all refines to the heading, or to the raw body when there is no heading.
func (r *Refiner) Refine(rs RankedSection, terms TermSet) RefinedSubSection {
	sentences := lexicon.Sentences(rs.Body)
	if len(sentences) == 0 {
		text := rs.Heading
		if text == "" {
			text = strings.Join(strings.Fields(rs.Body), " ")
		}
		return RefinedSubSection{Section: rs, Text: text, SentenceIndices: []int{}}
	}

	var hits []sentenceScore
	for i, sent := range sentences {
		score, _ := r.Scorer.weigh(terms, r.Scorer.Normalizer.Counts(sent), nil)
		if score > 0 {
			hits = append(hits, sentenceScore{index: i, score: score})
		}
	}
	if len(hits) == 0 {
		return RefinedSubSection{Section: rs, Text: sentences[0], SentenceIndices: []int{0}}
	}

	slices.SortFunc(hits, func(a, b sentenceScore) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	hits = hits[:min(max(r.Sentences, 1), len(hits))]

	indices := make([]int, len(hits))
	for i, h := range hits {
		indices[i] = h.index
	}
	slices.Sort(indices)

	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = sentences[idx]
	}
	return RefinedSubSection{Section: rs, Text: strings.Join(parts, " "), SentenceIndices: indices}
}

// RefineAll refines the first limit sections of ranked (all of them when limit
// is 0 or larger than the ranking) on up to workers goroutines, in rank order.
func (r *Refiner) RefineAll(ctx context.Context, ranked RankedResult, terms TermSet, limit, workers int) ([]RefinedSubSection, error) {
	n := ranked.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]RefinedSubSection, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = r.Refine(ranked.Sections[i], terms)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
