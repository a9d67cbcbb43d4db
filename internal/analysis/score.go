package analysis

import (
	"context"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/lexicon"
	"golang.org/x/sync/errgroup"
)

// DefaultHeadingBoost is the multiplier applied to term occurrences in a heading.
const DefaultHeadingBoost = 1.5

// Scorer computes keyword relevance. It holds only immutable configuration.
type Scorer struct {
	HeadingBoost float64
	Normalizer   *lexicon.Normalizer
}

func NewScorer(norm *lexicon.Normalizer, headingBoost float64) *Scorer {
	return &Scorer{HeadingBoost: headingBoost, Normalizer: norm}
}

// Score sums weight x (body count + boost x heading count) over every term.
// A section without matches scores 0 with an empty MatchedTerms.
func (s *Scorer) Score(sec doctree.Section, terms TermSet) ScoredSection {
	body := s.Normalizer.Counts(sec.Body)
	heading := s.Normalizer.Counts(sec.Heading)
	score, matched := s.weigh(terms, body, heading)
	return ScoredSection{Section: sec, Score: score, MatchedTerms: matched}
}

// weigh walks terms in sorted order so the floating point sum is reproducible.
func (s *Scorer) weigh(terms TermSet, body, heading map[string]int) (float64, []string) {
	total := 0.0
	matched := []string{}
	for _, t := range terms.terms {
		hits := float64(body[t]) + s.HeadingBoost*float64(heading[t])
		if hits <= 0 {
			continue
		}
		total += terms.weights[t] * hits
		matched = append(matched, t)
	}
	return total, matched
}

// ScoreAll scores every section on up to workers goroutines. Output order
// matches input order.
func (s *Scorer) ScoreAll(ctx context.Context, sections []doctree.Section, terms TermSet, workers int) ([]ScoredSection, error) {
	out := make([]ScoredSection, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i := range sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.Score(sections[i], terms)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
