package analysis

import (
	"slices"
	"sort"
	"time"

	"github.com/dgallion1/docrank/internal/doctree"
)

// PersonaJob is the role and task relevance is judged against.
type PersonaJob struct {
	Persona string
	Job     string
}

// TermSet maps a normalized term to its weight in (0, 1]. It is built once per
// run and only read afterwards.
type TermSet struct {
	weights map[string]float64
	terms   []string // sorted keys of weights
}

func newTermSet(weights map[string]float64) TermSet {
	terms := make([]string, 0, len(weights))
	for t := range weights {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return TermSet{weights: weights, terms: terms}
}

// Weight returns the weight of term, or 0 if the term is not in the set.
func (ts TermSet) Weight(term string) float64 {
	return ts.weights[term]
}

func (ts TermSet) Len() int {
	return len(ts.weights)
}

// Terms returns the terms in sorted order.
func (ts TermSet) Terms() []string {
	return slices.Clone(ts.terms)
}

// ScoredSection is a section with its relevance to a TermSet.
type ScoredSection struct {
	doctree.Section
	Score        float64
	MatchedTerms []string // sorted, unique
}

// RankedSection is a ScoredSection with its 1-based position in the ranking.
type RankedSection struct {
	ScoredSection
	Rank int
}

// RankedResult is the top-K sections across all documents, best first.
type RankedResult struct {
	Sections []RankedSection
}

func (r RankedResult) Len() int {
	return len(r.Sections)
}

// RefinedSubSection is the extract chosen from one ranked section.
type RefinedSubSection struct {
	Section         RankedSection
	Text            string
	SentenceIndices []int // ascending positions into the section's sentences
}

// Metadata describes the inputs of a run.
type Metadata struct {
	Persona     string
	Job         string
	Documents   []string
	ProcessedAt time.Time
}

// SectionSummary is one entry of the ranked section list.
type SectionSummary struct {
	DocumentID string
	Page       int
	Heading    string
	Level      doctree.Level
	Rank       int
	Score      float64
}

// SubSectionSummary is one refined extract.
type SubSectionSummary struct {
	DocumentID string
	Page       int
	Heading    string
	Text       string
	Rank       int
}

// Summary is the aggregate result of a run.
type Summary struct {
	Metadata    Metadata
	Sections    []SectionSummary
	SubSections []SubSectionSummary
}
