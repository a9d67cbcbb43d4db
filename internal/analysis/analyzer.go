// Package analysis ranks document sections against a persona and task using
// deterministic keyword weighting, and extracts refined snippets from the
// best sections.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/lexicon"
)

// Stage names a step of a run, reported to observers as it starts.
type Stage string

const (
	StageExtracting Stage = "extracting_terms"
	StageScoring    Stage = "scoring"
	StageRanking    Stage = "ranking"
	StageRefining   Stage = "refining"
	StageAssembling Stage = "assembling"
)

// Options are the tunable parameters of a run.
type Options struct {
	TopK                   int
	HeadingBoost           float64
	SentencesPerRefinement int
	SubSectionLimit        int // 0 refines every ranked section
	Workers                int
	Terms                  TermOptions
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		TopK:                   5,
		HeadingBoost:           DefaultHeadingBoost,
		SentencesPerRefinement: DefaultSentencesPerRefinement,
		Workers:                4,
		Terms:                  DefaultTermOptions(),
	}
}

func (o Options) Validate() error {
	if o.TopK <= 0 {
		return invalidInput("top_k", fmt.Sprintf("must be positive, got %d", o.TopK))
	}
	if o.HeadingBoost < 0 || math.IsNaN(o.HeadingBoost) || math.IsInf(o.HeadingBoost, 0) {
		return invalidInput("heading_boost", fmt.Sprintf("must be a finite non-negative number, got %g", o.HeadingBoost))
	}
	if o.SentencesPerRefinement <= 0 {
		return invalidInput("sentences_per_refinement", fmt.Sprintf("must be positive, got %d", o.SentencesPerRefinement))
	}
	if o.SubSectionLimit < 0 {
		return invalidInput("subsection_limit", fmt.Sprintf("must not be negative, got %d", o.SubSectionLimit))
	}
	return o.Terms.validate()
}

// Input is everything a run consumes. Sections of all documents are passed
// together; Documents lists the source identifiers in input order.
type Input struct {
	PersonaJob PersonaJob
	Documents  []string
	Sections   []doctree.Section
}

// Analyzer runs the extract, score, rank, refine, assemble sequence.
type Analyzer struct {
	opts    Options
	norm    *lexicon.Normalizer
	scorer  *Scorer
	refiner *Refiner
	log     *slog.Logger
	now     func() time.Time
}

func NewAnalyzer(opts Options, norm *lexicon.Normalizer, log *slog.Logger) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	scorer := NewScorer(norm, opts.HeadingBoost)
	return &Analyzer{
		opts:    opts,
		norm:    norm,
		scorer:  scorer,
		refiner: NewRefiner(scorer, opts.SentencesPerRefinement),
		log:     log,
		now:     time.Now,
	}, nil
}

// Options returns the validated options the analyzer was built with.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Terms derives the TermSet a run over pj would score against.
func (a *Analyzer) Terms(pj PersonaJob) (TermSet, error) {
	return ExtractTerms(pj, a.norm, a.opts.Terms)
}

// Run executes a full run. On any error it returns an empty Summary.
func (a *Analyzer) Run(ctx context.Context, in Input) (Summary, error) {
	return a.RunObserved(ctx, in, nil)
}

// RunObserved is Run with a callback invoked as each stage begins.
func (a *Analyzer) RunObserved(ctx context.Context, in Input, observe func(Stage)) (Summary, error) {
	if observe == nil {
		observe = func(Stage) {}
	}
	if len(in.Documents) == 0 {
		return Summary{}, invalidInput("documents", "at least one document is required")
	}

	observe(StageExtracting)
	terms, err := a.Terms(in.PersonaJob)
	if err != nil {
		return Summary{}, err
	}
	a.log.Debug("derived terms", "count", terms.Len(), "terms", terms.Terms())

	observe(StageScoring)
	scored, err := a.scorer.ScoreAll(ctx, in.Sections, terms, a.opts.Workers)
	if err != nil {
		return Summary{}, fmt.Errorf("score sections: %w", err)
	}

	observe(StageRanking)
	ranked, err := Rank(scored, a.opts.TopK)
	if err != nil {
		return Summary{}, err
	}
	a.log.Debug("ranked sections", "scored", len(scored), "kept", ranked.Len())

	observe(StageRefining)
	limit := a.opts.SubSectionLimit
	if limit == 0 {
		limit = a.opts.TopK
	}
	refined, err := a.refiner.RefineAll(ctx, ranked, terms, limit, a.opts.Workers)
	if err != nil {
		return Summary{}, fmt.Errorf("refine sections: %w", err)
	}

	observe(StageAssembling)
	return Assemble(in.PersonaJob, ranked, refined, in.Documents, a.now())
}
