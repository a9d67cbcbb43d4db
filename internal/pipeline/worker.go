package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docrank/internal/analysis"
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/lexicon"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/stats"
)

// WorkerConfig holds what a worker needs besides the job itself.
type WorkerConfig struct {
	Normalizer      *lexicon.Normalizer
	Parser          parser.Options
	MinSectionWords int
	RunTimeout      time.Duration
}

// Worker processes a single analysis job.
type Worker struct {
	cfg     WorkerConfig
	stats   *stats.RunStats
	metrics *Metrics
	log     *slog.Logger
}

func NewWorker(cfg WorkerConfig, runStats *stats.RunStats, metrics *Metrics, log *slog.Logger) *Worker {
	return &Worker{cfg: cfg, stats: runStats, metrics: metrics, log: log}
}

// Process parses the job's documents and runs the analysis. The job ends
// either completed with a summary or failed with no result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	start := time.Now()

	if w.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.RunTimeout)
		defer cancel()
	}

	phase := "parsing"
	fail := func(err error) {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("run exceeded %s: %w", w.cfg.RunTimeout, err)
		}
		log.Error("analysis failed", "phase", phase, "error", err)
		w.record(StatusFailed, time.Since(start), len(job.Filenames), 0)
		job.Fail(phase, err)
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, phase)
	docs, sections, err := w.parse(ctx, job, log)
	if err != nil {
		fail(err)
		return
	}
	log.Info("parsed documents", "documents", len(docs), "sections", len(sections))

	// Phase 2: Score, rank, refine.
	a, err := analysis.NewAnalyzer(job.Options(), w.cfg.Normalizer, log)
	if err != nil {
		fail(err)
		return
	}
	in := analysis.Input{PersonaJob: job.PersonaJob, Documents: docs, Sections: sections}
	summary, err := a.RunObserved(ctx, in, func(stage analysis.Stage) {
		phase = string(stage)
		job.SetStatus(statusForStage(stage), phase)
	})
	if err != nil {
		fail(err)
		return
	}

	elapsed := time.Since(start)
	w.record(StatusCompleted, elapsed, len(docs), len(sections))
	job.Complete(summary)
	log.Info("analysis complete",
		"ranked", len(summary.Sections),
		"refined", len(summary.SubSections),
		"duration_ms", elapsed.Milliseconds(),
	)
}

// parse turns each uploaded file into sections. Files whose content repeats
// an earlier upload are skipped so their sections are not ranked twice.
func (w *Worker) parse(ctx context.Context, job *Job, log *slog.Logger) ([]string, []doctree.Section, error) {
	var docs []string
	var sections []doctree.Section
	seen := make(map[string]string)

	for _, f := range job.Files() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		hash := ContentHashHex(f.Data)
		if first, ok := seen[hash]; ok {
			log.Info("duplicate document, skipping", "filename", f.Name, "duplicate_of", first)
			job.AddError(fmt.Sprintf("%s: duplicate of %s, skipped", f.Name, first))
			job.DuplicateSkipped()
			continue
		}
		seen[hash] = f.Name

		p, err := parser.ForFile(f.Name, w.cfg.Parser)
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		tree, err := p.Parse(bytes.NewReader(f.Data), f.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		secs := doctree.FilterShort(doctree.Sections(f.Name, tree), w.cfg.MinSectionWords)
		if len(secs) == 0 {
			log.Warn("document has no sections", "filename", f.Name)
		}
		docs = append(docs, f.Name)
		sections = append(sections, secs...)
		job.DocumentParsed(len(secs))
	}
	return docs, sections, nil
}

func (w *Worker) record(status JobStatus, elapsed time.Duration, docs, sections int) {
	if w.stats != nil {
		w.stats.Record(stats.Run{
			Duration:  elapsed,
			Documents: docs,
			Sections:  sections,
			Failed:    status == StatusFailed,
		})
	}
	w.metrics.recordRun(status, elapsed.Seconds(), sections)
}

func statusForStage(s analysis.Stage) JobStatus {
	switch s {
	case analysis.StageRanking:
		return StatusRanking
	case analysis.StageRefining, analysis.StageAssembling:
		return StatusRefining
	default:
		return StatusScoring
	}
}
