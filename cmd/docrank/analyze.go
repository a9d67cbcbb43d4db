package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/analysis"
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/output"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/request"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		inputDir    string
		requestFile string
		persona     string
		job         string
		outFile     string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank sections and write the summary JSON",
		Long: `Analyze ranks the sections of a set of documents.

Documents come either from a request file (documents, persona and
job_to_be_done) or from every supported file in --input. --persona and --job
override the request file's values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pj := analysis.PersonaJob{Persona: persona, Job: job}
			var paths []string

			switch {
			case requestFile != "":
				req, err := request.Load(requestFile)
				if err != nil {
					return err
				}
				dir := inputDir
				if dir == "" {
					dir = defaultDocumentDir(requestFile)
				}
				paths = req.Paths(dir)
				fromFile := req.PersonaJob()
				if pj.Persona == "" {
					pj.Persona = fromFile.Persona
				}
				if pj.Job == "" {
					pj.Job = fromFile.Job
				}
			case inputDir != "":
				var err error
				paths, err = listDocuments(inputDir)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --request or --input is required")
			}

			summary, err := a.analyze(cmd.Context(), pj, paths)
			if err != nil {
				return err
			}
			if outFile == "" || outFile == "-" {
				return output.Write(cmd.OutOrStdout(), summary)
			}
			if err := output.WriteFile(outFile, summary); err != nil {
				return err
			}
			a.log.Info("wrote summary", "path", outFile, "sections", len(summary.Sections))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputDir, "input", "i", "", "directory of documents (with --request: where its filenames live)")
	f.StringVarP(&requestFile, "request", "r", "", "request file in YAML or JSON")
	f.StringVar(&persona, "persona", "", "persona description")
	f.StringVar(&job, "job", "", "job to be done")
	f.StringVarP(&outFile, "out", "o", "-", "output file, - for stdout")
	return cmd
}

// analyze parses every path and runs the ranking. Any parse failure aborts
// the run so no partial summary is produced.
func (a *app) analyze(ctx context.Context, pj analysis.PersonaJob, paths []string) (analysis.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RunTimeout)
	defer cancel()

	analyzer, err := analysis.NewAnalyzer(a.cfg.Options(), a.cfg.Normalizer(), a.log)
	if err != nil {
		return analysis.Summary{}, err
	}
	// Reject a bad persona or job before spending time on parsing.
	if _, err := analyzer.Terms(pj); err != nil {
		return analysis.Summary{}, err
	}

	start := time.Now()
	opts := parser.Options{PDFFallbackPdftotext: a.cfg.PDFFallbackPdftotext}
	in := analysis.Input{PersonaJob: pj}
	for _, path := range paths {
		docID := filepath.Base(path)
		tree, err := parser.ParseFile(path, opts)
		if err != nil {
			return analysis.Summary{}, fmt.Errorf("parse %s: %w", docID, err)
		}
		sections := doctree.FilterShort(doctree.Sections(docID, tree), a.cfg.MinSectionWords)
		a.log.Debug("parsed document", "document", docID, "sections", len(sections))
		in.Documents = append(in.Documents, docID)
		in.Sections = append(in.Sections, sections...)
	}

	summary, err := analyzer.Run(ctx, in)
	if err != nil {
		return analysis.Summary{}, err
	}
	a.log.Info("analysis complete",
		"documents", len(in.Documents),
		"sections", len(in.Sections),
		"ranked", len(summary.Sections),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

// defaultDocumentDir follows the challenge layout, where documents sit in a
// PDFs directory next to the request file.
func defaultDocumentDir(requestFile string) string {
	dir := filepath.Dir(requestFile)
	if info, err := os.Stat(filepath.Join(dir, "PDFs")); err == nil && info.IsDir() {
		return filepath.Join(dir, "PDFs")
	}
	return dir
}

// listDocuments returns the supported files in dir, sorted by name.
func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported documents in %s", dir)
	}
	return paths, nil
}
