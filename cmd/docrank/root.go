package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/config"
)

// app carries what every subcommand shares.
type app struct {
	verbose bool
	cfg     config.Config
	log     *slog.Logger

	// Overrides for config values; applied only when the flag is set.
	topK         int
	sentences    int
	headingBoost float64
	workers      int
	minWords     int
	stopWords    string
	noStem       bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "docrank",
		Short: "Rank document sections for a persona and a job to be done",
		Long: `docrank reads PDF, Markdown, HTML, DOCX and text documents, finds the
sections most relevant to a persona and their task, and extracts the key
sentences of each.

Example usage:
  docrank analyze --request "Collection 1/challenge1b_input.json" --out result.json
  docrank analyze --input ./docs --persona "Travel Planner" --job "Plan a 4 day trip"
  docrank terms --persona "Investment Analyst" --job "Analyze revenue trends"
  docrank sections report.pdf`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	pf.IntVar(&a.topK, "top-k", 0, "number of sections to rank (default from TOP_K)")
	pf.IntVar(&a.sentences, "sentences", 0, "sentences per refined extract (default from SENTENCES_PER_REFINEMENT)")
	pf.Float64Var(&a.headingBoost, "heading-boost", 0, "weight multiplier for heading matches (default from HEADING_BOOST)")
	pf.IntVar(&a.workers, "workers", 0, "parallel scoring workers (default from SCORE_WORKERS)")
	pf.IntVar(&a.minWords, "min-words", 0, "drop sections with fewer body words (default from MIN_SECTION_WORDS)")
	pf.StringVar(&a.stopWords, "stop-words", "", "comma separated stop words replacing the built-in list")
	pf.BoolVar(&a.noStem, "no-stem", false, "disable English stemming")

	root.AddCommand(newAnalyzeCmd(a), newTermsCmd(a), newSectionsCmd(a))
	return root
}

// init sets up logging and loads the config with flag overrides applied.
func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("top-k") {
		cfg.TopK = a.topK
	}
	if flags.Changed("sentences") {
		cfg.SentencesPerRefinement = a.sentences
	}
	if flags.Changed("heading-boost") {
		cfg.HeadingBoost = a.headingBoost
	}
	if flags.Changed("workers") {
		cfg.ScoreWorkers = a.workers
	}
	if flags.Changed("min-words") {
		cfg.MinSectionWords = a.minWords
	}
	if flags.Changed("stop-words") {
		cfg.StopWords = splitList(a.stopWords)
	}
	if a.noStem {
		cfg.Stemming = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log.Debug("configuration loaded",
		"top_k", cfg.TopK,
		"sentences", cfg.SentencesPerRefinement,
		"heading_boost", cfg.HeadingBoost,
		"stemming", cfg.Stemming,
	)
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
