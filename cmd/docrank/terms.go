package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/analysis"
)

func newTermsCmd(a *app) *cobra.Command {
	var persona, job string
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Print the weighted terms derived from a persona and job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := analysis.NewAnalyzer(a.cfg.Options(), a.cfg.Normalizer(), a.log)
			if err != nil {
				return err
			}
			terms, err := analyzer.Terms(analysis.PersonaJob{Persona: persona, Job: job})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TERM\tWEIGHT")
			for _, t := range terms.Terms() {
				fmt.Fprintf(tw, "%s\t%.2f\n", t, terms.Weight(t))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&persona, "persona", "", "persona description")
	cmd.Flags().StringVar(&job, "job", "", "job to be done")
	return cmd
}
