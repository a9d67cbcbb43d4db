package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/parser"
)

func newSectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sections FILE...",
		Short: "Print the section outline parsed from documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := parser.Options{PDFFallbackPdftotext: a.cfg.PDFFallbackPdftotext}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOCUMENT\tPAGE\tLEVEL\tWORDS\tHEADING")
			for _, path := range args {
				docID := filepath.Base(path)
				tree, err := parser.ParseFile(path, opts)
				if err != nil {
					return fmt.Errorf("parse %s: %w", docID, err)
				}
				for _, s := range doctree.FilterShort(doctree.Sections(docID, tree), a.cfg.MinSectionWords) {
					heading := s.Heading
					if heading == "" {
						heading = "(untitled)"
					}
					fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s%s\n",
						docID, s.Page, s.Level, len(strings.Fields(s.Body)), indent(s.Level), heading)
				}
			}
			return tw.Flush()
		},
	}
}

func indent(l doctree.Level) string {
	return strings.Repeat("  ", int(l))
}
