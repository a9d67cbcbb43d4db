package analysis

import (
	"slices"
	"time"

	"github.com/dgallion1/docrank/internal/doctree"
)

// Assemble packages a run's ranking and refinements with its input metadata.
// Every refinement must point at a section of ranked, under the same rank, at
// most once.
func Assemble(pj PersonaJob, ranked RankedResult, refined []RefinedSubSection, documents []string, ts time.Time) (Summary, error) {
	ranks := make(map[doctree.SectionKey]int, ranked.Len())
	sections := make([]SectionSummary, 0, ranked.Len())
	for _, rs := range ranked.Sections {
		ranks[rs.Key()] = rs.Rank
		sections = append(sections, SectionSummary{
			DocumentID: rs.DocumentID,
			Page:       rs.Page,
			Heading:    rs.Heading,
			Level:      rs.Level,
			Rank:       rs.Rank,
			Score:      rs.Score,
		})
	}

	seen := make(map[doctree.SectionKey]bool, len(refined))
	subs := make([]SubSectionSummary, 0, len(refined))
	for _, ref := range refined {
		key := ref.Section.Key()
		rank, ok := ranks[key]
		switch {
		case !ok:
			return Summary{}, &AssemblyError{Key: key, Reason: "refined section is not in the ranked result"}
		case rank != ref.Section.Rank:
			return Summary{}, &AssemblyError{Key: key, Reason: "refined section rank does not match the ranked result"}
		case seen[key]:
			return Summary{}, &AssemblyError{Key: key, Reason: "section refined more than once"}
		case ref.Text == "":
			return Summary{}, &AssemblyError{Key: key, Reason: "refined text is empty"}
		}
		seen[key] = true
		subs = append(subs, SubSectionSummary{
			DocumentID: ref.Section.DocumentID,
			Page:       ref.Section.Page,
			Heading:    ref.Section.Heading,
			Text:       ref.Text,
			Rank:       rank,
		})
	}

	return Summary{
		Metadata: Metadata{
			Persona:     pj.Persona,
			Job:         pj.Job,
			Documents:   slices.Clone(documents),
			ProcessedAt: ts,
		},
		Sections:    sections,
		SubSections: subs,
	}, nil
}
