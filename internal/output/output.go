// Package output serializes analysis summaries to the challenge JSON layout.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docrank/internal/analysis"
)

type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubSection carries the rank of the extracted section it refines.
type SubSection struct {
	Document       string `json:"document"`
	RefinedText    string `json:"refined_text"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// Document is the serialized form of an analysis.Summary.
type Document struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []SubSection       `json:"subsection_analysis"`
}

// FromSummary converts a summary, keeping rank order.
func FromSummary(s analysis.Summary) Document {
	doc := Document{
		Metadata: Metadata{
			InputDocuments:      append([]string{}, s.Metadata.Documents...),
			Persona:             s.Metadata.Persona,
			JobToBeDone:         s.Metadata.Job,
			ProcessingTimestamp: s.Metadata.ProcessedAt.UTC().Format(time.RFC3339),
		},
		ExtractedSections:  make([]ExtractedSection, 0, len(s.Sections)),
		SubsectionAnalysis: make([]SubSection, 0, len(s.SubSections)),
	}
	for _, sec := range s.Sections {
		doc.ExtractedSections = append(doc.ExtractedSections, ExtractedSection{
			Document:       sec.DocumentID,
			SectionTitle:   sec.Heading,
			ImportanceRank: sec.Rank,
			PageNumber:     sec.Page,
		})
	}
	for _, sub := range s.SubSections {
		doc.SubsectionAnalysis = append(doc.SubsectionAnalysis, SubSection{
			Document:       sub.DocumentID,
			RefinedText:    sub.Text,
			ImportanceRank: sub.Rank,
			PageNumber:     sub.Page,
		})
	}
	return doc
}

// Write encodes s as indented JSON.
func Write(w io.Writer, s analysis.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FromSummary(s)); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteFile writes s to path through a temp file in the same directory, so
// a failed write never leaves a partial file behind.
func WriteFile(path string, s analysis.Summary) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".docrank-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Write(tmp, s); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
