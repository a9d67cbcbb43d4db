package doctree

import (
	"strings"

	"github.com/dgallion1/docrank/internal/lexicon"
)

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Level    Level      // Heading level of Title
	Text     string     // Body text directly under the heading (children excluded)
	Page     int        // Source page, 1-based (0 if N/A)
	Children []*DocNode // Subsections
}

// Level is a heading hierarchy level.
type Level int

const (
	LevelTitle Level = iota
	LevelH1
	LevelH2
	LevelH3
)

func (l Level) String() string {
	switch l {
	case LevelTitle:
		return "Title"
	case LevelH1:
		return "H1"
	case LevelH2:
		return "H2"
	default:
		return "H3"
	}
}

// HeadingLevel maps a numeric heading depth (h1=1, h2=2, ...) onto a Level.
// Depths of 3 and beyond collapse into H3; depth 0 or less is a document title.
func HeadingLevel(depth int) Level {
	switch {
	case depth <= 0:
		return LevelTitle
	case depth == 1:
		return LevelH1
	case depth == 2:
		return LevelH2
	default:
		return LevelH3
	}
}

// Section is a heading-delimited unit of document text, flattened out of a DocTree.
type Section struct {
	DocumentID string
	Heading    string
	Level      Level
	Page       int
	Body       string
	OrderIndex int // Position within the document, 0-based, in reading order.
}

// SectionKey identifies a section across all documents of a run.
type SectionKey struct {
	DocumentID string
	OrderIndex int
}

func (s Section) Key() SectionKey {
	return SectionKey{DocumentID: s.DocumentID, OrderIndex: s.OrderIndex}
}

// Sections walks the tree in reading order and flattens each node into a Section.
// Nodes whose heading and body both lack letters and digits (blank lines, stray
// bullet glyphs) are skipped; OrderIndex stays dense.
func Sections(docID string, tree *DocTree) []Section {
	if tree == nil {
		return nil
	}
	var out []Section
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			heading := strings.TrimSpace(n.Title)
			body := strings.TrimSpace(n.Text)
			if lexicon.HasText(heading) || lexicon.HasText(body) {
				out = append(out, Section{
					DocumentID: docID,
					Heading:    heading,
					Level:      n.Level,
					Page:       n.Page,
					Body:       body,
					OrderIndex: len(out),
				})
			}
			walk(n.Children)
		}
	}
	walk(tree.Children)
	return out
}

// FilterShort drops sections whose body has fewer than minWords words, keeping
// Title sections regardless. OrderIndex values are preserved.
func FilterShort(sections []Section, minWords int) []Section {
	if minWords <= 0 {
		return sections
	}
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.Level == LevelTitle || len(strings.Fields(s.Body)) >= minWords {
			out = append(out, s)
		}
	}
	return out
}
