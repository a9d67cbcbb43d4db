package parser

import (
	"strings"

	"github.com/dgallion1/docrank/internal/doctree"
)

// outline assembles a DocTree from a stream of headings and paragraphs in
// reading order. Paragraphs attach to the most recent heading; a heading
// closes every open heading of the same or deeper depth.
type outline struct {
	root  *doctree.DocNode
	stack []outlineEntry
	text  strings.Builder
}

type outlineEntry struct {
	node  *doctree.DocNode
	depth int
}

func newOutline() *outline {
	root := &doctree.DocNode{}
	return &outline{root: root, stack: []outlineEntry{{node: root, depth: -1}}}
}

// heading opens a section. depth 0 is a document title, 1 is h1, and so on.
func (o *outline) heading(title string, depth, page int) {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return
	}
	o.flush()
	node := &doctree.DocNode{Title: title, Level: doctree.HeadingLevel(depth), Page: page}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].depth >= depth {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Children = append(parent.Children, node)
	o.stack = append(o.stack, outlineEntry{node: node, depth: depth})
}

// paragraph adds body text to the current section.
func (o *outline) paragraph(text string, page int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if o.root.Page == 0 && len(o.stack) == 1 {
		o.root.Page = page
	}
	if o.text.Len() > 0 {
		o.text.WriteString("\n\n")
	}
	o.text.WriteString(text)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.text.String())
	o.text.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// build finishes the outline. Text that came before the first heading becomes
// an untitled leading section.
func (o *outline) build(title string) *doctree.DocTree {
	o.flush()
	tree := &doctree.DocTree{Title: title, Children: o.root.Children}
	if o.root.Text != "" {
		preface := &doctree.DocNode{Level: doctree.LevelH1, Text: o.root.Text, Page: o.root.Page}
		tree.Children = append([]*doctree.DocNode{preface}, tree.Children...)
	}
	return tree
}
