package parser

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/dgallion1/docrank/internal/doctree"
)

// maxTextHeadingWords bounds how long a standalone line may be and still read as a heading.
const maxTextHeadingWords = 10

// TextParser handles plain text files. Blank lines separate paragraphs; a
// single short line without closing punctuation that is followed by more text
// is taken as a heading.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs [][]string
	var current []string
	for scanner.Scan() {
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, current)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	o := newOutline()
	for i, para := range paragraphs {
		if len(para) == 1 && i+1 < len(paragraphs) && looksLikeHeading(para[0]) {
			o.heading(para[0], 1, 0)
			continue
		}
		o.paragraph(strings.Join(para, "\n"), 0)
	}
	return o.build(trimExt(filename)), nil
}

func looksLikeHeading(line string) bool {
	line = strings.TrimSpace(line)
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > maxTextHeadingWords {
		return false
	}
	last, _ := lastRune(line)
	return !strings.ContainsRune(".,;!?", last)
}

func lastRune(s string) (rune, bool) {
	r := []rune(s)
	if len(r) == 0 {
		return 0, false
	}
	return r[len(r)-1], true
}
