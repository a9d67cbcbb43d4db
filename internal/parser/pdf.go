package parser

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"
	"unicode"

	"github.com/dgallion1/docrank/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads positioned text rows with the Go
// library and infers headings from font size and weight. When rows cannot be
// read it degrades to one section per page of plain text, optionally produced
// by pdftotext.
type PDFParser struct {
	FallbackPdftotext bool
}

// pdfLine is one visual row of text with its dominant font.
type pdfLine struct {
	Text string
	Size float64
	Bold bool
	Page int
}

const (
	// maxHeadingWords bounds how long a line can be and still be a heading.
	maxHeadingWords = 14
	// headingSizeDelta is how much larger than body text a heading must be, in points.
	headingSizeDelta = 1.0
)

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	// ledongthuc/pdf opens by path, so spool to a temp file.
	tmp, err := os.CreateTemp("", "docrank-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	title := trimExt(filename)

	lines, err := extractPDFLines(tmpPath)
	if err == nil && len(lines) > 0 {
		return outlineFromLines(lines, title), nil
	}

	text, err := extractPDFText(tmpPath)
	if (err != nil || strings.TrimSpace(text) == "") && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return pageTree(text, title), nil
}

func extractPDFLines(path string) ([]pdfLine, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []pdfLine
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		// Larger Y is higher on the page.
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Position > rows[b].Position })
		for _, row := range rows {
			if line, ok := rowLine(row.Content, i); ok {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

// rowLine joins the glyph runs of a row left to right, inserting a space where
// the horizontal gap between runs calls for one.
func rowLine(content []pdflib.Text, page int) (pdfLine, bool) {
	runs := append([]pdflib.Text(nil), content...)
	sort.SliceStable(runs, func(a, b int) bool { return runs[a].X < runs[b].X })

	var buf strings.Builder
	sizeRunes := make(map[float64]int)
	boldRunes, totalRunes := 0, 0
	var prevEnd float64
	for i, t := range runs {
		if t.S == "" {
			continue
		}
		if i > 0 && t.X-prevEnd > t.FontSize*0.2 && !strings.HasSuffix(buf.String(), " ") && !strings.HasPrefix(t.S, " ") {
			buf.WriteByte(' ')
		}
		buf.WriteString(t.S)
		prevEnd = t.X + t.W

		n := len([]rune(strings.TrimSpace(t.S)))
		sizeRunes[roundHalf(t.FontSize)] += n
		totalRunes += n
		if isBoldFont(t.Font) {
			boldRunes += n
		}
	}

	text := strings.Join(strings.Fields(buf.String()), " ")
	if text == "" {
		return pdfLine{}, false
	}
	return pdfLine{
		Text: text,
		Size: dominantSize(sizeRunes),
		Bold: totalRunes > 0 && boldRunes*2 > totalRunes,
		Page: page,
	}, true
}

func isBoldFont(name string) bool {
	name = strings.ToLower(name)
	for _, marker := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// dominantSize returns the size carrying the most runes, the larger size on ties.
func dominantSize(sizeRunes map[float64]int) float64 {
	best, bestCount := 0.0, -1
	for size, count := range sizeRunes {
		if count > bestCount || (count == bestCount && size > best) {
			best, bestCount = size, count
		}
	}
	return best
}

func roundHalf(x float64) float64 {
	return math.Round(x*2) / 2
}

// outlineFromLines classifies lines into headings and body text and builds
// the document outline.
//
// Body size is the size carrying the most text. A heading is a short line
// without closing punctuation that is either larger than body text or bold
// (bold only counts when bold is not the document's normal weight). Distinct
// heading sizes rank into H1, H2 and H3 by descending size. A largest-size run
// of lines confined to the first page is the document title. Consecutive
// heading lines of the same size on the same page are one heading.
func outlineFromLines(lines []pdfLine, title string) *doctree.DocTree {
	body := bodySize(lines)
	boldIsRare := boldShare(lines) < 0.5

	isHeading := make([]bool, len(lines))
	var sizes []float64
	for i, l := range lines {
		if !headingShaped(l.Text) {
			continue
		}
		if l.Size >= body+headingSizeDelta || (boldIsRare && l.Bold && l.Size >= body-0.5) {
			isHeading[i] = true
			sizes = append(sizes, l.Size)
		}
	}
	if len(sizes) == 0 {
		return pageTree(linesText(lines), title)
	}
	depths := headingDepths(sizes, lines, isHeading)

	o := newOutline()
	var bodyLines []string
	bodyPage := 0
	flushBody := func() {
		if len(bodyLines) > 0 {
			o.paragraph(strings.Join(bodyLines, "\n"), bodyPage)
			bodyLines = nil
		}
	}

	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if !isHeading[i] {
			if len(bodyLines) == 0 {
				bodyPage = l.Page
			}
			bodyLines = append(bodyLines, l.Text)
			continue
		}
		flushBody()
		text := l.Text
		for i+1 < len(lines) && isHeading[i+1] && lines[i+1].Size == l.Size && lines[i+1].Page == l.Page {
			i++
			text += " " + lines[i].Text
		}
		o.heading(text, depths[l.Size], l.Page)
	}
	flushBody()

	return o.build(title)
}

// headingDepths maps each heading size to an outline depth. The largest size
// is the title (depth 0) when all of its lines are on page 1 and another
// heading size exists.
func headingDepths(sizes []float64, lines []pdfLine, isHeading []bool) map[float64]int {
	distinct := uniqueDesc(sizes)
	depths := make(map[float64]int, len(distinct))
	if len(distinct) == 0 {
		return depths
	}

	titleOnFirstPage := len(distinct) > 1
	for i, l := range lines {
		if isHeading[i] && l.Size == distinct[0] && l.Page != 1 {
			titleOnFirstPage = false
			break
		}
	}

	rest := distinct
	if titleOnFirstPage {
		depths[distinct[0]] = 0
		rest = distinct[1:]
	}
	for i, s := range rest {
		depths[s] = min(i+1, 3)
	}
	return depths
}

func headingShaped(text string) bool {
	words := strings.Fields(text)
	if len(words) == 0 || len(words) > maxHeadingWords {
		return false
	}
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return false
	}
	last, _ := lastRune(text)
	return !strings.ContainsRune(".,;", last)
}

func bodySize(lines []pdfLine) float64 {
	counts := make(map[float64]int)
	for _, l := range lines {
		counts[l.Size] += len([]rune(l.Text))
	}
	return dominantSize(counts)
}

func boldShare(lines []pdfLine) float64 {
	bold, total := 0, 0
	for _, l := range lines {
		n := len([]rune(l.Text))
		total += n
		if l.Bold {
			bold += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(bold) / float64(total)
}

func uniqueDesc(values []float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

func linesText(lines []pdfLine) string {
	var buf strings.Builder
	page := 1
	for i, l := range lines {
		if l.Page > page {
			buf.WriteString(strings.Repeat("\f", l.Page-page))
		} else if i > 0 {
			buf.WriteByte('\n')
		}
		page = l.Page
		buf.WriteString(l.Text)
	}
	return buf.String()
}

// pageTree makes one section per non-empty page of form-feed separated text.
func pageTree(text string, title string) *doctree.DocTree {
	tree := &doctree.DocTree{Title: title}
	for i, page := range strings.Split(text, "\f") {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: fmt.Sprintf("Page %d", i+1),
			Level: doctree.LevelH1,
			Text:  page,
			Page:  i + 1,
		})
	}
	return tree
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if i > 1 {
			buf.WriteString("\f")
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
