package lexicon

import (
	"strings"
	"unicode"
)

// bullets are glyphs that PDF extraction commonly leaves at the start of list items.
const bullets = "•▪●◦‣⁃"

// abbreviations never end a sentence even when followed by whitespace.
var abbreviations = map[string]bool{
	"e.g": true, "i.e": true, "mr": true, "mrs": true, "ms": true, "dr": true,
	"st": true, "vs": true, "approx": true, "fig": true,
}

// Sentences splits text into sentences. Paragraph breaks (blank lines) and
// bullet glyphs always end a sentence; inside a paragraph a sentence ends at
// '.', '!' or '?' followed by whitespace. Line breaks within a paragraph are
// treated as spaces. Empty sentences are never returned.
func Sentences(text string) []string {
	var out []string
	for _, para := range paragraphs(text) {
		out = append(out, splitSentences(para)...)
	}
	return out
}

func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(bullets, r) {
			return '\f'
		}
		return r
	}, text)
	text = strings.ReplaceAll(text, "\n\n", "\f")

	var out []string
	for _, p := range strings.Split(text, "\f") {
		// Collapse internal whitespace, including single line breaks.
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitSentences(para string) []string {
	runes := []rune(para)
	var sentences []string
	start := 0

	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		// Keep closing quotes and brackets with the sentence they close.
		for end < len(runes) && strings.ContainsRune(`"')]”’`, runes[end]) {
			end++
		}
		if end >= len(runes) || !unicode.IsSpace(runes[end]) {
			continue
		}
		if r == '.' && isAbbreviation(runes[start:i]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// isAbbreviation reports whether the word ending just before a period is a
// known abbreviation.
func isAbbreviation(prefix []rune) bool {
	j := len(prefix)
	for j > 0 && !unicode.IsSpace(prefix[j-1]) {
		j--
	}
	word := strings.ToLower(strings.TrimLeft(string(prefix[j:]), `"'([“‘`))
	return abbreviations[word]
}
