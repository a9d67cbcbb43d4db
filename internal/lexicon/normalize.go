// Package lexicon turns free text into comparable terms. The same Normalizer
// must be used for the persona/job strings and for document text so that
// terms line up exactly on both sides.
package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest token, in runes, that survives normalization.
const MinTokenLength = 2

// Normalizer tokenizes text into normalized terms. It holds no mutable state
// and is safe for concurrent use.
type Normalizer struct {
	stop StopWords
	stem bool
}

// NewNormalizer returns a Normalizer that drops stop and, if stem is set,
// reduces every surviving token to its English stem.
func NewNormalizer(stop StopWords, stem bool) *Normalizer {
	return &Normalizer{stop: stop, stem: stem}
}

// StopWords returns the stop-word set the normalizer filters against.
func (n *Normalizer) StopWords() StopWords {
	return n.stop
}

// Tokens splits text on every rune that is not a letter or digit, folds case,
// and filters stop words and short tokens. Order and duplicates are preserved.
func (n *Normalizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	// Casers carry state, one per call keeps Normalizer shareable.
	folded := cases.Fold().String(norm.NFKC.String(text))
	raw := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if utf8.RuneCountInString(tok) < MinTokenLength || n.stop.Contains(tok) {
			continue
		}
		if n.stem {
			tok = english.Stem(tok, false)
			if utf8.RuneCountInString(tok) < MinTokenLength {
				continue
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Counts tallies Tokens(text) by term.
func (n *Normalizer) Counts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range n.Tokens(text) {
		counts[tok]++
	}
	return counts
}

// HasText reports whether s contains at least one letter or digit.
func HasText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
