package lexicon

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// defaultStopWords is the built-in list used when no override is configured.
var defaultStopWords = []string{
	"a", "about", "after", "all", "also", "am", "an", "and", "any", "are", "as", "at",
	"be", "been", "before", "being", "between", "both", "but", "by",
	"can", "could", "did", "do", "does", "doing", "during", "each", "few", "for", "from",
	"had", "has", "have", "having", "he", "her", "here", "hers", "him", "his", "how",
	"i", "if", "in", "into", "is", "it", "its", "itself", "just",
	"may", "me", "might", "more", "most", "must", "my", "no", "nor", "not", "of", "off",
	"on", "once", "only", "or", "other", "our", "ours", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the", "their",
	"theirs", "them", "then", "there", "these", "they", "this", "those", "through", "to",
	"too", "under", "until", "up", "very", "was", "we", "were", "what", "when", "where",
	"which", "while", "who", "whom", "why", "will", "with", "would", "you", "your", "yours",
}

// StopWords is an immutable set of case-folded words excluded from term matching.
type StopWords struct {
	set map[string]struct{}
}

// NewStopWords builds a set from words. Entries are trimmed and case-folded;
// blanks are ignored.
func NewStopWords(words []string) StopWords {
	fold := cases.Fold()
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[fold.String(w)] = struct{}{}
	}
	return StopWords{set: set}
}

// DefaultStopWords returns the built-in English stop-word list.
func DefaultStopWords() StopWords {
	return NewStopWords(defaultStopWords)
}

// Contains reports whether a case-folded word is a stop word.
func (s StopWords) Contains(word string) bool {
	_, ok := s.set[word]
	return ok
}

func (s StopWords) Len() int {
	return len(s.set)
}

// Words returns the set contents in sorted order.
func (s StopWords) Words() []string {
	out := make([]string, 0, len(s.set))
	for w := range s.set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
