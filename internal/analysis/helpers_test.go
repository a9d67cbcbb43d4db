package analysis

import (
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/lexicon"
)

func plainNormalizer() *lexicon.Normalizer {
	return lexicon.NewNormalizer(lexicon.DefaultStopWords(), false)
}

func mustTerms(pj PersonaJob) TermSet {
	ts, err := ExtractTerms(pj, plainNormalizer(), DefaultTermOptions())
	if err != nil {
		panic(err)
	}
	return ts
}

func section(doc string, idx int, heading, body string) doctree.Section {
	return doctree.Section{DocumentID: doc, Heading: heading, Level: doctree.LevelH1, Page: idx + 1, Body: body, OrderIndex: idx}
}
