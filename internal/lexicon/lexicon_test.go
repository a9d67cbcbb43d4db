package lexicon

import (
	"reflect"
	"testing"
)

func TestNormalizer_TokensFoldsAndFiltersStopWords(t *testing.T) {
	n := NewNormalizer(DefaultStopWords(), false)
	got := n.Tokens("The Revenue of Q3, and the REVENUE trends!")
	want := []string{"revenue", "q3", "revenue", "trends"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_DropsShortTokens(t *testing.T) {
	n := NewNormalizer(NewStopWords(nil), false)
	got := n.Tokens("a b cd x y ef")
	want := []string{"cd", "ef"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_NFKCAndCaseFolding(t *testing.T) {
	n := NewNormalizer(NewStopWords(nil), false)
	// Full-width letters normalize to ASCII under NFKC.
	got := n.Tokens("ＲＥＶＥＮＵＥ ÉCOLE")
	want := []string{"revenue", "école"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizer_StemmingUnifiesInflections(t *testing.T) {
	n := NewNormalizer(DefaultStopWords(), true)
	a := n.Tokens("trends")
	b := n.Tokens("trend")
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected one token each, got %v and %v", a, b)
	}
	if a[0] != b[0] {
		t.Errorf("expected %q and %q to share a stem", a[0], b[0])
	}
}

func TestNormalizer_EmptyInput(t *testing.T) {
	n := NewNormalizer(DefaultStopWords(), true)
	if got := n.Tokens(""); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
	if got := n.Tokens("the and of"); len(got) != 0 {
		t.Errorf("expected stop words only to yield no tokens, got %v", got)
	}
}

func TestNormalizer_Counts(t *testing.T) {
	n := NewNormalizer(DefaultStopWords(), false)
	got := n.Counts("beach beach hotel")
	if got["beach"] != 2 || got["hotel"] != 1 {
		t.Errorf("unexpected counts: %v", got)
	}
}

func TestStopWords_CustomListIsFolded(t *testing.T) {
	sw := NewStopWords([]string{" Travel ", "", "PLAN"})
	if sw.Len() != 2 {
		t.Fatalf("expected 2 stop words, got %d", sw.Len())
	}
	if !sw.Contains("travel") || !sw.Contains("plan") {
		t.Errorf("expected folded entries, got %v", sw.Words())
	}
}

func TestHasText(t *testing.T) {
	cases := map[string]bool{"": false, "  ": false, "--- !!": false, "x": true, "42": true}
	for in, want := range cases {
		if got := HasText(in); got != want {
			t.Errorf("HasText(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestSentences_Basic(t *testing.T) {
	got := Sentences("First one. Second one! Third one? Fourth")
	want := []string{"First one.", "Second one!", "Third one?", "Fourth"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSentences_NoSplitInsideNumbersOrAbbreviations(t *testing.T) {
	got := Sentences("Revenue rose 3.5 percent, e.g. in Europe. Costs fell.")
	want := []string{"Revenue rose 3.5 percent, e.g. in Europe.", "Costs fell."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSentences_ParagraphsAndBullets(t *testing.T) {
	got := Sentences("Intro line\ncontinues here\n\nNext paragraph\n• Item one\n• Item two")
	want := []string{"Intro line continues here", "Next paragraph", "Item one", "Item two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSentences_ClosingQuoteStaysWithSentence(t *testing.T) {
	got := Sentences(`He said "stop." Then left.`)
	want := []string{`He said "stop."`, "Then left."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSentences_Empty(t *testing.T) {
	if got := Sentences("   \n\n  "); len(got) != 0 {
		t.Errorf("expected no sentences, got %v", got)
	}
}
