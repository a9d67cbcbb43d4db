package doctree

import "testing"

func TestSections_ReadingOrder(t *testing.T) {
	tree := &DocTree{
		Title: "report",
		Children: []*DocNode{
			{
				Title: "Overview",
				Level: LevelH1,
				Text:  "Intro text.",
				Page:  1,
				Children: []*DocNode{
					{Title: "Revenue", Level: LevelH2, Text: "Revenue grew.", Page: 2},
					{Title: "", Text: "   "},
					{Title: "Costs", Level: LevelH2, Text: "Costs fell.", Page: 3},
				},
			},
			{Title: "Appendix", Level: LevelH1, Page: 4},
		},
	}

	got := Sections("report.pdf", tree)
	want := []string{"Overview", "Revenue", "Costs", "Appendix"}
	if len(got) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Heading != w {
			t.Errorf("section[%d]: expected heading %q, got %q", i, w, got[i].Heading)
		}
		if got[i].OrderIndex != i {
			t.Errorf("section[%d]: expected order index %d, got %d", i, i, got[i].OrderIndex)
		}
		if got[i].DocumentID != "report.pdf" {
			t.Errorf("section[%d]: expected document id %q, got %q", i, "report.pdf", got[i].DocumentID)
		}
	}
	if got[1].Page != 2 || got[1].Level != LevelH2 {
		t.Errorf("expected Revenue on page 2 at H2, got page %d level %s", got[1].Page, got[1].Level)
	}
}

func TestSections_NilTree(t *testing.T) {
	if got := Sections("x", nil); got != nil {
		t.Errorf("expected nil for nil tree, got %v", got)
	}
}

func TestHeadingLevel_Clamps(t *testing.T) {
	cases := map[int]Level{-1: LevelTitle, 0: LevelTitle, 1: LevelH1, 2: LevelH2, 3: LevelH3, 6: LevelH3}
	for depth, want := range cases {
		if got := HeadingLevel(depth); got != want {
			t.Errorf("depth %d: expected %s, got %s", depth, want, got)
		}
	}
}

func TestFilterShort_KeepsTitles(t *testing.T) {
	sections := []Section{
		{Heading: "Guide", Level: LevelTitle, OrderIndex: 0},
		{Heading: "Tiny", Level: LevelH1, Body: "two words", OrderIndex: 1},
		{Heading: "Long", Level: LevelH1, Body: "one two three four five", OrderIndex: 2},
	}
	got := FilterShort(sections, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].Heading != "Guide" || got[1].Heading != "Long" {
		t.Errorf("unexpected sections kept: %q, %q", got[0].Heading, got[1].Heading)
	}
	if got[1].OrderIndex != 2 {
		t.Errorf("expected order index preserved as 2, got %d", got[1].OrderIndex)
	}
}

func TestSections_SkipsNodesWithoutText(t *testing.T) {
	tree := &DocTree{Children: []*DocNode{
		{Text: "•\n•"},
		{Title: "—", Text: " * "},
		{Title: "Revenue", Level: LevelH1, Text: "•"},
		{Text: "Costs fell."},
	}}
	got := Sections("r.txt", tree)
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(got), got)
	}
	if got[0].Heading != "Revenue" || got[0].OrderIndex != 0 {
		t.Errorf("expected Revenue at index 0, got %+v", got[0])
	}
	if got[1].Body != "Costs fell." || got[1].OrderIndex != 1 {
		t.Errorf("expected untitled body at index 1, got %+v", got[1])
	}
}
