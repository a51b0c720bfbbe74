package fuzzy

import "testing"

func TestRatio_Identity(t *testing.T) {
	if got := Ratio("hotpot", "hotpot"); got != 100 {
		t.Errorf("identical strings should score 100, got %d", got)
	}
	if got := Ratio("", ""); got != 100 {
		t.Errorf("two empty strings should score 100, got %d", got)
	}
}

func TestRatio_Disjoint(t *testing.T) {
	if got := Ratio("aaaa", "zzzz"); got != 0 {
		t.Errorf("disjoint strings should score 0, got %d", got)
	}
}

func TestPartialRatio_Substring(t *testing.T) {
	if got := PartialRatio("pizza", "best pizza in town"); got != 100 {
		t.Errorf("exact substring should score 100, got %d", got)
	}
	// Symmetric in its arguments.
	if got := PartialRatio("best pizza in town", "pizza"); got != 100 {
		t.Errorf("partial ratio should not depend on argument order, got %d", got)
	}
}

func TestPartialRatio_Empty(t *testing.T) {
	if got := PartialRatio("", "anything"); got != 0 {
		t.Errorf("empty query should score 0, got %d", got)
	}
}

func TestMatchFloors(t *testing.T) {
	if !Match("北京", "北京市朝阳区") {
		t.Error("city prefix should pass the permissive floor")
	}
	if Match("xyzq", "aaaaaaaaaa") {
		t.Error("unrelated strings should fail the permissive floor")
	}
}

func TestRerank_OrderAndTies(t *testing.T) {
	candidates := []Candidate{
		{ID: "a", Text: "noodle shop"},
		{ID: "b", Text: "pizza palace"},
		{ID: "c", Text: "pizza corner"},
	}
	ranked := Rerank("pizza", candidates)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}
	if ranked[0].ID != "b" || ranked[1].ID != "c" {
		t.Errorf("pizza stores should rank first with insertion-order tie-break, got %v", ranked)
	}
	if ranked[2].ID != "a" {
		t.Errorf("noodle shop should rank last, got %v", ranked)
	}
	if ranked[0].Score != 100 {
		t.Errorf("expected perfect partial match, got %d", ranked[0].Score)
	}
}

func TestRerank_DuplicateTexts(t *testing.T) {
	candidates := []Candidate{
		{ID: "a", Text: "same"},
		{ID: "b", Text: "same"},
		{ID: "c", Text: "same"},
	}
	ranked := Rerank("same", candidates)
	seen := map[string]bool{}
	for _, r := range ranked {
		if seen[r.ID] {
			t.Fatalf("candidate %s returned twice", r.ID)
		}
		seen[r.ID] = true
	}
	if len(ranked) != 3 {
		t.Errorf("duplicate texts must all survive dedup, got %d results", len(ranked))
	}
	if ranked[0].ID != "a" {
		t.Errorf("first duplicate keeps the exact text and the top rank, got %s", ranked[0].ID)
	}
}
