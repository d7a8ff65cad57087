package db

import (
	"strings"
	"testing"
)

func TestBuildListFilter_KeywordFallbackOnlyWithoutEmbedding(t *testing.T) {
	conds, args := buildListFilter(ListParams{Query: "beach cleanup"})
	joined := strings.Join(conds, " AND ")

	if !strings.Contains(joined, "title ILIKE") {
		t.Fatalf("expected keyword fallback clause, got %q", joined)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 pattern args, got %d", len(args))
	}

	conds, _ = buildListFilter(ListParams{Query: "beach cleanup", QueryEmbedding: []float32{0.1}})
	if len(conds) != 0 {
		t.Fatalf("expected no keyword clause when an embedding is present, got %q", conds)
	}
}

func TestBuildListFilter_UpcomingUsesCalendarDate(t *testing.T) {
	conds, _ := buildListFilter(ListParams{UpcomingOnly: true})
	joined := strings.Join(conds, " AND ")

	if !strings.Contains(joined, "date >= CURRENT_DATE") {
		t.Fatalf("expected calendar-date comparison, got %q", joined)
	}
	if strings.Contains(joined, "NOW()") {
		t.Fatalf("upcoming filter must not compare against a timestamp: %q", joined)
	}
}

func TestBuildListFilter_PlaceholdersMatchArgs(t *testing.T) {
	featured := true
	conds, args := buildListFilter(ListParams{Category: "environment", Organization: "Green Earth", Featured: &featured})

	joined := strings.Join(conds, " AND ")
	for i := 1; i <= len(args); i++ {
		if !strings.Contains(joined, "$"+string(rune('0'+i))) {
			t.Fatalf("expected placeholder $%d in %q", i, joined)
		}
	}
}
