package list

import (
	"testing"
	"time"

	"github.com/nullstrike/launchkit/internal/item"
	"github.com/nullstrike/launchkit/internal/search"
)

func res(name string, k item.Kind, path string) search.Result {
	return search.Result{Item: &item.Item{Name: name, Path: path, Kind: k}, Score: 0, Source: k}
}

func TestBuildEmptyQueryRecentThenMain(t *testing.T) {
	a := res("Alpha", item.KindScript, "/a")
	b := res("Beta", item.KindScript, "/b")
	c := res("Gamma", item.KindScript, "/c")

	rows := Build("", []search.Result{a, b, c}, StyleHeaders, []string{"/b"})

	if len(rows) != 5 { // RECENT header, b, MAIN header, a, c
		t.Fatalf("expected 5 rows, got %d: %+v", len(rows), rows)
	}
	if !rows[0].IsHeader || rows[0].Header != "RECENT" {
		t.Fatalf("expected RECENT header first, got %+v", rows[0])
	}
	if rows[1].IsHeader {
		t.Fatalf("expected item row for recent entry")
	}
	if !rows[2].IsHeader || rows[2].Header != "MAIN" {
		t.Fatalf("expected MAIN header third, got %+v", rows[2])
	}
}

func TestBuildAllRecentOmitsMainHeader(t *testing.T) {
	a := res("Alpha", item.KindScript, "/a")
	b := res("Beta", item.KindScript, "/b")

	rows := Build("", []search.Result{a, b}, StyleHeaders, []string{"/a", "/b"})

	if len(rows) != 3 { // RECENT header, a, b
		t.Fatalf("expected 3 rows, got %d: %+v", len(rows), rows)
	}
	for _, r := range rows {
		if r.IsHeader && r.Header == "MAIN" {
			t.Fatalf("expected no MAIN header when every item is recent, got %+v", rows)
		}
	}
}

func TestBuildNonEmptyQueryNoRecentSection(t *testing.T) {
	a := res("Alpha", item.KindScript, "/a")
	rows := Build("al", []search.Result{a}, StyleHeaders, []string{"/a"})
	for _, r := range rows {
		if r.IsHeader && (r.Header == "RECENT" || r.Header == "MAIN") {
			t.Fatalf("non-empty query must not produce a Recent/Main split, got %+v", rows)
		}
	}
}

func TestBuildStyleNoneNeverEmitsHeaders(t *testing.T) {
	a := res("Alpha", item.KindScript, "/a")
	b := res("Beta", item.KindBuiltIn, "/b")
	rows := Build("", []search.Result{a, b}, StyleNone, nil)
	for _, r := range rows {
		if r.IsHeader {
			t.Fatalf("StyleNone must never emit headers, got %+v", rows)
		}
	}
}

func TestCoerceSelectionAllHeadersReturnsNone(t *testing.T) {
	rows := []Row{{IsHeader: true, Header: "A"}, {IsHeader: true, Header: "B"}}
	_, ok := CoerceSelection(rows, 1)
	if ok {
		t.Fatalf("expected no coercible selection among all-header rows")
	}
}

func TestCoerceSelectionClampsPastEnd(t *testing.T) {
	rows := []Row{{IsHeader: true, Header: "A"}, {Index: 0}, {Index: 1}}
	idx, ok := CoerceSelection(rows, 50)
	if !ok || idx != 2 {
		t.Fatalf("expected clamp to last item row (idx 2), got %d ok=%v", idx, ok)
	}
}

func TestCoerceSelectionPrefersAtOrBelow(t *testing.T) {
	rows := []Row{{Index: 0}, {IsHeader: true, Header: "A"}, {Index: 1}}
	idx, ok := CoerceSelection(rows, 1)
	if !ok || idx != 0 {
		t.Fatalf("expected coercion to the nearest item at or below idx 1 (idx 0), got %d ok=%v", idx, ok)
	}
}

func TestCoerceSelectionFallsBackAboveWhenNoneBelow(t *testing.T) {
	rows := []Row{{IsHeader: true, Header: "A"}, {Index: 0}}
	idx, ok := CoerceSelection(rows, 0)
	if !ok || idx != 1 {
		t.Fatalf("expected fallback above to idx 1, got %d ok=%v", idx, ok)
	}
}

func TestCacheKeyStableForSameInputs(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	k1 := CacheKey("q", 1, now, StyleHeaders)
	k2 := CacheKey("q", 1, now, StyleHeaders)
	if k1 != k2 {
		t.Fatalf("expected identical cache keys for identical inputs")
	}
	k3 := CacheKey("q2", 1, now, StyleHeaders)
	if k1 == k3 {
		t.Fatalf("expected different cache keys for different queries")
	}
}
