package search

import (
	"testing"

	"github.com/nullstrike/launchkit/internal/item"
)

func scriptItem(name string, tags []string, author string) *item.Item {
	return &item.Item{
		Name: name,
		Path: "/kit/main/scripts/" + name + ".js",
		Kind: item.KindScript,
		Script: &item.Script{
			Path:   "/kit/main/scripts/" + name + ".js",
			Tags:   tags,
			Author: author,
		},
	}
}

func TestParseQueryPrefixFilter(t *testing.T) {
	f, remainder := ParseQuery("tag:rust bui")
	if len(f.Tags) != 1 || f.Tags[0] != "rust" {
		t.Fatalf("expected tag filter rust, got %+v", f.Tags)
	}
	if remainder != "bui" {
		t.Fatalf("expected remainder 'bui', got %q", remainder)
	}
}

func TestParseQueryMalformedFilterIsLiteral(t *testing.T) {
	f, remainder := ParseQuery("foo:bar tag:")
	if !f.Empty() {
		t.Fatalf("expected no filters parsed, got %+v", f)
	}
	if remainder != "foo:bar tag:" {
		t.Fatalf("expected malformed tokens preserved verbatim, got %q", remainder)
	}
}

// A prefix filter narrows to one of two same-named scripts.
func TestSearchPrefixFilterScenario(t *testing.T) {
	rust := scriptItem("Build", []string{"rust"}, "a")
	goItem := scriptItem("Build", []string{"go"}, "a")

	results := Search("tag:rust bui", []*item.Item{rust, goItem})
	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(results))
	}
	if results[0].Item != rust {
		t.Fatalf("expected the rust-tagged script, got %v", results[0].Item.Script.Tags)
	}
	if results[0].Score <= 0 {
		t.Fatalf("expected positive score, got %d", results[0].Score)
	}
}

// Equal-score results order BuiltIn < App < Script.
func TestSearchCrossSourceTieBreak(t *testing.T) {
	builtin := &item.Item{Name: "Open", Path: "/builtin/open", Kind: item.KindBuiltIn, BuiltIn: &item.BuiltIn{ID: "open"}}
	app := &item.Item{Name: "Open", Path: "/Applications/Open.app", Kind: item.KindApp, App: &item.App{Path: "/Applications/Open.app"}}
	script := scriptItem("Open", nil, "")

	results := Search("open", []*item.Item{script, app, builtin})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Item.Kind != item.KindBuiltIn || results[1].Item.Kind != item.KindApp || results[2].Item.Kind != item.KindScript {
		t.Fatalf("unexpected order: %v %v %v", results[0].Item.Kind, results[1].Item.Kind, results[2].Item.Kind)
	}
}

// A one-rune query stays on the substring tier.
func TestSearchFuzzyGating(t *testing.T) {
	it := &item.Item{Name: "Run Script", Path: "/kit/main/scripts/run.js", Kind: item.KindScript, Script: &item.Script{}}
	results := Search("r", []*item.Item{it})
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Score != 100 {
		t.Fatalf("expected substring prefix score 100, got %d", results[0].Score)
	}
}

func TestSearchEmptyQueryReturnsAllScoreZero(t *testing.T) {
	a := scriptItem("Alpha", nil, "")
	b := scriptItem("Beta", nil, "")
	results := Search("", []*item.Item{a, b})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Score != 0 {
			t.Fatalf("expected score 0 for empty query, got %d", r.Score)
		}
	}
}

func TestSearchFallbackAlwaysLast(t *testing.T) {
	fb := &item.Item{Name: "zzz fallback query", Path: "fallback://q", Kind: item.KindFallback, Fallback: &item.Fallback{ID: "fb", Label: "zzz fallback query"}}
	script := scriptItem("unrelated", nil, "")
	results := Search("zzz", []*item.Item{fb, script})
	if len(results) != 1 {
		t.Fatalf("expected only the fallback to match 'zzz', got %d", len(results))
	}
	if results[0].Item.Kind != item.KindFallback {
		t.Fatalf("expected fallback result")
	}

	// Even when a fallback massively outscores a real match, it must
	// still sort after it.
	fb2 := &item.Item{Name: "open", Path: "fallback://open", Kind: item.KindFallback, Fallback: &item.Fallback{ID: "fb2", Label: "open"}}
	script2 := scriptItem("openish", nil, "")
	results = Search("open", []*item.Item{fb2, script2})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[len(results)-1].Item.Kind != item.KindFallback {
		t.Fatalf("expected fallback to sort last, got order %v, %v", results[0].Item.Kind, results[1].Item.Kind)
	}
}

func TestSearchNoItems(t *testing.T) {
	if results := Search("anything", nil); len(results) != 0 {
		t.Fatalf("expected empty result set, got %d", len(results))
	}
}
