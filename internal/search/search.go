// Package search implements the multi-source fuzzy matcher: prefix-filter
// parsing, per-source substring/fuzzy scoring, and the cross-source
// tie-break order.
//
// The fuzzy tier wraps github.com/sahilm/fuzzy behind a project-specific
// scoring contract rather than exposing the library's raw score, since
// callers want an additive scale (substring tiers plus a 25-50 fuzzy
// tier) rather than the library's own.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nullstrike/launchkit/internal/item"
)

// MinFuzzyQueryLen is the minimum query length (in runes) before the
// fuzzy tier is consulted; below it, only the substring tier applies.
const MinFuzzyQueryLen = 2

// Result is one scored item from Search.
type Result struct {
	Item   *item.Item
	Score  int32
	Source item.Kind
}

// Filters holds the parsed prefix filters from a query.
type Filters struct {
	Tags     []string
	Authors  []string
	Kits     []string
	Triggers []item.Trigger
	Types    []item.ScriptSubKind
}

var knownPrefixes = map[string]bool{"tag": true, "author": true, "kit": true, "is": true, "type": true}

// ParseQuery splits prefix filter tokens (tag:, author:, kit:, is:,
// type:) out of query, returning the parsed Filters and the remaining
// fuzzy-text query. A token with an unrecognized prefix, or one with no
// value, is left untouched in the remainder: a malformed filter degrades
// to literal text, it never errors.
func ParseQuery(query string) (Filters, string) {
	var f Filters
	var remainder []string

	for _, tok := range strings.Fields(query) {
		idx := strings.IndexByte(tok, ':')
		if idx <= 0 || idx == len(tok)-1 {
			remainder = append(remainder, tok)
			continue
		}
		prefix, value := tok[:idx], tok[idx+1:]
		if !knownPrefixes[prefix] {
			remainder = append(remainder, tok)
			continue
		}

		switch prefix {
		case "tag":
			f.Tags = append(f.Tags, value)
		case "author":
			f.Authors = append(f.Authors, value)
		case "kit":
			f.Kits = append(f.Kits, value)
		case "is":
			t, ok := parseTrigger(value)
			if !ok {
				remainder = append(remainder, tok)
				continue
			}
			f.Triggers = append(f.Triggers, t)
		case "type":
			t, ok := parseType(value)
			if !ok {
				remainder = append(remainder, tok)
				continue
			}
			f.Types = append(f.Types, t)
		}
	}

	return f, strings.Join(remainder, " ")
}

func parseTrigger(v string) (item.Trigger, bool) {
	switch v {
	case "cron":
		return item.TriggerCron, true
	case "bg":
		return item.TriggerBackground, true
	case "watch":
		return item.TriggerWatch, true
	default:
		return 0, false
	}
}

func parseType(v string) (item.ScriptSubKind, bool) {
	switch v {
	case "script":
		return item.ScriptKindScript, true
	case "snippet":
		return item.ScriptKindSnippet, true
	default:
		return 0, false
	}
}

// Empty reports whether no filters were parsed at all.
func (f Filters) Empty() bool {
	return len(f.Tags) == 0 && len(f.Authors) == 0 && len(f.Kits) == 0 && len(f.Triggers) == 0 && len(f.Types) == 0
}

// matches reports whether it satisfies all of the parsed filters. Tag,
// author, kit, and trigger filters combine with AND semantics (each
// named filter narrows the result further); multiple type: filters
// combine with OR (they restrict to a category, not an intersection of
// mutually exclusive categories).
func (f Filters) matches(it *item.Item) bool {
	if len(f.Tags) > 0 || len(f.Authors) > 0 || len(f.Kits) > 0 || len(f.Triggers) > 0 {
		if it.Kind != item.KindScript || it.Script == nil {
			return false
		}
	}
	s := it.Script

	for _, tag := range f.Tags {
		if s == nil || !s.HasTag(tag) {
			return false
		}
	}
	for _, author := range f.Authors {
		if s == nil || !strings.Contains(strings.ToLower(s.Author), strings.ToLower(author)) {
			return false
		}
	}
	for _, kit := range f.Kits {
		if s == nil || !strings.EqualFold(s.Kit, kit) {
			return false
		}
	}
	for _, trig := range f.Triggers {
		if s == nil || !s.HasTrigger(trig) {
			return false
		}
	}
	if len(f.Types) > 0 {
		if it.Kind != item.KindScript || s == nil {
			return false
		}
		ok := false
		for _, t := range f.Types {
			if s.SubKind == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// fields returns the primary (name), title-like secondary, free-text
// description, and shortcut-string fields used by the scorer.
func fields(it *item.Item) (primary, title, description, shortcut string) {
	primary = it.Name
	switch it.Kind {
	case item.KindScript:
		if it.Script != nil {
			shortcut = it.Script.Shortcut
			description = it.Script.Author
			title = it.Script.Alias
		}
	case item.KindScriptlet:
		if it.Scriptlet != nil {
			shortcut = it.Scriptlet.Shortcut
			title = it.Scriptlet.Tool
		}
	case item.KindBuiltIn:
		if it.BuiltIn != nil {
			shortcut = it.BuiltIn.Shortcut
			title = it.BuiltIn.Category
		}
	case item.KindApp:
		// Apps are matched on their name only.
	case item.KindWindow:
		if it.Window != nil {
			title = it.Window.Title
			description = it.Window.App
		}
	case item.KindFallback:
		if it.Fallback != nil {
			description = it.Fallback.Label
		}
	}
	return
}

// asciiOnly reports whether s contains only ASCII bytes, the fast-path
// precondition for the substring tier.
func asciiOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func scoreSubstring(query string, it *item.Item) int32 {
	if query == "" || !asciiOnly(query) {
		return 0
	}
	primary, title, description, shortcut := fields(it)
	if !asciiOnly(primary) {
		return 0
	}
	ql := strings.ToLower(query)
	pl := strings.ToLower(primary)

	var score int32
	switch {
	case strings.HasPrefix(pl, ql):
		score += 100
	case strings.Contains(pl, ql):
		score += 75
	}

	if title != "" && asciiOnly(title) && strings.Contains(strings.ToLower(title), ql) {
		if score == 0 {
			score += 50
		}
	}
	if description != "" && asciiOnly(description) && strings.Contains(strings.ToLower(description), ql) {
		score += 15
	}
	if shortcut != "" && asciiOnly(shortcut) && strings.Contains(strings.ToLower(shortcut), ql) {
		score += 10
	}
	return score
}

func scoreFuzzy(query string, it *item.Item) int32 {
	if len([]rune(query)) < MinFuzzyQueryLen {
		return 0
	}
	primary, title, description, _ := fields(it)
	haystack := strings.TrimSpace(primary + " " + title + " " + description)
	if haystack == "" {
		return 0
	}
	matches := fuzzy.Find(query, []string{haystack})
	if len(matches) == 0 {
		return 0
	}
	raw := matches[0].Score
	scaled := int32(25 + raw)
	if scaled > 50 {
		scaled = 50
	}
	if scaled < 25 {
		scaled = 25
	}
	return scaled
}

// Search scores and orders items against query. Empty query returns
// every item tagged score=0 (the Grouping Builder decides section
// assignment); non-empty query returns only items whose combined score
// is strictly positive. The result is always in cross-source tie-break
// order.
func Search(query string, items []*item.Item) []Result {
	filters, remainder := ParseQuery(query)
	remainder = strings.TrimSpace(remainder)

	results := make([]Result, 0, len(items))
	for _, it := range items {
		if !filters.matches(it) {
			continue
		}
		if remainder == "" {
			results = append(results, Result{Item: it, Score: 0, Source: it.Kind})
			continue
		}
		score := scoreSubstring(remainder, it) + scoreFuzzy(remainder, it)
		if score <= 0 {
			continue
		}
		results = append(results, Result{Item: it, Score: score, Source: it.Kind})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		// Fallbacks always sort last regardless of score.
		af, bf := a.Item.Kind == item.KindFallback, b.Item.Kind == item.KindFallback
		if af != bf {
			return !af
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ao, bo := a.Item.SourceOrder(), b.Item.SourceOrder()
		if ao != bo {
			return ao < bo
		}
		return strings.ToLower(a.Item.Name) < strings.ToLower(b.Item.Name)
	})

	return results
}
