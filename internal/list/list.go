// Package list turns an ordered []search.Result into the
// (SectionHeader | Item) sequence a prompt renders: a virtualized list
// needs one flat, indexable sequence, not a tree.
package list

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/nullstrike/launchkit/internal/frecency"
	"github.com/nullstrike/launchkit/internal/item"
	"github.com/nullstrike/launchkit/internal/search"
)

// Style selects how section boundaries render.
type Style int

const (
	StyleNone Style = iota
	StyleHeaders
	StyleSeparators
)

// Row is one entry in the flattened, renderable list: either a section
// header or an index into the underlying flat results slice.
type Row struct {
	IsHeader bool
	Header   string
	Icon     string
	Index    int // valid only when !IsHeader
}

// Build turns results into the grouped row sequence; every item row's
// Index points into results. When query is empty, the results whose
// paths are in recentPaths come first (in recentPaths' order), followed
// by everything else (in results' existing order); with StyleHeaders the
// two runs get "RECENT" and "MAIN" headers. Non-empty queries never get
// a Recent section: their scores already reflect intent.
func Build(query string, results []search.Result, style Style, recentPaths []string) []Row {
	if len(results) == 0 {
		return nil
	}

	if query != "" {
		return buildFlat(results, style)
	}

	recentSet := make(map[string]int, len(recentPaths))
	for i, p := range recentPaths {
		recentSet[p] = i
	}

	var recent, main []search.Result
	for _, r := range results {
		if _, ok := recentSet[r.Item.Path]; ok {
			recent = append(recent, r)
		} else {
			main = append(main, r)
		}
	}
	orderByRecentPaths(recent, recentSet)

	orig := make(map[*item.Item]int, len(results))
	for i, r := range results {
		orig[r.Item] = i
	}

	rows := make([]Row, 0, len(results)+2)

	if style == StyleHeaders && len(recent) > 0 {
		rows = append(rows, Row{IsHeader: true, Header: "RECENT"})
	}
	for _, r := range recent {
		rows = append(rows, Row{Index: orig[r.Item]})
	}
	if style == StyleHeaders && len(main) > 0 {
		rows = append(rows, Row{IsHeader: true, Header: "MAIN"})
	}
	for _, r := range main {
		rows = append(rows, Row{Index: orig[r.Item]})
	}

	return rows
}

func orderByRecentPaths(recent []search.Result, order map[string]int) {
	// Stable insertion sort: recentPaths is short (RecentTopK-bounded),
	// so this stays cheap and keeps the function allocation-free beyond
	// the slice itself.
	for i := 1; i < len(recent); i++ {
		j := i
		for j > 0 && order[recent[j-1].Item.Path] > order[recent[j].Item.Path] {
			recent[j-1], recent[j] = recent[j], recent[j-1]
			j--
		}
	}
}

func buildFlat(results []search.Result, style Style) []Row {
	rows := make([]Row, 0, len(results))
	var lastSource item.Kind
	haveLast := false
	for i, r := range results {
		if style == StyleHeaders {
			if !haveLast || r.Source != lastSource {
				rows = append(rows, Row{IsHeader: true, Header: sectionLabel(r.Source)})
				lastSource = r.Source
				haveLast = true
			}
		}
		rows = append(rows, Row{Index: i})
	}
	return rows
}

func sectionLabel(k item.Kind) string {
	switch k {
	case item.KindBuiltIn:
		return "BUILT-IN"
	case item.KindApp:
		return "APPS"
	case item.KindWindow:
		return "WINDOWS"
	case item.KindScript:
		return "SCRIPTS"
	case item.KindScriptlet:
		return "SCRIPTLETS"
	case item.KindFallback:
		return "OTHER"
	default:
		return "ITEMS"
	}
}

// CoerceSelection returns the nearest Item row at or below idx; if none
// exists below, the nearest Item row above; if rows contains no Item
// rows at all, ok is false.
func CoerceSelection(rows []Row, idx int) (coerced int, ok bool) {
	if len(rows) == 0 {
		return 0, false
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	for i := idx; i >= 0; i-- {
		if !rows[i].IsHeader {
			return i, true
		}
	}
	for i := idx + 1; i < len(rows); i++ {
		if !rows[i].IsHeader {
			return i, true
		}
	}
	return 0, false
}

// CacheKey derives the memoization key:
// a function of (query, item-set-revision, frecency-revision,
// grouping-style). Callers memoize (flat results, grouped rows) behind
// this key.
func CacheKey(query string, itemSetRevision uint64, frecencySnapshot time.Time, style Style) string {
	h := sha256.New()
	fmt.Fprintf(h, "q=%s|rev=%d|frec=%d|style=%d", query, itemSetRevision, frecencySnapshot.UnixNano(), style)
	return hex.EncodeToString(h.Sum(nil))
}

// Truncate clips s to at most maxWidth display columns, counting wide
// runes (CJK, emoji) as two columns the way a terminal actually renders
// them, so a row built from a double-width item name still lines up
// against its neighbors.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	var b strings.Builder
	width := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if width+w > maxWidth {
			break
		}
		b.WriteRune(r)
		width += w
	}
	return b.String()
}

// RecentPathsForSnapshot is a convenience wrapper that pulls the Recent
// group membership directly from a frecency.Store snapshot, so callers
// building a ScriptList don't need to reach into the frecency package
// themselves.
func RecentPathsForSnapshot(store *frecency.Store, now time.Time) []string {
	if store == nil {
		return nil
	}
	return store.Recent(now)
}
