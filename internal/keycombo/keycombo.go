// Package keycombo normalizes keyboard shortcuts to a canonical string
// form so the Actions Dialog and Input Router can use them as map keys.
package keycombo

import (
	"sort"
	"strings"
)

// Modifier is one of the four modifier keys a combo can carry.
type Modifier int

const (
	Cmd Modifier = iota
	Ctrl
	Alt
	Shift
)

func (m Modifier) String() string {
	switch m {
	case Cmd:
		return "cmd"
	case Ctrl:
		return "ctrl"
	case Alt:
		return "alt"
	case Shift:
		return "shift"
	default:
		return "?"
	}
}

// modifierOrder fixes the canonical ordering of modifiers within the
// normalized string: cmd, ctrl, alt, shift.
var modifierOrder = map[Modifier]int{Cmd: 0, Ctrl: 1, Alt: 2, Shift: 3}

// KeyCombo is an ordered set of modifiers plus a base key.
type KeyCombo struct {
	Modifiers []Modifier
	Base      string // e.g. "k", "enter", "tab"
}

// New builds a KeyCombo from a base key and modifiers, deduplicating and
// canonically ordering the modifiers.
func New(base string, mods ...Modifier) KeyCombo {
	return KeyCombo{Modifiers: dedupSort(mods), Base: strings.ToLower(base)}
}

func dedupSort(mods []Modifier) []Modifier {
	seen := make(map[Modifier]struct{}, len(mods))
	out := make([]Modifier, 0, len(mods))
	for _, m := range mods {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return modifierOrder[out[i]] < modifierOrder[out[j]] })
	return out
}

// Normalize returns the canonical lowercase string form of k, e.g.
// "cmd+shift+k". Calling Normalize on an already-normalized string (via
// Parse then Normalize again) is idempotent
func Normalize(k KeyCombo) string {
	mods := dedupSort(k.Modifiers)
	parts := make([]string, 0, len(mods)+1)
	for _, m := range mods {
		parts = append(parts, m.String())
	}
	parts = append(parts, strings.ToLower(k.Base))
	return strings.Join(parts, "+")
}

// Parse reconstructs a KeyCombo from a normalized string such as
// "cmd+shift+k". Unknown modifier tokens are ignored rather than erroring
// — routing code treats an unparsed combo as simply not matching any
// registered shortcut.
func Parse(s string) KeyCombo {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 {
		return KeyCombo{}
	}
	base := parts[len(parts)-1]
	var mods []Modifier
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "cmd", "command", "super", "meta":
			mods = append(mods, Cmd)
		case "ctrl", "control":
			mods = append(mods, Ctrl)
		case "alt", "option":
			mods = append(mods, Alt)
		case "shift":
			mods = append(mods, Shift)
		}
	}
	return New(base, mods...)
}

// NormalizeString re-normalizes an already-stringified combo, used to
// satisfy the round-trip property normalize(normalize(x)) == normalize(x).
func NormalizeString(s string) string {
	return Normalize(Parse(s))
}
