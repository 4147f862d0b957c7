package ui

import (
	"context"

	"github.com/nullstrike/launchkit/internal/list"
)

// listRow aliases internal/list.Row so the view-handler plumbing in
// viewhandlers.go doesn't need to import internal/list directly for a
// type it only ever receives from Model.rows.
type listRow = list.Row

// listCoerce wraps list.CoerceSelection for the same reason.
func listCoerce(rows []listRow, idx int) (int, bool) {
	return list.CoerceSelection(rows, idx)
}

// bgCtx is the background context used for the Cancel calls issued
// when tearing down a session.
func bgCtx() context.Context { return context.Background() }
