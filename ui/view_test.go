package ui

import (
	"strings"
	"testing"

	"github.com/nullstrike/launchkit/internal/item"
)

func TestRenderItemRowShowsCronNextFireHint(t *testing.T) {
	it := &item.Item{
		Name: "nightly-backup",
		Path: "/kits/demo/scripts/nightly-backup.md",
		Kind: item.KindScript,
		Script: &item.Script{
			Path:     "/kits/demo/scripts/nightly-backup.md",
			Triggers: []item.Trigger{item.TriggerCron},
			CronExpr: "0 * * * *",
		},
	}
	if got := renderItemRow(it); !strings.Contains(got, "next ") {
		t.Fatalf("expected a next-fire hint in row, got %q", got)
	}
}

func TestRenderItemRowOmitsHintWithoutCronTrigger(t *testing.T) {
	it := &item.Item{
		Name:   "plain-script",
		Path:   "/kits/demo/scripts/plain-script.md",
		Kind:   item.KindScript,
		Script: &item.Script{Path: "/kits/demo/scripts/plain-script.md"},
	}
	if got := renderItemRow(it); strings.Contains(got, "next ") {
		t.Fatalf("expected no next-fire hint, got %q", got)
	}
}
