package itemstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nullstrike/launchkit/internal/item"
)

func TestRefreshPopulatesItemsAndBumpsRevision(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "demo", "scripts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("# a\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := New([]string{root}, nil)
	if s.Revision() != 0 {
		t.Fatalf("expected initial revision 0")
	}
	if err := s.Refresh(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Revision() != 1 {
		t.Fatalf("expected revision 1 after first refresh, got %d", s.Revision())
	}
	if len(s.Items()) != 1 || s.Items()[0].Kind != item.KindScript {
		t.Fatalf("expected one script item, got %+v", s.Items())
	}

	if err := s.Refresh(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Revision() != 2 {
		t.Fatalf("expected revision 2 after second refresh, got %d", s.Revision())
	}
}

func TestRefreshIncludesBuiltIns(t *testing.T) {
	orig := BuiltIns
	defer func() { BuiltIns = orig }()
	BuiltIns = []*item.Item{{
		Name: "Settings", Path: "builtin:settings", Kind: item.KindBuiltIn,
		BuiltIn: &item.BuiltIn{ID: "settings", Category: "system"},
	}}

	s := New([]string{t.TempDir()}, nil)
	if err := s.Refresh(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Items()) != 1 || s.Items()[0].Kind != item.KindBuiltIn {
		t.Fatalf("expected built-in item present, got %+v", s.Items())
	}
}
