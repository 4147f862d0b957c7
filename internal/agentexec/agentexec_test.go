package agentexec

import (
	"path/filepath"
	"testing"

	"github.com/nullstrike/launchkit/internal/launcherr"
)

type fakeFileInfo struct{ isDir bool }

func (f fakeFileInfo) IsDir() bool { return f.isDir }

func resetFuncs() {
	canonicalizeFunc = filepath.Abs
	statFunc = func(p string) (fileInfo, error) { return fakeFileInfo{}, nil }
}

func TestValidateRejectsParentDirSegment(t *testing.T) {
	_, err := Validate("/kits", "/kits/kit/demo/agents/../../../etc/passwd.md")
	assertReason(t, err, "parent_dir_segment")
}

func TestValidateRejectsNonMarkdown(t *testing.T) {
	canonicalizeFunc = func(p string) (string, error) { return p, nil }
	statFunc = func(p string) (fileInfo, error) { return fakeFileInfo{isDir: false}, nil }
	defer resetFuncs()

	_, err := Validate("/kits", "/kits/kit/demo/agents/run.sh")
	assertReason(t, err, "not_markdown")
}

func TestValidateRejectsOutsideKitRoot(t *testing.T) {
	canonicalizeFunc = func(p string) (string, error) { return p, nil }
	statFunc = func(p string) (fileInfo, error) { return fakeFileInfo{isDir: false}, nil }
	defer resetFuncs()

	_, err := Validate("/kits", "/kits/demo/not-agents/run.md")
	assertReason(t, err, "outside_kit_root")
}

func TestValidateRejectsOutsideAgentsDir(t *testing.T) {
	canonicalizeFunc = func(p string) (string, error) { return p, nil }
	statFunc = func(p string) (fileInfo, error) { return fakeFileInfo{isDir: false}, nil }
	defer resetFuncs()

	_, err := Validate("/kits", "/kits/kit/demo/not-agents/run.md")
	assertReason(t, err, "outside_agents_dir")
}

func TestValidateAcceptsWellFormedPath(t *testing.T) {
	canonicalizeFunc = func(p string) (string, error) { return filepath.Clean(p), nil }
	statFunc = func(p string) (fileInfo, error) { return fakeFileInfo{isDir: false}, nil }
	defer resetFuncs()

	got, err := Validate("/kits", "/kits/kit/demo/agents/run.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Clean("/kits/kit/demo/agents/run.md")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildVariableFlagsRejectsReservedKey(t *testing.T) {
	_, err := BuildVariableFlags([]Variable{{Key: "quiet", Value: "1"}})
	assertReason(t, err, "reserved_variable_key")
}

func TestBuildVariableFlagsRejectsControlCharsInValue(t *testing.T) {
	_, err := BuildVariableFlags([]Variable{{Key: "name", Value: "line1\nline2"}})
	assertReason(t, err, "invalid_variable_value")
}

func TestBuildVariableFlagsRejectsTabInValue(t *testing.T) {
	_, err := BuildVariableFlags([]Variable{{Key: "name", Value: "a\tb"}})
	assertReason(t, err, "invalid_variable_value")
}

func TestBuildVariableFlagsNormalizesAndSorts(t *testing.T) {
	flags, err := BuildVariableFlags([]Variable{
		{Key: "--Zeta", Value: "z"},
		{Key: "__alpha", Value: "a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"--_alpha", "a", "--_zeta", "z"}
	if len(flags) != len(want) {
		t.Fatalf("expected %v, got %v", want, flags)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, flags)
		}
	}
}

func TestBuildEnvOnlyAllowlistFromParent(t *testing.T) {
	parent := []string{"PATH=/bin", "HOME=/root", "SECRET=leak", "TERM=xterm"}
	env, dropped := BuildEnv(parent, nil)
	if len(dropped) != 0 {
		t.Fatalf("expected no drops, got %v", dropped)
	}
	for _, kv := range env {
		if kv == "SECRET=leak" {
			t.Fatalf("SECRET must not be inherited, got env %v", env)
		}
	}
	foundPath, foundHome := false, false
	for _, kv := range env {
		if kv == "PATH=/bin" {
			foundPath = true
		}
		if kv == "HOME=/root" {
			foundHome = true
		}
	}
	if !foundPath || !foundHome {
		t.Fatalf("expected PATH and HOME inherited, got %v", env)
	}
}

func TestBuildEnvFrontmatterCannotOverrideAllowlistedKey(t *testing.T) {
	parent := []string{"PATH=/bin"}
	env, dropped := BuildEnv(parent, map[string]string{"PATH": "/evil", "MY_VAR": "1"})
	if len(dropped) != 1 || dropped[0] != "PATH" {
		t.Fatalf("expected PATH dropped, got %v", dropped)
	}
	for _, kv := range env {
		if kv == "PATH=/evil" {
			t.Fatalf("PATH override must be dropped, got %v", env)
		}
	}
	foundMyVar := false
	for _, kv := range env {
		if kv == "MY_VAR=1" {
			foundMyVar = true
		}
	}
	if !foundMyVar {
		t.Fatalf("expected MY_VAR=1 present, got %v", env)
	}
}

func TestBuildAssemblesPositionalArgsAfterDoubleDash(t *testing.T) {
	cmd, dropped, err := Build("agent-runner", "/kits/kit/demo/agents/run.md", ModeUICapture,
		[]Variable{{Key: "name", Value: "world"}}, []string{"extra", "arg"},
		[]string{"PATH=/bin"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("expected no drops, got %v", dropped)
	}
	want := []string{"/kits/kit/demo/agents/run.md", "--_quiet", "--raw", "--_name", "world", "--", "extra", "arg"}
	if len(cmd.Args) != len(want) {
		t.Fatalf("expected %v, got %v", want, cmd.Args)
	}
	for i := range want {
		if cmd.Args[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cmd.Args)
		}
	}
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with reason %q, got nil", reason)
	}
	if launcherr.KindOf(err) != launcherr.KindValidation {
		t.Fatalf("expected KindValidation, got %v", launcherr.KindOf(err))
	}
	le, ok := err.(*launcherr.Error)
	if !ok || le.Reason != reason {
		t.Fatalf("expected reason %q, got %v", reason, err)
	}
}
