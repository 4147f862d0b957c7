// Package agentexec implements the Agent Executor: a
// mandatory validation pipeline plus command/environment assembly for
// running an external markdown-runner against an agent file, the
// defense-in-depth the launcher owes itself since agent files are
// user-authored markdown that will end up as a shell command line.
package agentexec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nullstrike/launchkit/internal/launcherr"
)

// Mode selects which flag the runner gets invoked with.
type Mode int

const (
	ModeUICapture Mode = iota
	ModeInteractive
	ModeDryRun
	ModeExplain
)

// EnvAllowlist is the fixed set of parent-environment keys inherited by
// an agent's child process; every other key must come from frontmatter
// overrides.
var EnvAllowlist = []string{"PATH", "HOME", "TMPDIR", "USER", "LANG", "TERM", "SHELL", "XDG_RUNTIME_DIR"}

// reservedVarKeys are runner flags a caller-supplied variable override
// must never be able to collide with.
var reservedVarKeys = map[string]bool{"quiet": true, "context": true, "env": true, "command": true}

func isAllowlisted(key string) bool {
	for _, k := range EnvAllowlist {
		if k == key {
			return true
		}
	}
	return false
}

// Command is the assembled invocation ready to hand to exec.Command.
type Command struct {
	Runner string
	Args   []string
	Env    []string
}

// fileInfo is the minimal os.FileInfo surface Validate needs, so tests
// can fake a filesystem without touching disk.
type fileInfo interface {
	IsDir() bool
}

// statFunc/canonicalizeFunc are overridable for tests that need to
// exercise validation without a real filesystem.
var statFunc = func(p string) (fileInfo, error) { return os.Stat(p) }
var canonicalizeFunc = filepath.Abs

// Validate runs the mandatory pipeline and returns the
// canonicalized agent path, or a *launcherr.Error with KindValidation
// and a stable diagnostic reason code on failure.
func Validate(kitRoot, agentPath string) (string, error) {
	if containsParentDirSegment(agentPath) {
		return "", launcherr.Validation("parent_dir_segment", fmt.Errorf("agent path %q contains a parent-directory segment", agentPath))
	}

	canonical, err := canonicalizeFunc(agentPath)
	if err != nil {
		return "", launcherr.Validation("canonicalize_failed", err)
	}
	canonical = filepath.Clean(canonical)

	info, err := statFunc(canonical)
	if err != nil {
		return "", launcherr.Validation("stat_failed", err)
	}
	if info.IsDir() {
		return "", launcherr.Validation("not_a_file", fmt.Errorf("%q is a directory", canonical))
	}

	if !strings.EqualFold(filepath.Ext(canonical), ".md") {
		return "", launcherr.Validation("not_markdown", fmt.Errorf("%q is not a .md file", canonical))
	}

	if err := requireInsideKitAgents(kitRoot, canonical); err != nil {
		return "", err
	}

	return canonical, nil
}

// containsParentDirSegment checks the raw (pre-canonicalization) path
// for a ".." path component.
func containsParentDirSegment(p string) bool {
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// requireInsideKitAgents enforces step 4: the canonical path must sit
// under <kit_root>/kit/<kit_name>/agents/... with at least one more
// path component after "agents".
func requireInsideKitAgents(kitRoot, canonical string) error {
	kitRootAbs, err := canonicalizeFunc(kitRoot)
	if err != nil {
		return launcherr.Validation("bad_kit_root", err)
	}
	base := filepath.Join(filepath.Clean(kitRootAbs), "kit")

	rel, err := filepath.Rel(base, canonical)
	if err != nil || strings.HasPrefix(rel, "..") || rel == "." {
		return launcherr.Validation("outside_kit_root", fmt.Errorf("%q is not under %q", canonical, base))
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 3 || parts[1] != "agents" {
		return launcherr.Validation("outside_agents_dir", fmt.Errorf("%q must be <kit>/agents/<file>, got %q", canonical, rel))
	}
	return nil
}

// Variable is one caller-supplied (key, value) override destined for a
// "--_<key> <value>" flag pair.
type Variable struct {
	Key   string
	Value string
}

// normalizeKey trims whitespace, strips leading dashes/underscores, and
// lowercases a variable key
func normalizeKey(raw string) string {
	k := strings.TrimSpace(raw)
	k = strings.TrimLeft(k, "-_")
	return strings.ToLower(k)
}

func hasControlOrWhitespace(s string) bool {
	for _, r := range s {
		if r <= 0x1f || r == 0x7f || r == ' ' {
			return true
		}
	}
	return false
}

func hasDisallowedValueChars(s string) bool {
	for _, r := range s {
		if r <= 0x1f || r == 0x7f {
			return true
		}
	}
	return false
}

// BuildVariableFlags validates and normalizes caller-supplied variable
// overrides into deterministically ordered "--_<key> <value>" flag
// pairs, rejecting reserved runner keys and control characters in
// either the key or the value.
func BuildVariableFlags(vars []Variable) ([]string, error) {
	sorted := make([]Variable, len(vars))
	copy(sorted, vars)
	sort.SliceStable(sorted, func(i, j int) bool { return normalizeKey(sorted[i].Key) < normalizeKey(sorted[j].Key) })

	var flags []string
	for _, v := range sorted {
		key := normalizeKey(v.Key)
		if key == "" {
			return nil, launcherr.Validation("empty_variable_key", fmt.Errorf("variable key %q normalizes to empty", v.Key))
		}
		if reservedVarKeys[key] {
			return nil, launcherr.Validation("reserved_variable_key", fmt.Errorf("variable key %q is reserved", key))
		}
		if hasControlOrWhitespace(key) {
			return nil, launcherr.Validation("invalid_variable_key", fmt.Errorf("variable key %q contains control/whitespace characters", key))
		}
		if hasDisallowedValueChars(v.Value) {
			return nil, launcherr.Validation("invalid_variable_value", fmt.Errorf("variable value for %q contains a newline or control character", key))
		}
		flags = append(flags, "--_"+key, v.Value)
	}
	return flags, nil
}

func modeFlags(m Mode) []string {
	switch m {
	case ModeUICapture:
		return []string{"--_quiet", "--raw"}
	case ModeDryRun:
		return []string{"--_dry-run"}
	case ModeExplain:
		return []string{"--_context"}
	default: // ModeInteractive
		return nil
	}
}

// BuildEnv computes the child environment: the allowlist intersected
// with the parent's actual environment, overlaid with frontmatter
// overrides for every key NOT on the allowlist. Allowlisted keys are
// immutable — a frontmatter attempt to override one is dropped (and
// should be logged by the caller via the returned dropped slice). The
// round-trip invariant:
// result == (allowlist ∩ parent_env) ∪ (frontmatter_env \ allowlist).
func BuildEnv(parentEnv []string, frontmatterEnv map[string]string) (env []string, dropped []string) {
	parent := splitEnv(parentEnv)

	keys := make([]string, 0, len(EnvAllowlist))
	result := make(map[string]string)
	for _, k := range EnvAllowlist {
		if v, ok := parent[k]; ok {
			result[k] = v
			keys = append(keys, k)
		}
	}

	fmKeys := make([]string, 0, len(frontmatterEnv))
	for k := range frontmatterEnv {
		fmKeys = append(fmKeys, k)
	}
	sort.Strings(fmKeys)
	for _, k := range fmKeys {
		if isAllowlisted(k) {
			dropped = append(dropped, k)
			continue
		}
		if _, exists := result[k]; !exists {
			keys = append(keys, k)
		}
		result[k] = frontmatterEnv[k]
	}

	sort.Strings(keys)
	env = make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+result[k])
	}
	return env, dropped
}

func splitEnv(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			m[kv[:idx]] = kv[idx+1:]
		}
	}
	return m
}

// Build assembles the full Command for running agentPath through
// runnerBin in mode, with the given variable overrides, positional
// trailing args, parent environment, and frontmatter env overrides.
// agentPath must already be the canonicalized path returned by
// Validate.
func Build(runnerBin, agentPath string, mode Mode, vars []Variable, positional []string, parentEnv []string, frontmatterEnv map[string]string) (*Command, []string, error) {
	varFlags, err := BuildVariableFlags(vars)
	if err != nil {
		return nil, nil, err
	}

	args := make([]string, 0, 2+len(modeFlags(mode))+len(varFlags)+1+len(positional))
	args = append(args, agentPath)
	args = append(args, modeFlags(mode)...)
	args = append(args, varFlags...)
	if len(positional) > 0 {
		args = append(args, "--")
		args = append(args, positional...)
	}

	env, dropped := BuildEnv(parentEnv, frontmatterEnv)

	return &Command{Runner: runnerBin, Args: args, Env: env}, dropped, nil
}
