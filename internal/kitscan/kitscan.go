// Package kitscan discovers scripts, scriptlets, and agents under a kit
// root directory and turns their frontmatter into item.Item records.
//
// A kit root that doesn't exist yet is tolerated rather than treated as
// an error, the way each markdown file is read and unmarshaled from its
// YAML frontmatter block into a typed struct.
package kitscan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nullstrike/launchkit/internal/cronspec"
	"github.com/nullstrike/launchkit/internal/item"
	"github.com/nullstrike/launchkit/internal/launcherr"
)

// frontmatter is the subset of a script/scriptlet/agent markdown header
// the scanner understands. Every top-level key whose value is a string,
// known keys included, is also copied into Extra; keys with non-string
// values (lists, maps, numbers) are not.
type frontmatter struct {
	Tags     []string `yaml:"tags"`
	Author   string   `yaml:"author"`
	Triggers []string `yaml:"triggers"`
	Cron     string   `yaml:"cron"`
	Shortcut string   `yaml:"shortcut"`
	Alias    string   `yaml:"alias"`
	Verb     string   `yaml:"verb"`
	Tool     string   `yaml:"tool"`
	Inputs   []string `yaml:"inputs"`
	Actions  []string `yaml:"actions"`
	Extra    map[string]string
}

// Kit is one scanned kit directory: its name and the items it contributed.
type Kit struct {
	Name  string
	Root  string
	Items []*item.Item
}

// ScanRoots treats every directory directly inside each roots entry as a
// kit, reads its <root>/<name>/{agents,scripts,scriptlets} subdirectories,
// and returns one Kit per discovered kit directory. A root
// that does not exist is skipped rather than erroring: a configured Kits
// Roots list can name paths that haven't been created yet.
func ScanRoots(roots []string) ([]Kit, error) {
	var kits []Kit
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, launcherr.Resource("kit_root_unreadable", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			kit, err := scanKit(filepath.Join(root, e.Name()), e.Name())
			if err != nil {
				return nil, err
			}
			kits = append(kits, kit)
		}
	}
	return kits, nil
}

func scanKit(kitRoot, name string) (Kit, error) {
	kit := Kit{Name: name, Root: kitRoot}

	scripts, err := scanAgentDir(kitRoot, "scripts", name, item.ScriptKindScript)
	if err != nil {
		return Kit{}, err
	}
	agents, err := scanAgentDir(kitRoot, "agents", name, item.ScriptKindAgent)
	if err != nil {
		return Kit{}, err
	}
	scriptlets, err := scanScriptlets(kitRoot, name)
	if err != nil {
		return Kit{}, err
	}

	kit.Items = append(kit.Items, scripts...)
	kit.Items = append(kit.Items, agents...)
	kit.Items = append(kit.Items, scriptlets...)
	return kit, nil
}

func scanAgentDir(kitRoot, subdir, kitName string, subKind item.ScriptSubKind) ([]*item.Item, error) {
	dir := filepath.Join(kitRoot, subdir)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, launcherr.Resource("kit_subdir_unreadable", err)
	}

	var items []*item.Item
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		fm, err := readFrontmatter(path)
		if err != nil {
			return nil, err
		}
		triggers, cronExpr := validateCronTrigger(parseTriggers(fm), fm.Cron)
		items = append(items, &item.Item{
			Name: strings.TrimSuffix(e.Name(), ".md"),
			Path: path,
			Kind: item.KindScript,
			Script: &item.Script{
				Path:        path,
				SubKind:     subKind,
				Tags:        fm.Tags,
				Author:      fm.Author,
				Kit:         kitName,
				Triggers:    triggers,
				CronExpr:    cronExpr,
				Shortcut:    fm.Shortcut,
				Alias:       fm.Alias,
				ActionVerb:  fm.Verb,
				Frontmatter: fm.Extra,
			},
		})
	}
	return items, nil
}

func scanScriptlets(kitRoot, kitName string) ([]*item.Item, error) {
	dir := filepath.Join(kitRoot, "scriptlets")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, launcherr.Resource("kit_subdir_unreadable", err)
	}

	var items []*item.Item
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		bundlePath := filepath.Join(dir, e.Name())
		manifestPath := filepath.Join(bundlePath, "scriptlet.md")
		fm, err := readFrontmatter(manifestPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		items = append(items, &item.Item{
			Name: e.Name(),
			Path: bundlePath,
			Kind: item.KindScriptlet,
			Scriptlet: &item.Scriptlet{
				BundlePath:     bundlePath,
				Tool:           fm.Tool,
				Inputs:         fm.Inputs,
				DefinedActions: fm.Actions,
				Shortcut:       fm.Shortcut,
				Alias:          fm.Alias,
			},
		})
	}
	return items, nil
}

// validateCronTrigger runs the declared cron frontmatter through
// cronspec.Validate. A script whose triggers list includes "cron" but
// whose expression doesn't parse degrades to a non-cron-triggered item
// rather than failing the whole kit scan over one bad frontmatter
// field — is:cron is a filter/display concern, not
// a load-bearing one.
func validateCronTrigger(triggers []item.Trigger, cronExpr string) ([]item.Trigger, string) {
	hasCron := false
	for _, t := range triggers {
		if t == item.TriggerCron {
			hasCron = true
			break
		}
	}
	if !hasCron {
		return triggers, ""
	}
	if err := cronspec.Validate(cronExpr); err != nil {
		out := make([]item.Trigger, 0, len(triggers))
		for _, t := range triggers {
			if t != item.TriggerCron {
				out = append(out, t)
			}
		}
		return out, ""
	}
	return triggers, cronExpr
}

func parseTriggers(fm frontmatter) []item.Trigger {
	var out []item.Trigger
	for _, t := range fm.Triggers {
		switch t {
		case "cron":
			out = append(out, item.TriggerCron)
		case "bg", "background":
			out = append(out, item.TriggerBackground)
		case "watch":
			out = append(out, item.TriggerWatch)
		}
	}
	return out
}

const frontmatterDelim = "---"

// readFrontmatter extracts and parses the leading "---"-delimited YAML
// block of a markdown file. A file with no frontmatter block returns a
// zero-value frontmatter rather than erroring: a bare script body is
// valid, just metadata-less.
func readFrontmatter(path string) (frontmatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return frontmatter{}, err
	}
	text := string(data)
	if !strings.HasPrefix(text, frontmatterDelim) {
		return frontmatter{}, nil
	}
	rest := text[len(frontmatterDelim):]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return frontmatter{}, launcherr.Validation("unterminated_frontmatter", fmt.Errorf("%s", path))
	}
	block := rest[:end]

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return frontmatter{}, launcherr.Validation("malformed_frontmatter", err)
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return frontmatter{}, launcherr.Validation("malformed_frontmatter", err)
	}
	fm.Extra = make(map[string]string)
	for k, v := range raw {
		if s, ok := v.(string); ok {
			fm.Extra[k] = s
		}
	}
	return fm, nil
}
