package main

import (
	"fmt"
	"os"
	"os/exec"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nullstrike/launchkit/internal/agentexec"
	"github.com/nullstrike/launchkit/internal/config"
	"github.com/nullstrike/launchkit/internal/item"
	"github.com/nullstrike/launchkit/internal/itemstore"
	"github.com/nullstrike/launchkit/internal/logging"
	"github.com/nullstrike/launchkit/internal/protocol"
	"github.com/nullstrike/launchkit/ui"
)

// version is set at build time via -ldflags.
var version = ui.AppVersion

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the launcher's cobra command tree. The bare binary
// runs the TUI; "run"/"agent"/"version" are headless entry points for
// scripting and tests.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     ui.AppName,
		Short:   ui.AppName + " is a keystroke-driven script launcher",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	root.AddCommand(newRunCmd(), newAgentCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the launcher version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s\n", ui.AppName, version)
			return nil
		},
	}
}

// newRunCmd implements "launchkit run <script>": find the named script
// by name or path across the configured kits and drive its Script
// Protocol session headlessly, printing SET_PROMPT/HUD/LOG/DONE
// messages to stdout instead of rendering them. It does not answer
// prompts — scripts that call for user input should be run from the
// TUI — but it exercises the same spawn/frame/ordering guarantees the
// TUI path does, which is what makes it useful for scripting and tests.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script by name, headless",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := itemstore.New(cfg.Kits.Roots, nil)
			if err := store.Refresh(); err != nil {
				return fmt.Errorf("scan kits: %w", err)
			}
			it := findItemByNameOrPath(store, args[0])
			if it == nil || it.Script == nil {
				return fmt.Errorf("no runnable script named %q", args[0])
			}
			return runScriptHeadless(it.Script.Path)
		},
	}
}

// newAgentCmd implements "launchkit agent <path>": a direct Agent
// Executor invocation, useful for exercising an agent file's validation
// pipeline without the TUI.
func newAgentCmd() *cobra.Command {
	var kitRoot, binary string
	cmd := &cobra.Command{
		Use:   "agent <path>",
		Short: "Validate and run an agent file through the Agent Executor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if kitRoot == "" {
				kitRoot = cfg.AgentRunner.KitRoot
			}
			if binary == "" {
				binary = cfg.AgentRunner.Binary
			}
			canonical, err := agentexec.Validate(kitRoot, args[0])
			if err != nil {
				return err
			}
			built, dropped, err := agentexec.Build(binary, canonical, agentexec.ModeInteractive, nil, nil, os.Environ(), nil)
			if err != nil {
				return err
			}
			for _, d := range dropped {
				fmt.Fprintf(os.Stderr, "dropped frontmatter env override for allowlisted key %q\n", d)
			}
			run := exec.Command(built.Runner, built.Args...)
			run.Env = built.Env
			run.Stdin, run.Stdout, run.Stderr = os.Stdin, os.Stdout, os.Stderr
			return run.Run()
		},
	}
	cmd.Flags().StringVar(&kitRoot, "kit-root", "", "override the configured kit root")
	cmd.Flags().StringVar(&binary, "binary", "", "override the configured agent runner binary")
	return cmd
}

func findItemByNameOrPath(store *itemstore.Store, nameOrPath string) *item.Item {
	for _, it := range store.Items() {
		if it.Name == nameOrPath || it.Path == nameOrPath {
			return it
		}
	}
	return nil
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	model, err := ui.NewModel(cfg, logger)
	if err != nil {
		return fmt.Errorf("init launcher: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.BindProgram(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run launcher: %w", err)
	}
	return nil
}

// runScriptHeadless spawns scriptPath directly via internal/protocol
// and drains its message stream to stdout until DONE or exit, preserving
// the protocol's ordering guarantee (each direction strictly ordered,
// no reordering of child messages).
func runScriptHeadless(scriptPath string) error {
	logFn := func(line string) { fmt.Fprintln(os.Stderr, line) }
	sess, err := protocol.Spawn(scriptPath, nil, logFn)
	if err != nil {
		return fmt.Errorf("spawn %s: %w", scriptPath, err)
	}

	for msg := range sess.Messages {
		switch msg.Type {
		case protocol.TypeSetPrompt:
			fmt.Printf("[prompt:%s] %s\n", msg.SetPrompt.View, string(msg.SetPrompt.Spec))
		case protocol.TypeHUD:
			fmt.Printf("[hud:%s] %s\n", msg.HUD.Level, msg.HUD.Text)
		case protocol.TypeLog:
			fmt.Printf("[log:%s] %s\n", msg.Log.Level, msg.Log.Text)
		case protocol.TypeStreamChunk:
			fmt.Print(msg.StreamChunk.Data)
		case protocol.TypeDone:
			fmt.Printf("[done] exit_code=%d %s\n", msg.Done.ExitCode, msg.Done.Summary)
		}
	}

	info := sess.Wait()
	if info.ExitCode != 0 {
		return fmt.Errorf("%s exited %d", scriptPath, info.ExitCode)
	}
	return nil
}
