// Package config implements the launcher's layered settings load:
// defaults, then a global config file, then a project-local override
// file merged on top, then environment variables, via spf13/viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/nullstrike/launchkit/internal/prompt"
)

// Config is the launcher's full runtime configuration.
type Config struct {
	Kits        KitsConfig        `mapstructure:"kits"`
	Frecency    FrecencyConfig    `mapstructure:"frecency"`
	Session     SessionConfig     `mapstructure:"session"`
	AgentRunner AgentRunnerConfig `mapstructure:"agent_runner"`
	Log         LogConfig         `mapstructure:"log"`
	Watch       WatchConfig       `mapstructure:"watch"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

// CacheConfig locates the app/window scan cache database.
type CacheConfig struct {
	WindowDB string `mapstructure:"window_db"`
}

// KitsConfig locates the kit roots items and agents are loaded from.
type KitsConfig struct {
	Roots []string `mapstructure:"roots"`
}

// FrecencyConfig locates and tunes the frecency store.
type FrecencyConfig struct {
	Path          string        `mapstructure:"path"`
	HalfLife      time.Duration `mapstructure:"half_life"`
	DebounceDelay time.Duration `mapstructure:"debounce_delay"`
}

// SessionConfig controls Prompt Session lifecycle policy.
type SessionConfig struct {
	// AtMostOnePolicy is "refuse" or "cancel_old".
	AtMostOnePolicy string        `mapstructure:"at_most_one_policy"`
	CancelGrace     time.Duration `mapstructure:"cancel_grace"`
}

// Policy translates the configured policy string into a prompt.Policy,
// defaulting to PolicyRefuse for an unrecognized value.
func (s SessionConfig) Policy() prompt.Policy {
	if s.AtMostOnePolicy == "cancel_old" {
		return prompt.PolicyCancelOld
	}
	return prompt.PolicyRefuse
}

// AgentRunnerConfig locates the external markdown-runner binary and the
// kit root agent paths are validated against.
type AgentRunnerConfig struct {
	Binary  string `mapstructure:"binary"`
	KitRoot string `mapstructure:"kit_root"`
}

// LogConfig matches internal/logging.Config's shape for mapstructure.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// WatchConfig controls the fsnotify-driven item-set refresh.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load builds a Config by layering defaults, then
// ~/.config/launchkit/config.yaml, then a project-local
// ./launchkit.yaml merged on top, then LAUNCHKIT_* environment
// variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	home, _ := os.UserHomeDir()
	globalDir := filepath.Join(home, ".config", "launchkit")
	v.AddConfigPath(globalDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read global config: %w", err)
		}
	}

	localPath := "./launchkit.yaml"
	if _, err := os.Stat(localPath); err == nil {
		v2 := viper.New()
		v2.SetConfigFile(localPath)
		if err := v2.ReadInConfig(); err == nil {
			_ = v.MergeConfigMap(v2.AllSettings())
		}
	}

	v.SetEnvPrefix("LAUNCHKIT")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("kits.roots", []string{filepath.Join(home, ".launchkit", "kits", "kit")})

	v.SetDefault("frecency.path", filepath.Join(home, ".launchkit", "frecency.ndjson"))
	v.SetDefault("frecency.half_life", 14*24*time.Hour)
	v.SetDefault("frecency.debounce_delay", 2*time.Second)

	v.SetDefault("session.at_most_one_policy", "refuse")
	v.SetDefault("session.cancel_grace", 3*time.Second)

	v.SetDefault("agent_runner.binary", "mdflow")
	v.SetDefault("agent_runner.kit_root", filepath.Join(home, ".launchkit", "kits"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stderr")

	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.debounce", 300*time.Millisecond)

	v.SetDefault("cache.window_db", filepath.Join(home, ".launchkit", "launchkit.db"))
}
