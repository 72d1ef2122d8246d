package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultAutocomplete is the built-in list of display names that receive the
// autocomplete role.
var DefaultAutocomplete = []string{
	"Meta Llama 3 8B Instruct Lite",
	"Meta Llama 3 8B Instruct Turbo",
	"Meta Llama 3.1 8B Instruct Turbo",
	"Meta Llama 3 8B Instruct Reference",
	"Gemma Instruct (2B)",
	"Gemma-2 Instruct (9B)",
	"Mistral (7B) Instruct v0.2",
	"Mistral (7B)",
}

// Config holds all configuration for blocksmith.
type Config struct {
	OutputDir       string         `mapstructure:"output_dir"`
	LedgerPath      string         `mapstructure:"ledger_path"`
	InputFile       string         `mapstructure:"input_file"`
	SkipFree        bool           `mapstructure:"skip_free"`
	SkipTypes       []string       `mapstructure:"skip_types"`
	ForceRegenerate bool           `mapstructure:"force_regenerate"`
	Summary         bool           `mapstructure:"summary"`
	DryRun          bool           `mapstructure:"dry_run"`
	CacheDir        string         `mapstructure:"cache_dir"`
	CacheTTL        string         `mapstructure:"cache_ttl"`
	NoCache         bool           `mapstructure:"no_cache"`
	LogLevel        string         `mapstructure:"log_level"`
	Autocomplete    []string       `mapstructure:"autocomplete"`
	Together        TogetherConfig `mapstructure:"together"`
	GitHub          GitHubConfig   `mapstructure:"github"`
}

// TogetherConfig holds Together AI API settings.
type TogetherConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// GitHubConfig holds GitHub-related settings.
type GitHubConfig struct {
	Token      string `mapstructure:"token"`
	Owner      string `mapstructure:"owner"`
	Repo       string `mapstructure:"repo"`
	BaseBranch string `mapstructure:"base_branch"`
}

// Source returns the adapter name the run reads from: the saved file when
// one is configured, the API otherwise.
func (c *Config) Source() string {
	if c.InputFile != "" {
		return "file"
	}
	return "togetherai"
}

// SnapshotPath is where the raw API response is saved.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.OutputDir, "together_api_response.json")
}

// RequestTimeout parses together.timeout, falling back to 30s.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Together.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// CacheTTLDuration parses cache_ttl, falling back to one hour.
func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("output_dir", "./blocks/public")
	v.SetDefault("ledger_path", ".version_cache.json")
	v.SetDefault("input_file", "")
	v.SetDefault("skip_free", false)
	v.SetDefault("skip_types", []string{"audio", "image", "moderation", "multimodal"})
	v.SetDefault("force_regenerate", false)
	v.SetDefault("summary", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("no_cache", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("autocomplete", DefaultAutocomplete)
	v.SetDefault("together.base_url", "https://api.together.xyz/v1")
	v.SetDefault("together.timeout", "30s")
	v.SetDefault("github.base_branch", "main")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/blocksmith")
	}

	// Environment variables
	v.SetEnvPrefix("BLOCKSMITH")
	v.AutomaticEnv()

	_ = v.BindEnv("together.api_key", "TOGETHER_API_KEY", "BLOCKSMITH_TOGETHER_API_KEY")
	_ = v.BindEnv("together.base_url", "BLOCKSMITH_TOGETHER_BASE_URL")
	_ = v.BindEnv("together.timeout", "BLOCKSMITH_TOGETHER_TIMEOUT")
	_ = v.BindEnv("github.token", "GITHUB_TOKEN", "BLOCKSMITH_GITHUB_TOKEN")
	_ = v.BindEnv("github.owner", "BLOCKSMITH_GITHUB_OWNER")
	_ = v.BindEnv("github.repo", "BLOCKSMITH_GITHUB_REPO")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "blocksmith-cache")
	}
	return filepath.Join(home, ".cache", "blocksmith")
}
