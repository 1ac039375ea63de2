package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Memo     MemoConfig
	UI       UIConfig
	Log      LogConfig
	Batch    BatchConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// MemoConfig holds notebook rules.
type MemoConfig struct {
	MaxTabs      int    `mapstructure:"max_tabs"`
	DebounceMS   int    `mapstructure:"debounce_ms"`
	DefaultTitle string `mapstructure:"default_title"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Verbose bool
	JSON    bool
	File    string
}

// BatchConfig holds worker settings for multi-memo extraction.
type BatchConfig struct {
	Lines int
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "memosum")
}

// Path returns the config file location: $MEMOSUM_CONFIG, or the default under ~/.config.
func Path() string {
	if p := os.Getenv("MEMOSUM_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "memosum", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(dataDir(), "memosum.db"))
	v.SetDefault("memo.max_tabs", 10)
	v.SetDefault("memo.debounce_ms", 300)
	v.SetDefault("memo.default_title", "メモ %d")
	v.SetDefault("ui.theme", "earth")
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", filepath.Join(dataDir(), "memosum.log"))
	v.SetDefault("batch.lines", 4)
}

// Load reads configuration from file and env. Env var overrides use prefix MEMOSUM_.
func Load() (Config, error) {
	return LoadFile(os.Getenv("MEMOSUM_CONFIG"))
}

// LoadFile is Load with an explicit config file. An empty path searches ~/.config/memosum.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "memosum"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MEMOSUM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	if c.Memo.MaxTabs < 1 {
		c.Memo.MaxTabs = 10
	}
	if c.Memo.DebounceMS < 0 {
		c.Memo.DebounceMS = 0
	}
	if !strings.Contains(c.Memo.DefaultTitle, "%d") {
		c.Memo.DefaultTitle = "メモ %d"
	}
	if c.Batch.Lines < 1 {
		c.Batch.Lines = 1
	}
}

// Save writes the provided config to disk, creating the config directory if needed.
// The TUI uses it to remember the chosen theme.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile is Save to an explicit path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("memo.max_tabs", cfg.Memo.MaxTabs)
	v.Set("memo.debounce_ms", cfg.Memo.DebounceMS)
	v.Set("memo.default_title", cfg.Memo.DefaultTitle)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("log.verbose", cfg.Log.Verbose)
	v.Set("log.json", cfg.Log.JSON)
	v.Set("log.file", cfg.Log.File)
	v.Set("batch.lines", cfg.Batch.Lines)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
