package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Backend  BackendConfig
	Database DatabaseConfig
	UI       UIConfig
	Download DownloadConfig
	Log      LogConfig
}

// BackendConfig holds geometry backend settings.
type BackendConfig struct {
	URL       string
	Ticket    string
	TicketEnv string `mapstructure:"ticket_env"`
	Timeout   time.Duration
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds input binding settings.
type UIConfig struct {
	DebounceTimeout   time.Duration `mapstructure:"debounce_timeout"`
	AcceptRejectMode  bool          `mapstructure:"accept_reject_mode"`
	DisableWhileDirty bool          `mapstructure:"disable_while_dirty"`
	LayoutFile        string        `mapstructure:"layout_file"`
}

// DownloadConfig holds where export files land.
type DownloadConfig struct {
	Dir string
}

// LogConfig holds slog settings.
type LogConfig struct {
	Level string
	File  string
}

// Path returns the config file location. PARAMDECK_CONFIG overrides it.
func Path() string {
	if p := os.Getenv("PARAMDECK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "paramdeck", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix PARAMDECK_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	share := filepath.Join(home, ".local", "share", "paramdeck")
	v.SetDefault("backend.url", "http://localhost:8080")
	v.SetDefault("backend.ticket", "")
	v.SetDefault("backend.ticket_env", "PARAMDECK_TICKET")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("database.path", filepath.Join(share, "paramdeck.db"))
	v.SetDefault("ui.debounce_timeout", time.Second)
	v.SetDefault("ui.accept_reject_mode", false)
	v.SetDefault("ui.disable_while_dirty", false)
	v.SetDefault("ui.layout_file", filepath.Join(home, ".config", "paramdeck", "layout.yaml"))
	v.SetDefault("download.dir", filepath.Join(home, "Downloads"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(share, "paramdeck.log"))

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("PARAMDECK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "paramdeck"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PARAMDECK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UI.DebounceTimeout <= 0 {
		return Config{}, fmt.Errorf("ui.debounce_timeout must be positive, got %s", c.UI.DebounceTimeout)
	}
	return c, nil
}

// Ticket returns the configured ticket, falling back to the env var named
// by backend.ticket_env.
func (c Config) Ticket() string {
	if c.Backend.Ticket != "" {
		return c.Backend.Ticket
	}
	if c.Backend.TicketEnv != "" {
		return os.Getenv(c.Backend.TicketEnv)
	}
	return ""
}

// Save writes the provided config to disk, creating the config directory if needed.
// Tickets are never written; they belong in the ticket store or the environment.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("backend.url", cfg.Backend.URL)
	v.Set("backend.ticket_env", cfg.Backend.TicketEnv)
	v.Set("backend.timeout", cfg.Backend.Timeout.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.debounce_timeout", cfg.UI.DebounceTimeout.String())
	v.Set("ui.accept_reject_mode", cfg.UI.AcceptRejectMode)
	v.Set("ui.disable_while_dirty", cfg.UI.DisableWhileDirty)
	v.Set("ui.layout_file", cfg.UI.LayoutFile)
	v.Set("download.dir", cfg.Download.Dir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
