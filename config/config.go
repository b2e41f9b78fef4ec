// Package config resolves runtime settings from defaults, an optional YAML file,
// FIREWORKS_ environment variables and command line flags, in increasing priority
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, dots become underscores
const EnvPrefix = "FIREWORKS"

const (
	MinFPS = 10
	MaxFPS = 240
)

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type AudioConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Volume  float64 `mapstructure:"volume"`
}

type ShowConfig struct {
	// URL is a share URL or bare query loaded at start
	URL    string `mapstructure:"url"`
	Length int    `mapstructure:"length"`
}

type PreviewConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type URLSyncConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	// Base is prefixed to the share query in the status bar
	Base string `mapstructure:"base"`
}

// Config is the resolved application configuration
type Config struct {
	FPS      int           `mapstructure:"fps"`
	Debug    bool          `mapstructure:"debug"`
	NightSky bool          `mapstructure:"night_sky"`
	Seed     int64         `mapstructure:"seed"`
	Log      LogConfig     `mapstructure:"log"`
	Audio    AudioConfig   `mapstructure:"audio"`
	Show     ShowConfig    `mapstructure:"show"`
	Preview  PreviewConfig `mapstructure:"preview"`
	URLSync  URLSyncConfig `mapstructure:"urlsync"`

	// ConfigFile is the file that was read, empty when none was found
	ConfigFile string `mapstructure:"-"`
}

// ErrHelp is returned when --help was requested; usage has already been printed
var ErrHelp = pflag.ErrHelp

func setDefaults(v *viper.Viper) {
	v.SetDefault("fps", 60)
	v.SetDefault("debug", false)
	v.SetDefault("night_sky", false)
	v.SetDefault("seed", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "fireworks.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.volume", 0.8)

	v.SetDefault("show.url", "")
	v.SetDefault("show.length", 30)

	v.SetDefault("preview.enabled", false)
	v.SetDefault("preview.addr", "127.0.0.1:8787")

	v.SetDefault("urlsync.debounce", "500ms")
	v.SetDefault("urlsync.base", "")
}

// flagBindings maps flag names to config keys
var flagBindings = map[string]string{
	"fps":          "fps",
	"debug":        "debug",
	"night-sky":    "night_sky",
	"seed":         "seed",
	"log-level":    "log.level",
	"log-file":     "log.file",
	"audio":        "audio.enabled",
	"volume":       "audio.volume",
	"show":         "show.url",
	"length":       "show.length",
	"preview":      "preview.enabled",
	"preview-addr": "preview.addr",
	"debounce":     "urlsync.debounce",
	"base-url":     "urlsync.base",
}

// NewFlagSet declares every flag; defaults shown in usage come from viper at parse time
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (yaml)")
	fs.Int("fps", 60, "frame rate")
	fs.BoolP("debug", "d", false, "write debug log")
	fs.Bool("night-sky", false, "start with the night sky backdrop")
	fs.Int64("seed", 0, "random seed, 0 picks one from the clock")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.String("log-file", "fireworks.log", "log file, rotated")
	fs.Bool("audio", true, "enable audio cues")
	fs.Float64("volume", 0.8, "audio volume 0..1")
	fs.StringP("show", "s", "", "share URL or query to load")
	fs.Int("length", 30, "show length in seconds when no show is loaded")
	fs.Bool("preview", false, "serve the websocket preview feed")
	fs.String("preview-addr", "127.0.0.1:8787", "preview listen address")
	fs.Duration("debounce", 500*time.Millisecond, "quiet period before the share URL is updated")
	fs.String("base-url", "", "base URL for share links")
	return fs
}

// Load parses args (without the program name) and resolves the configuration
func Load(name string, args []string) (*Config, error) {
	fs := NewFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	v := viper.New()
	if err := bind(v, fs); err != nil {
		return nil, err
	}

	path, _ := fs.GetString("config")
	file, err := readFile(v, path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.ConfigFile = file
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bind(v *viper.Viper, fs *pflag.FlagSet) error {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagBindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("config: bind %s: %w", flag, err)
		}
	}
	return nil
}

// readFile loads an explicit file, or fireworks.yaml from the working or user config dir
// Only an explicit path is required to exist
func readFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("config: read %s: %w", path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName("fireworks")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "fireworks"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("config: read: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// normalize clamps numeric settings and validates the log level
func (c *Config) normalize() error {
	c.FPS = min(max(c.FPS, MinFPS), MaxFPS)
	c.Audio.Volume = min(max(c.Audio.Volume, 0), 1)
	c.Show.Length = min(max(c.Show.Length, 10), 60)
	if c.URLSync.Debounce < 0 {
		c.URLSync.Debounce = 0
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level
func (c *Config) LogLevel() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("config: log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

// FrameInterval is the ticker period for FPS
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}
