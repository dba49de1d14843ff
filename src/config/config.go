package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"
)

const (
	EnvFileEnvVar  = "REGION_SELECT_ENV"
	ConfigFileName = "region-select.yml"

	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"

	TargetStdout    = "stdout"
	TargetClipboard = "clipboard"
	TargetNATS      = "nats"
)

var (
	ErrInvalidColor  = errors.New("invalid outline color")
	ErrInvalidFormat = errors.New("invalid output format")
	ErrInvalidTarget = errors.New("invalid target")
)

// LoadOptions carries command-line overrides; empty fields are ignored.
type LoadOptions struct {
	ConfigPathOverride   string
	HotkeyOverride       string
	OutputFormatOverride string
	DisableTray          bool
}

type Config struct {
	Hotkey            string   `mapstructure:"hotkey"`
	EnableHotkey      bool     `mapstructure:"enable_hotkey"`
	EnableTray        bool     `mapstructure:"enable_tray"`
	EnableFileLogging bool     `mapstructure:"enable_file_logging"`
	LogLevel          string   `mapstructure:"log_level"`
	LauncherWidth     int      `mapstructure:"launcher_width"`
	LauncherHeight    int      `mapstructure:"launcher_height"`
	OutlineWidth      float64  `mapstructure:"outline_width"`
	OutlineColor      string   `mapstructure:"outline_color"`
	OutputFormat      string   `mapstructure:"output_format"`
	Targets           []string `mapstructure:"targets"`
	NATSURL           string   `mapstructure:"nats_url"`
	NATSSubject       string   `mapstructure:"nats_subject"`
	DeliveryDeadline  int      `mapstructure:"delivery_deadline_sec"`
	Workers           int      `mapstructure:"workers"`
	StrictPressOrigin bool     `mapstructure:"strict_press_origin"`

	// ConfigPath is the YAML file that was read, if any.
	ConfigPath string `mapstructure:"-"`
}

var keys = []string{
	"hotkey",
	"enable_hotkey",
	"enable_tray",
	"enable_file_logging",
	"log_level",
	"launcher_width",
	"launcher_height",
	"outline_width",
	"outline_color",
	"output_format",
	"targets",
	"nats_url",
	"nats_subject",
	"delivery_deadline_sec",
	"workers",
	"strict_press_origin",
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) .env in the executable directory, else the file named by REGION_SELECT_ENV
	// 2) process environment
	// 3) region-select.yml (override path, working directory, then executable directory)
	// 4) defaults
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", k, err)
		}
	}

	configPath := resolveConfigPath(opts)
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.ConfigPath = configPath
	cfg.Targets = splitList(v.Get("targets"))

	if hk := strings.TrimSpace(opts.HotkeyOverride); hk != "" {
		cfg.Hotkey = hk
	}
	if f := strings.TrimSpace(opts.OutputFormatOverride); f != "" {
		cfg.OutputFormat = f
	}
	if opts.DisableTray {
		cfg.EnableTray = false
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hotkey", "Ctrl+Alt+S")
	v.SetDefault("enable_hotkey", true)
	v.SetDefault("enable_tray", true)
	v.SetDefault("enable_file_logging", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("launcher_width", 320)
	v.SetDefault("launcher_height", 160)
	v.SetDefault("outline_width", 1.0)
	v.SetDefault("outline_color", "#ff0000")
	v.SetDefault("output_format", FormatJSON)
	v.SetDefault("targets", TargetStdout)
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", "region.selection.committed")
	v.SetDefault("delivery_deadline_sec", 5)
	v.SetDefault("workers", 1)
	v.SetDefault("strict_press_origin", false)
}

func (c *Config) normalize() error {
	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	switch c.OutputFormat {
	case FormatJSON, FormatYAML, FormatText:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.OutputFormat)
	}

	for i, t := range c.Targets {
		t = strings.ToLower(t)
		switch t {
		case TargetStdout, TargetClipboard, TargetNATS:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidTarget, t)
		}
		c.Targets[i] = t
	}

	if _, err := ParseColor(c.OutlineColor); err != nil {
		return err
	}
	if c.OutlineWidth <= 0 {
		c.OutlineWidth = 1
	}
	if c.DeliveryDeadline <= 0 {
		c.DeliveryDeadline = 5
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}

// HasTarget reports whether name is among the configured targets.
func (c *Config) HasTarget(name string) bool {
	for _, t := range c.Targets {
		if t == name {
			return true
		}
	}
	return false
}

// Outline returns the parsed outline colour.
func (c *Config) Outline() color.RGBA {
	clr, err := ParseColor(c.OutlineColor)
	if err != nil {
		return color.RGBA{R: 255, A: 255}
	}
	return clr
}

// ParseColor parses "#rrggbb" (or "#rgb") into an opaque colour.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// splitList accepts either a YAML list or a comma-separated string.
func splitList(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case []string:
		parts = v
	case []any:
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
	case string:
		parts = strings.Split(v, ",")
	}
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveConfigPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.ConfigPathOverride); p != "" {
		return p
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if execPath, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(execPath), ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
