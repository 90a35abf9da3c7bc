// Package config loads and resolves rendering configuration. A Config is
// resolved once, before the first line of a stream is fed, and is treated
// as immutable for the lifetime of that stream.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Render RenderConfig `mapstructure:"render"`
	Theme  ThemeConfig  `mapstructure:"theme"`
	Code   CodeConfig   `mapstructure:"code"`
	Think  ThinkConfig  `mapstructure:"think"`
}

// RenderConfig controls layout geometry.
type RenderConfig struct {
	Width  int `mapstructure:"width"`  // Target width in columns; 0 = detect from terminal
	Margin int `mapstructure:"margin"` // Left margin in columns
}

// ThemeConfig controls the color palette. All colors derive from the base
// hue; individual roles can be overridden with ANSI numbers (0-255) or
// hex codes (#RRGGBB).
type ThemeConfig struct {
	Hue       float64 `mapstructure:"hue"`       // Base hue in degrees (0-360)
	Heading   string  `mapstructure:"heading"`   // Heading accent
	Emphasis  string  `mapstructure:"emphasis"`  // Emphasis/strong accent
	Link      string  `mapstructure:"link"`      // Link text
	Muted     string  `mapstructure:"muted"`     // Rules, quote markers, think text
	CodeBlock string  `mapstructure:"codeblock"` // Fallback code color when unhighlighted
}

// CodeConfig controls fenced code highlighting.
type CodeConfig struct {
	Style     string `mapstructure:"style"`     // Chroma style name (default "monokai")
	Highlight bool   `mapstructure:"highlight"` // Disable to render code plain
}

// ThinkConfig controls <think> block presentation.
type ThinkConfig struct {
	Show bool `mapstructure:"show"` // Render think lines dimmed instead of dropping them
}

// Default returns the built-in configuration, used when no config file
// exists and as the base every file merges over.
func Default() Config {
	return Config{
		Render: RenderConfig{Width: 0, Margin: 0},
		Theme:  ThemeConfig{Hue: 210},
		Code:   CodeConfig{Style: "monokai", Highlight: true},
		Think:  ThinkConfig{Show: true},
	}
}

// Load reads configuration from the user config dir and the working
// directory. A missing config file is not an error.
func Load() (*Config, error) {
	configPath, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("render.width", def.Render.Width)
	v.SetDefault("render.margin", def.Render.Margin)
	v.SetDefault("theme.hue", def.Theme.Hue)
	v.SetDefault("code.style", def.Code.Style)
	v.SetDefault("code.highlight", def.Code.Highlight)
	v.SetDefault("think.show", def.Think.Show)
}

// Dir returns the streamdown config directory, honoring
// $XDG_CONFIG_HOME.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "streamdown"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "streamdown"), nil
}
