// Package config handles loading, validating, and managing hero banner
// configuration for herogen.
package config

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// HeroConfig is the top-level configuration for a hero banner.
type HeroConfig struct {
	Canvas   CanvasConfig   `yaml:"canvas"   toml:"canvas"   mapstructure:"canvas"`
	Asset    AssetConfig    `yaml:"asset"    toml:"asset"    mapstructure:"asset"`
	Gradient GradientConfig `yaml:"gradient" toml:"gradient" mapstructure:"gradient"`
	Fonts    FontConfig     `yaml:"fonts"    toml:"fonts"    mapstructure:"fonts"`
	Labels   []LabelConfig  `yaml:"labels"   toml:"labels"   mapstructure:"labels"`
	Accent   AccentConfig   `yaml:"accent"   toml:"accent"   mapstructure:"accent"`
	Output   OutputConfig   `yaml:"output"   toml:"output"   mapstructure:"output"`
}

// CanvasConfig holds the banner dimensions and background colour.
type CanvasConfig struct {
	Width      int    `yaml:"width"      toml:"width"      mapstructure:"width"`
	Height     int    `yaml:"height"     toml:"height"     mapstructure:"height"`
	Background string `yaml:"background" toml:"background" mapstructure:"background"`
}

// AssetConfig describes the chart image pasted on the right of the banner.
type AssetConfig struct {
	Path   string `yaml:"path"   toml:"path"   mapstructure:"path"`
	Width  int    `yaml:"width"  toml:"width"  mapstructure:"width"`
	Margin int    `yaml:"margin" toml:"margin" mapstructure:"margin"`
}

// GradientConfig controls the darkening applied left of the asset.
type GradientConfig struct {
	Strength float64 `yaml:"strength" toml:"strength" mapstructure:"strength"`
}

// FontConfig selects the preferred font and its three pixel sizes.
type FontConfig struct {
	Name     string   `yaml:"name"     toml:"name"     mapstructure:"name"`
	Dirs     []string `yaml:"dirs"     toml:"dirs"     mapstructure:"dirs"`
	Title    float64  `yaml:"title"    toml:"title"    mapstructure:"title"`
	Subtitle float64  `yaml:"subtitle" toml:"subtitle" mapstructure:"subtitle"`
	Small    float64  `yaml:"small"    toml:"small"    mapstructure:"small"`
}

// Font size roles a label may reference.
const (
	SizeTitle    = "title"
	SizeSubtitle = "subtitle"
	SizeSmall    = "small"
)

// LabelConfig is a single line of text drawn on the banner. X and Y are the
// top-left corner of the text.
type LabelConfig struct {
	Text      string `yaml:"text"      toml:"text"      mapstructure:"text"`
	X         int    `yaml:"x"         toml:"x"         mapstructure:"x"`
	Y         int    `yaml:"y"         toml:"y"         mapstructure:"y"`
	Color     string `yaml:"color"     toml:"color"     mapstructure:"color"`
	Size      string `yaml:"size"      toml:"size"      mapstructure:"size"`
	Uppercase bool   `yaml:"uppercase" toml:"uppercase" mapstructure:"uppercase"`
}

// AccentConfig is the decorative bar drawn beneath the subtitle.
type AccentConfig struct {
	X      int    `yaml:"x"      toml:"x"      mapstructure:"x"`
	Y      int    `yaml:"y"      toml:"y"      mapstructure:"y"`
	Width  int    `yaml:"width"  toml:"width"  mapstructure:"width"`
	Height int    `yaml:"height" toml:"height" mapstructure:"height"`
	Color  string `yaml:"color"  toml:"color"  mapstructure:"color"`
}

// OutputConfig controls where and how the banner is written.
type OutputConfig struct {
	Path    string   `yaml:"path"    toml:"path"    mapstructure:"path"`
	Formats []string `yaml:"formats" toml:"formats" mapstructure:"formats"`
	Quality int      `yaml:"quality" toml:"quality" mapstructure:"quality"`
}

// Default returns the configuration for the Liskov Substitution Principle
// banner.
func Default() *HeroConfig {
	return &HeroConfig{
		Canvas: CanvasConfig{
			Width:      1000,
			Height:     420,
			Background: "#0f172a",
		},
		Asset: AssetConfig{
			Path:   filepath.Join("static", "images", "solid", "temperature_sensor_fast-001.png"),
			Width:  500,
			Margin: 20,
		},
		Gradient: GradientConfig{
			Strength: 0.3,
		},
		Fonts: FontConfig{
			Name: "arial.ttf",
			Dirs: []string{
				"/usr/share/fonts",
				"/usr/local/share/fonts",
				"~/.fonts",
				"~/.local/share/fonts",
				"/Library/Fonts",
				"/System/Library/Fonts",
				`C:\Windows\Fonts`,
			},
			Title:    48,
			Subtitle: 28,
			Small:    20,
		},
		Labels: []LabelConfig{
			{Text: "Liskov Substitution", X: 40, Y: 80, Color: "#e2e8f0", Size: SizeTitle},
			{Text: "Principle", X: 40, Y: 135, Color: "#e2e8f0", Size: SizeTitle},
			{Text: "When Your Cheap Sensor", X: 40, Y: 210, Color: "#93c5fd", Size: SizeSubtitle},
			{Text: "Breaks Everything", X: 40, Y: 245, Color: "#f87171", Size: SizeSubtitle},
			{Text: "SOLID PRINCIPLES", X: 40, Y: 360, Color: "#64748b", Size: SizeSmall},
		},
		Accent: AccentConfig{
			X:      40,
			Y:      190,
			Width:  241,
			Height: 4,
			Color:  "#93c5fd",
		},
		Output: OutputConfig{
			Path:    filepath.Join("static", "images", "solid", "liskov_hero.png"),
			Quality: 90,
		},
	}
}

// Load reads a configuration file from configPath (YAML or TOML) and returns
// a HeroConfig with defaults applied first and file values overlaid on top.
func Load(configPath string) (*HeroConfig, error) {
	cfg := Default()

	v := viper.New()

	ext := strings.TrimPrefix(filepath.Ext(configPath), ".")
	switch ext {
	case "toml":
		v.SetConfigType("toml")
	default:
		v.SetConfigType("yaml")
	}

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Lists in the file replace the defaults instead of merging into them.
	for key, reset := range map[string]func(){
		"labels":         func() { cfg.Labels = nil },
		"fonts.dirs":     func() { cfg.Fonts.Dirs = nil },
		"output.formats": func() { cfg.Output.Formats = nil },
	} {
		if v.IsSet(key) {
			reset()
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// knownFormats lists the output encodings herogen can write.
var knownFormats = map[string]bool{"png": true, "jpeg": true, "jpg": true, "webp": true}

// Validate checks the HeroConfig for errors that would otherwise surface
// halfway through rendering.
func (c *HeroConfig) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("config: canvas dimensions must be positive (got %dx%d)", c.Canvas.Width, c.Canvas.Height)
	}
	if _, err := ParseHexColor(c.Canvas.Background); err != nil {
		return fmt.Errorf("config: canvas.background: %w", err)
	}
	if c.Asset.Width <= 0 {
		return fmt.Errorf("config: asset.width must be positive (got %d)", c.Asset.Width)
	}
	if strings.TrimSpace(c.Asset.Path) == "" {
		return fmt.Errorf("config: asset.path is required")
	}
	if c.Gradient.Strength < 0 || c.Gradient.Strength > 1 {
		return fmt.Errorf("config: gradient.strength must be within [0, 1] (got %g)", c.Gradient.Strength)
	}
	if c.Fonts.Title <= 0 || c.Fonts.Subtitle <= 0 || c.Fonts.Small <= 0 {
		return fmt.Errorf("config: font sizes must be positive")
	}
	for i, l := range c.Labels {
		if _, err := ParseHexColor(l.Color); err != nil {
			return fmt.Errorf("config: labels[%d].color: %w", i, err)
		}
		switch l.Size {
		case SizeTitle, SizeSubtitle, SizeSmall:
		default:
			return fmt.Errorf("config: labels[%d].size must be title, subtitle or small (got %q)", i, l.Size)
		}
	}
	if _, err := ParseHexColor(c.Accent.Color); err != nil {
		return fmt.Errorf("config: accent.color: %w", err)
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("config: output.path is required")
	}
	if f := FormatOf(c.Output.Path); !knownFormats[f] {
		return fmt.Errorf("config: output.path has unsupported extension %q", filepath.Ext(c.Output.Path))
	}
	for _, f := range c.Output.Formats {
		if !knownFormats[strings.ToLower(f)] {
			return fmt.Errorf("config: unsupported output format %q", f)
		}
	}
	return nil
}

// WithOverrides applies CLI flag overrides to the config. Known keys are
// mapped to their corresponding struct fields. The modified config is returned
// for convenient chaining.
func (c *HeroConfig) WithOverrides(overrides map[string]any) *HeroConfig {
	for key, val := range overrides {
		switch key {
		case "asset":
			if s, ok := val.(string); ok && s != "" {
				c.Asset.Path = s
			}
		case "output":
			if s, ok := val.(string); ok && s != "" {
				c.Output.Path = s
			}
		case "font":
			if s, ok := val.(string); ok && s != "" {
				c.Fonts.Name = s
			}
		case "strength":
			if f, ok := val.(float64); ok {
				c.Gradient.Strength = f
			}
		}
	}
	return c
}

// FormatOf returns the output format name for path based on its extension
// ("png", "jpeg", "webp"). Unknown extensions are returned lower-cased
// without the dot.
func FormatOf(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "jpg" {
		return "jpeg"
	}
	return ext
}

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque colour.
func ParseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return c, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return c, fmt.Errorf("invalid colour %q", s)
	}
	c.R = uint8(v >> 16)
	c.G = uint8(v >> 8)
	c.B = uint8(v)
	return c, nil
}
