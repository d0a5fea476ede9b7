package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/robjohnston/herogen/internal/config"
	"github.com/robjohnston/herogen/internal/hero"
	"github.com/spf13/cobra"
)

// defaultCacheDir holds the build cache manifest, relative to the working
// directory.
const defaultCacheDir = ".herogen/cache"

var rootCmd = &cobra.Command{
	Use:   "herogen",
	Short: "Compose blog hero banners",
	Long: "herogen composites a chart image, a darkening gradient and a stack of " +
		"text labels into a fixed-size hero banner for a blog post.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "hero.yaml", "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the configuration for cmd: the --config file (or the
// built-in defaults when the default file is absent), then any override
// flags cmd defines. It returns the config file actually read, or "" when
// the defaults were used.
func loadConfig(cmd *cobra.Command) (*config.HeroConfig, string, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, _ := flags.GetString("config")

	var cfg *config.HeroConfig
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) && !flags.Changed("config") {
		cfg = config.Default()
		configPath = ""
	} else {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	overrides := make(map[string]any)
	for _, name := range []string{"asset", "output", "font"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			overrides[name] = f.Value.String()
		}
	}
	if f := cmd.Flags().Lookup("strength"); f != nil && f.Changed {
		v, err := cmd.Flags().GetFloat64("strength")
		if err != nil {
			return nil, "", err
		}
		overrides["strength"] = v
	}
	if len(overrides) > 0 {
		cfg.WithOverrides(overrides)
		if err := cfg.Validate(); err != nil {
			return nil, "", err
		}
	}
	return cfg, configPath, nil
}

// watchPaths lists the files whose changes should trigger a re-render: the
// render inputs of cfg plus the config file, if one was read.
func watchPaths(cfg *config.HeroConfig, configPath string) []string {
	paths := hero.InputPaths(cfg)
	if configPath != "" {
		paths = append(paths, configPath)
	}
	return paths
}
