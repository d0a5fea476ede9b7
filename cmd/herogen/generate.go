package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robjohnston/herogen/internal/config"
	"github.com/robjohnston/herogen/internal/hero"
	"github.com/robjohnston/herogen/internal/server"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the hero banner",
	Long:  "Render the hero banner described by the config file and write it to the output path.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		watch, _ := cmd.Flags().GetBool("watch")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
		opts := hero.Options{CacheDir: cacheDir, Force: force}

		if err := generate(cmd.OutOrStdout(), cfg, opts, verbose); err != nil {
			return err
		}
		if !watch {
			return nil
		}

		paths := watchPaths(cfg, configPath)
		watcher := server.NewWatcher(paths, 100*time.Millisecond, func() {
			log.Println("Change detected, regenerating...")
			next, _, err := loadConfig(cmd)
			if err != nil {
				log.Printf("Regenerate failed: %v", err)
				return
			}
			if err := generate(cmd.OutOrStdout(), next, opts, verbose); err != nil {
				log.Printf("Regenerate failed: %v", err)
			}
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			watcher.Stop()
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %d path(s) for changes. Press Ctrl+C to stop.\n", len(paths))
		return watcher.Start()
	},
}

// generate renders cfg once and reports the result on out.
func generate(out io.Writer, cfg *config.HeroConfig, opts hero.Options, verbose bool) error {
	res, err := hero.NewGenerator(cfg, opts).Generate()
	if err != nil {
		return err
	}

	if res.Cached {
		for _, p := range res.Outputs {
			fmt.Fprintf(out, "Hero image up to date: %s\n", p)
		}
	} else {
		for _, p := range res.Outputs {
			fmt.Fprintf(out, "Hero image created: %s\n", p)
		}
	}
	fmt.Fprintf(out, "Dimensions: %dx%d\n", res.Width, res.Height)

	if !verbose || res.Cached {
		return nil
	}
	if res.Fonts.Fallback {
		fmt.Fprintf(out, "  font: using built-in fallback (%v)\n", res.Fonts.Reason)
	} else {
		fmt.Fprintf(out, "  font: %s\n", res.Fonts.Path)
	}
	kind := "opaque"
	if res.Masked {
		kind = "alpha-masked"
	}
	fmt.Fprintf(out, "  asset: %s pasted at (%d,%d), %dx%d\n",
		kind, res.AssetRect.Min.X, res.AssetRect.Min.Y, res.AssetRect.Dx(), res.AssetRect.Dy())
	for _, label := range res.Overflow {
		fmt.Fprintf(out, "  warning: label runs past the right edge: %q\n", label)
	}
	return nil
}

func init() {
	generateCmd.Flags().String("asset", "", "override the input asset path")
	generateCmd.Flags().StringP("output", "o", "", "override the output path")
	generateCmd.Flags().String("font", "", "override the font file name or path")
	generateCmd.Flags().Float64("strength", 0.3, "override the gradient strength (0 to 1)")
	generateCmd.Flags().Bool("force", false, "render even when the build cache is up to date")
	generateCmd.Flags().String("cache-dir", defaultCacheDir, "build cache directory (empty disables caching)")
	generateCmd.Flags().BoolP("watch", "w", false, "regenerate when the asset, font or config file changes")

	rootCmd.AddCommand(generateCmd)
}
