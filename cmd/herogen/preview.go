package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robjohnston/herogen/internal/config"
	"github.com/robjohnston/herogen/internal/hero"
	"github.com/robjohnston/herogen/internal/server"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve a live preview of the banner",
	Long: "Render the banner into a temporary directory and serve it on a local page " +
		"that reloads whenever the asset, font or config file changes.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load config.
		cfg, configPath, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// 2. Read CLI flags.
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		noLiveReload, _ := cmd.Flags().GetBool("no-live-reload")
		verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

		outputDir, err := os.MkdirTemp("", "herogen-preview-")
		if err != nil {
			return fmt.Errorf("creating preview directory: %w", err)
		}
		defer os.RemoveAll(outputDir)

		// 3. Initial render.
		srv := server.NewServer(cfg, server.ServeOptions{
			Port:         port,
			Bind:         bind,
			OutputDir:    outputDir,
			NoLiveReload: noLiveReload,
			Verbose:      verbose,
		})
		banner, err := renderPreview(cfg, outputDir)
		if err != nil {
			return err
		}
		srv.SetBanner(cfg, banner)

		// 4. Re-render on input changes.
		paths := watchPaths(cfg, configPath)
		watcher := server.NewWatcher(paths, 100*time.Millisecond, func() {
			log.Println("Change detected, re-rendering...")
			next, _, err := loadConfig(cmd)
			if err != nil {
				log.Printf("Re-render failed: %v", err)
				return
			}
			b, err := renderPreview(next, outputDir)
			if err != nil {
				log.Printf("Re-render failed: %v", err)
				return
			}
			srv.SetBanner(next, b)
			srv.NotifyReload()
			if verbose {
				log.Printf("Re-render complete: %v", b.Images)
			}
		})
		srv.SetWatcher(watcher)

		// 5. Handle graceful shutdown. Start stops the watcher and hub once
		// ctx is cancelled.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 6. Serve until interrupted.
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
		return nil
	},
}

// renderPreview renders cfg into dir, keeping the configured file names,
// and describes the result for the preview page. The cache is bypassed so
// every change produces fresh files. Each file is replaced atomically, so
// a browser fetching mid-render sees either the old or the new image.
func renderPreview(cfg *config.HeroConfig, dir string) (server.Banner, error) {
	local := *cfg
	local.Output.Path = filepath.Join(dir, filepath.Base(cfg.Output.Path))

	res, err := hero.NewGenerator(&local, hero.Options{}).Generate()
	if err != nil {
		return server.Banner{}, err
	}
	b := server.Banner{Width: res.Width, Height: res.Height, Overflow: res.Overflow}
	for _, p := range res.Outputs {
		b.Images = append(b.Images, filepath.Base(p))
	}
	return b, nil
}

func init() {
	previewCmd.Flags().Int("port", 1414, "server port")
	previewCmd.Flags().String("bind", "localhost", "bind address")
	previewCmd.Flags().Bool("no-live-reload", false, "disable live reload")

	rootCmd.AddCommand(previewCmd)
}
