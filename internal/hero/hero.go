// Package hero renders a blog hero banner: a solid canvas with a chart
// pasted on the right, a darkening gradient behind the text, a stack of
// labels and an accent bar.
package hero

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/robjohnston/herogen/internal/config"
	heroimg "github.com/robjohnston/herogen/internal/image"
	"github.com/robjohnston/herogen/internal/text"
	"golang.org/x/image/font"
)

// Options controls how a Generator writes its output.
type Options struct {
	// CacheDir holds the build cache manifest. Empty disables caching.
	CacheDir string
	// Force renders even when the cache says the output is up to date.
	Force bool
}

// Generator renders and saves the banner described by a HeroConfig.
type Generator struct {
	config  *config.HeroConfig
	options Options
	cache   *heroimg.Cache
}

// Result describes a finished render.
type Result struct {
	Image     *image.NRGBA
	Width     int
	Height    int
	AssetRect image.Rectangle
	Masked    bool
	Fonts     *text.Faces
	Overflow  []string // labels that run past the right edge of the canvas
	Outputs   []string
	Cached    bool
}

// NewGenerator creates a Generator for cfg. A cache that cannot be opened is
// silently disabled.
func NewGenerator(cfg *config.HeroConfig, opts Options) *Generator {
	g := &Generator{config: cfg, options: opts}
	if opts.CacheDir != "" {
		if c, err := heroimg.NewCache(opts.CacheDir); err == nil {
			g.cache = c
		}
	}
	return g
}

// palette is the parsed colour set of a config.
type palette struct {
	background color.NRGBA
	accent     color.NRGBA
	labels     []color.NRGBA
}

func parsePalette(cfg *config.HeroConfig) (*palette, error) {
	bg, err := config.ParseHexColor(cfg.Canvas.Background)
	if err != nil {
		return nil, fmt.Errorf("canvas background: %w", err)
	}
	accent, err := config.ParseHexColor(cfg.Accent.Color)
	if err != nil {
		return nil, fmt.Errorf("accent colour: %w", err)
	}
	p := &palette{background: bg, accent: accent}
	for i, l := range cfg.Labels {
		c, err := config.ParseHexColor(l.Color)
		if err != nil {
			return nil, fmt.Errorf("label %d colour: %w", i, err)
		}
		p.labels = append(p.labels, c)
	}
	return p, nil
}

// Render composites the banner in memory.
func (g *Generator) Render() (*Result, error) {
	cfg := g.config
	pal, err := parsePalette(cfg)
	if err != nil {
		return nil, err
	}

	canvas := heroimg.NewCanvas(cfg.Canvas.Width, cfg.Canvas.Height, pal.background)

	src, err := heroimg.OpenAsset(cfg.Asset.Path)
	if err != nil {
		return nil, err
	}
	masked := heroimg.HasAlpha(src)
	asset := heroimg.FitWidth(src, cfg.Asset.Width)
	ab := asset.Bounds()
	pos := heroimg.PastePosition(cfg.Canvas.Width, cfg.Canvas.Height, ab.Dx(), ab.Dy(), cfg.Asset.Margin)
	canvas = heroimg.Paste(canvas, asset, pos, masked)

	heroimg.Darken(canvas, pal.background, pos.X, cfg.Gradient.Strength)

	faces := text.LoadFaces(cfg.Fonts.Name, cfg.Fonts.Dirs, text.Sizes{
		Title:    cfg.Fonts.Title,
		Subtitle: cfg.Fonts.Subtitle,
		Small:    cfg.Fonts.Small,
	})
	var overflow []string
	for i, lc := range cfg.Labels {
		face := faceFor(faces, lc.Size)
		label := text.Label{Text: lc.Text, X: lc.X, Y: lc.Y, Color: pal.labels[i], Uppercase: lc.Uppercase}
		text.Draw(canvas, face, label)
		if lc.X+text.Width(face, label) > cfg.Canvas.Width {
			overflow = append(overflow, lc.Text)
		}
	}

	a := cfg.Accent
	heroimg.FillRect(canvas, image.Rect(a.X, a.Y, a.X+a.Width, a.Y+a.Height), pal.accent)

	return &Result{
		Image:     canvas,
		Width:     cfg.Canvas.Width,
		Height:    cfg.Canvas.Height,
		AssetRect: image.Rectangle{Min: pos, Max: pos.Add(ab.Size())},
		Masked:    masked,
		Fonts:     faces,
		Overflow:  overflow,
	}, nil
}

// Generate renders the banner and writes every configured output. When the
// build cache shows the outputs were produced from the same asset and config,
// rendering is skipped and Result.Cached is true (Result.Image is nil).
func (g *Generator) Generate() (*Result, error) {
	cfg := g.config
	outputs := heroimg.OutputPaths(cfg.Output.Path, cfg.Output.Formats)

	inputs, cacheable := g.cacheInputs()
	if cacheable && !g.options.Force && g.cache.Lookup(g.cacheKey(), inputs) {
		return &Result{
			Width:   cfg.Canvas.Width,
			Height:  cfg.Canvas.Height,
			Outputs: outputs,
			Cached:  true,
		}, nil
	}

	res, err := g.Render()
	if err != nil {
		return nil, err
	}
	// Encoders only read the finished canvas, so formats are written
	// concurrently.
	err = forEachParallel(outputs, 0, func(out string) error {
		return heroimg.Save(res.Image, out, cfg.Output.Quality)
	})
	if err != nil {
		return nil, err
	}
	res.Outputs = outputs

	if cacheable {
		// Cache failures never fail a run.
		_ = g.cache.Store(g.cacheKey(), inputs, outputs)
	}
	return res, nil
}

// cacheInputs digests the asset, the resolved config and the font file the
// render will load. cacheable is false when there is no cache or hashing
// failed.
func (g *Generator) cacheInputs() (in heroimg.CacheInputs, cacheable bool) {
	if g.cache == nil {
		return in, false
	}
	var err error
	if in.AssetHash, err = heroimg.HashFile(g.config.Asset.Path); err != nil {
		return in, false
	}
	if in.ConfigHash, err = heroimg.HashValue(g.config); err != nil {
		return in, false
	}
	in.FontHash = heroimg.FallbackFontHash
	if path, err := text.FindFont(g.config.Fonts.Name, g.config.Fonts.Dirs); err == nil {
		if in.FontHash, err = heroimg.HashFile(path); err != nil {
			return in, false
		}
	}
	return in, true
}

// InputPaths returns the files a render of cfg reads: the asset and, when
// one is found, the font file.
func InputPaths(cfg *config.HeroConfig) []string {
	paths := []string{cfg.Asset.Path}
	if path, err := text.FindFont(cfg.Fonts.Name, cfg.Fonts.Dirs); err == nil {
		paths = append(paths, path)
	}
	return paths
}

func (g *Generator) cacheKey() string {
	if abs, err := filepath.Abs(g.config.Output.Path); err == nil {
		return abs
	}
	return g.config.Output.Path
}

func faceFor(faces *text.Faces, size string) font.Face {
	switch size {
	case config.SizeTitle:
		return faces.Title
	case config.SizeSubtitle:
		return faces.Subtitle
	default:
		return faces.Small
	}
}
