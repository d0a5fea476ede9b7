package hero

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/robjohnston/herogen/internal/config"
	heroimg "github.com/robjohnston/herogen/internal/image"
	"golang.org/x/image/font/gofont/gobold"
)

var (
	navy  = color.NRGBA{R: 15, G: 23, B: 42, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// writePNG encodes img as a PNG at path.
func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// solid returns a w×h image filled with c.
func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// testConfig returns the default banner pointed at a fresh asset and output
// inside a temp directory. The font is forced onto the built-in fallback so
// results do not depend on the fonts installed on the machine.
func testConfig(t *testing.T, asset image.Image) (*config.HeroConfig, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Asset.Path = filepath.Join(dir, "chart.png")
	cfg.Output.Path = filepath.Join(dir, "out", "hero.png")
	cfg.Fonts.Name = "no-such-font.ttf"
	cfg.Fonts.Dirs = nil
	writePNG(t, cfg.Asset.Path, asset)
	if err := os.MkdirAll(filepath.Dir(cfg.Output.Path), 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg, dir
}

// ---------------------------------------------------------------
// Render
// ---------------------------------------------------------------

func TestRender_EndToEnd(t *testing.T) {
	cfg, _ := testConfig(t, solid(1000, 600, white))

	res, err := NewGenerator(cfg, Options{}).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if b := res.Image.Bounds(); b.Dx() != 1000 || b.Dy() != 420 {
		t.Fatalf("canvas = %dx%d; want 1000x420", b.Dx(), b.Dy())
	}
	want := image.Rect(480, 60, 980, 360)
	if res.AssetRect != want {
		t.Errorf("AssetRect = %v; want %v", res.AssetRect, want)
	}
	if res.Masked {
		t.Error("opaque asset pasted with a mask")
	}
	if !res.Fonts.Fallback {
		t.Error("expected font fallback for a missing font")
	}

	for y := want.Min.Y; y < want.Max.Y; y++ {
		for x := want.Min.X; x < want.Max.X; x++ {
			if got := res.Image.NRGBAAt(x, y); got != white {
				t.Fatalf("asset pixel (%d,%d) = %v; want white", x, y, got)
			}
		}
	}

	// Outside the asset and away from the text the canvas keeps its colour.
	for _, p := range []image.Point{{990, 10}, {500, 20}, {460, 400}, {999, 419}} {
		if got := res.Image.NRGBAAt(p.X, p.Y); got != navy {
			t.Errorf("pixel %v = %v; want background", p, got)
		}
	}

	accent := color.NRGBA{R: 147, G: 197, B: 253, A: 255}
	if got := res.Image.NRGBAAt(40, 190); got != accent {
		t.Errorf("accent start = %v; want %v", got, accent)
	}
	if got := res.Image.NRGBAAt(280, 193); got != accent {
		t.Errorf("accent end = %v; want %v", got, accent)
	}
}

func TestRender_AssetTallerThanCanvas(t *testing.T) {
	cfg, _ := testConfig(t, solid(500, 1000, white))

	res, err := NewGenerator(cfg, Options{}).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := res.Image.Bounds(); b.Dx() != 1000 || b.Dy() != 420 {
		t.Fatalf("canvas = %dx%d; want 1000x420", b.Dx(), b.Dy())
	}
	if res.AssetRect.Min.Y != -290 || res.AssetRect.Dy() != 1000 {
		t.Errorf("AssetRect = %v; want y from -290, height 1000", res.AssetRect)
	}
	if got := res.Image.NRGBAAt(700, 0); got != white {
		t.Errorf("clipped asset pixel = %v; want white", got)
	}
}

func TestRender_TransparentAsset(t *testing.T) {
	// Transparent everywhere except a solid right half.
	asset := image.NewNRGBA(image.Rect(0, 0, 1000, 600))
	for y := 0; y < 600; y++ {
		for x := 500; x < 1000; x++ {
			asset.SetNRGBA(x, y, white)
		}
	}
	cfg, _ := testConfig(t, asset)

	res, err := NewGenerator(cfg, Options{}).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !res.Masked {
		t.Fatal("expected transparent asset to be pasted with a mask")
	}
	// Asset spans x 480..980; its transparent half is 480..730.
	if got := res.Image.NRGBAAt(550, 200); got != navy {
		t.Errorf("transparent region = %v; want background %v", got, navy)
	}
	if got := res.Image.NRGBAAt(900, 200); got != white {
		t.Errorf("opaque region = %v; want white", got)
	}
}

func TestRender_Overflow(t *testing.T) {
	cfg, _ := testConfig(t, solid(100, 60, white))
	cfg.Labels = append(cfg.Labels, config.LabelConfig{
		Text: "runs off the edge", X: 990, Y: 10, Color: "#ffffff", Size: config.SizeSmall,
	})
	res, err := NewGenerator(cfg, Options{}).Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(res.Overflow) != 1 || res.Overflow[0] != "runs off the edge" {
		t.Errorf("Overflow = %v; want the off-canvas label", res.Overflow)
	}
}

func TestRender_MissingAsset(t *testing.T) {
	cfg, dir := testConfig(t, solid(10, 10, white))
	cfg.Asset.Path = filepath.Join(dir, "missing.png")
	if _, err := NewGenerator(cfg, Options{}).Render(); err == nil {
		t.Fatal("expected error for missing asset")
	}
}

func TestRender_BadColour(t *testing.T) {
	cfg, _ := testConfig(t, solid(10, 10, white))
	cfg.Labels[0].Color = "teal"
	if _, err := NewGenerator(cfg, Options{}).Render(); err == nil {
		t.Fatal("expected error for unparsable colour")
	}
}

// ---------------------------------------------------------------
// Generate
// ---------------------------------------------------------------

func TestGenerate_WritesPNG(t *testing.T) {
	cfg, _ := testConfig(t, solid(1000, 600, white))

	res, err := NewGenerator(cfg, Options{}).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Outputs) != 1 || res.Outputs[0] != cfg.Output.Path {
		t.Errorf("Outputs = %v; want [%s]", res.Outputs, cfg.Output.Path)
	}

	f, err := os.Open(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pc, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if pc.Width != 1000 || pc.Height != 420 {
		t.Errorf("output = %dx%d; want 1000x420", pc.Width, pc.Height)
	}
}

func TestGenerate_ExtraFormats(t *testing.T) {
	cfg, dir := testConfig(t, solid(1000, 600, white))
	cfg.Output.Formats = []string{"png", "webp"}

	res, err := NewGenerator(cfg, Options{}).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Outputs) != 2 {
		t.Fatalf("Outputs = %v; want png and webp", res.Outputs)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "hero.webp")); err != nil {
		t.Errorf("webp output missing: %v", err)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg, _ := testConfig(t, solid(1000, 600, white))
	gen := NewGenerator(cfg, Options{})

	if _, err := gen.Generate(); err != nil {
		t.Fatal(err)
	}
	first, err := heroimg.HashFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Generate(); err != nil {
		t.Fatal(err)
	}
	second, err := heroimg.HashFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected byte-identical output across runs")
	}
}

func TestGenerate_MissingOutputDir(t *testing.T) {
	cfg, dir := testConfig(t, solid(100, 60, white))
	cfg.Output.Path = filepath.Join(dir, "nowhere", "hero.png")
	if _, err := NewGenerator(cfg, Options{}).Generate(); err == nil {
		t.Fatal("expected error when the output directory does not exist")
	}
}

func TestGenerate_Cache(t *testing.T) {
	cfg, dir := testConfig(t, solid(1000, 600, white))
	opts := Options{CacheDir: filepath.Join(dir, ".herogen", "cache")}

	res, err := NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Fatal("first run reported as cached")
	}

	res, err = NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cached {
		t.Error("second run with unchanged inputs was not cached")
	}
	if res.Width != 1000 || res.Height != 420 {
		t.Errorf("cached dimensions = %dx%d; want 1000x420", res.Width, res.Height)
	}

	forced := opts
	forced.Force = true
	res, err = NewGenerator(cfg, forced).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("forced run reported as cached")
	}

	// Changing the config invalidates the entry.
	cfg.Gradient.Strength = 0.5
	res, err = NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("run after config change reported as cached")
	}

	// Changing the asset invalidates the entry.
	writePNG(t, cfg.Asset.Path, solid(800, 600, white))
	res, err = NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("run after asset change reported as cached")
	}
}

func TestGenerate_CacheTracksFont(t *testing.T) {
	cfg, dir := testConfig(t, solid(1000, 600, white))
	cfg.Fonts.Name = filepath.Join(dir, "fonts", "Go-Bold.ttf")
	opts := Options{CacheDir: filepath.Join(dir, ".herogen", "cache")}

	res, err := NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Fonts.Fallback {
		t.Fatal("expected fallback before the font is installed")
	}
	before, err := heroimg.HashFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}

	// Installing the font changes the pixels, so the entry is stale.
	if err := os.MkdirAll(filepath.Dir(cfg.Fonts.Name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.Fonts.Name, gobold.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	res, err = NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Fatal("run after installing the font reported as cached")
	}
	if res.Fonts.Fallback {
		t.Errorf("installed font not used: %v", res.Fonts.Reason)
	}
	after, err := heroimg.HashFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Error("expected the banner to change once the font was installed")
	}

	res, err = NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cached {
		t.Error("unchanged font and inputs were not cached")
	}

	// Removing the font invalidates the entry again.
	if err := os.Remove(cfg.Fonts.Name); err != nil {
		t.Fatal(err)
	}
	res, err = NewGenerator(cfg, opts).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if res.Cached {
		t.Error("run after removing the font reported as cached")
	}
}

func TestInputPaths(t *testing.T) {
	cfg, dir := testConfig(t, solid(10, 10, white))
	if got := InputPaths(cfg); len(got) != 1 || got[0] != cfg.Asset.Path {
		t.Errorf("InputPaths without a font = %v; want only the asset", got)
	}

	font := filepath.Join(dir, "Go-Bold.ttf")
	if err := os.WriteFile(font, gobold.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Fonts.Name = "go-bold.ttf"
	cfg.Fonts.Dirs = []string{dir}
	got := InputPaths(cfg)
	if len(got) != 2 || got[1] != font {
		t.Errorf("InputPaths = %v; want the asset and %s", got, font)
	}
}
