package image

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"
	"github.com/robjohnston/herogen/internal/config"
)

// OutputPaths returns primary followed by one sibling path per extra format
// (same directory and stem, different extension). Formats that resolve to
// the primary's own format are skipped.
func OutputPaths(primary string, formats []string) []string {
	paths := []string{primary}
	seen := map[string]bool{config.FormatOf(primary): true}
	stem := strings.TrimSuffix(primary, filepath.Ext(primary))
	for _, f := range formats {
		f = strings.ToLower(f)
		if f == "jpg" {
			f = "jpeg"
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		paths = append(paths, stem+"."+formatExtension(f))
	}
	return paths
}

// formatExtension returns the file extension (without dot) for a format name.
func formatExtension(format string) string {
	switch format {
	case "webp":
		return "webp"
	case "png":
		return "png"
	default:
		return "jpg"
	}
}

// Save writes img to outPath, choosing the encoder from the file extension.
// PNG output uses the best compression level. The parent directory must
// already exist.
//
// The image is encoded into a temp file beside outPath and renamed over it,
// so readers never observe a partially written file.
func Save(img image.Image, outPath string, quality int) (err error) {
	f, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err := encode(f, img, config.FormatOf(outPath), quality); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, outPath)
}

func encode(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case "webp":
		if err := webp.Encode(w, img, webp.Options{Quality: quality}); err != nil {
			return fmt.Errorf("encoding webp: %w", err)
		}
	case "jpeg":
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("encoding jpeg: %w", err)
		}
	default:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
	}
	return nil
}
