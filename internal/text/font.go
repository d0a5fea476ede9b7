// Package text loads the banner fonts and draws labels onto a raster.
package text

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Sizes holds the pixel sizes of the three font roles.
type Sizes struct {
	Title    float64
	Subtitle float64
	Small    float64
}

// Faces is the set of font faces used to draw a banner. When the preferred
// font could not be loaded, Fallback is true, Reason holds the cause and all
// three faces are basicfont.Face7x13.
type Faces struct {
	Title    font.Face
	Subtitle font.Face
	Small    font.Face
	Fallback bool
	Reason   error
	Path     string
}

// LoadFaces loads the font called name at the given sizes. name is tried as
// a path first, then looked up by file name in dirs. Loading never fails: any
// error selects the built-in fallback face.
func LoadFaces(name string, dirs []string, sizes Sizes) *Faces {
	faces, err := loadFaces(name, dirs, sizes)
	if err != nil {
		return &Faces{
			Title:    basicfont.Face7x13,
			Subtitle: basicfont.Face7x13,
			Small:    basicfont.Face7x13,
			Fallback: true,
			Reason:   err,
		}
	}
	return faces
}

func loadFaces(name string, dirs []string, sizes Sizes) (*Faces, error) {
	path, err := FindFont(name, dirs)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	f, err := parseFont(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}

	faces := &Faces{Path: path}
	for _, s := range []struct {
		dst  *font.Face
		size float64
	}{
		{&faces.Title, sizes.Title},
		{&faces.Subtitle, sizes.Subtitle},
		{&faces.Small, sizes.Small},
	} {
		// Sizes are pixels, so render at 72 DPI.
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    s.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("creating %gpx face: %w", s.size, err)
		}
		*s.dst = face
	}
	return faces, nil
}

// parseFont parses a TrueType/OpenType font or the first font of a
// collection.
func parseFont(data []byte) (*sfnt.Font, error) {
	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}
	coll, collErr := opentype.ParseCollection(data)
	if collErr != nil || coll.NumFonts() == 0 {
		return nil, err
	}
	return coll.Font(0)
}

// ErrFontNotFound is returned by FindFont when no file matches.
var ErrFontNotFound = errors.New("font not found")

// FindFont resolves name to a font file. An existing path is returned as is;
// otherwise each directory in dirs is walked for a file whose base name
// matches name case-insensitively. A leading "~" in a directory is expanded
// to the user's home directory.
func FindFont(name string, dirs []string) (string, error) {
	if name == "" {
		return "", ErrFontNotFound
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}

	base := strings.ToLower(filepath.Base(name))
	for _, dir := range dirs {
		dir = expandHome(dir)
		var found string
		_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				// Unreadable or missing directories are skipped.
				return nil
			}
			if !d.IsDir() && strings.ToLower(d.Name()) == base {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFontNotFound, name)
}

func expandHome(dir string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~"))
}
