package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// faceCache parses font files once and caches faces per (family, size, style).
// Families resolve to {fontDir}/{family}.ttf; unknown families fall back to
// the embedded Go fonts so rendering never fails for want of a font file.
type faceCache struct {
	fontDir string

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float64
	bold   bool
	italic bool
}

func newFaceCache(fontDir string) *faceCache {
	return &faceCache{
		fontDir: fontDir,
		fonts:   make(map[string]*opentype.Font),
		faces:   make(map[faceKey]font.Face),
	}
}

func (c *faceCache) face(family string, size float64, bold, italic bool) (font.Face, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := faceKey{family: family, size: size, bold: bold, italic: italic}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}

	ft, err := c.font(family, bold, italic)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build face %s %.0fpx: %w", family, size, err)
	}
	c.faces[key] = face
	return face, nil
}

func (c *faceCache) font(family string, bold, italic bool) (*opentype.Font, error) {
	cacheKey := fmt.Sprintf("%s|%t|%t", family, bold, italic)
	if ft, ok := c.fonts[cacheKey]; ok {
		return ft, nil
	}

	ft := c.fromFile(family)
	if ft == nil {
		var err error
		ft, err = embeddedFont(bold, italic)
		if err != nil {
			return nil, err
		}
	}
	c.fonts[cacheKey] = ft
	return ft, nil
}

func (c *faceCache) fromFile(family string) *opentype.Font {
	if family == "" || c.fontDir == "" {
		return nil
	}
	raw, err := os.ReadFile(filepath.Join(c.fontDir, family+".ttf"))
	if err != nil {
		return nil
	}
	ft, err := opentype.Parse(raw)
	if err != nil {
		return nil
	}
	return ft
}

func embeddedFont(bold, italic bool) (*opentype.Font, error) {
	var data []byte
	switch {
	case bold && italic:
		data = gobolditalic.TTF
	case bold:
		data = gobold.TTF
	case italic:
		data = goitalic.TTF
	default:
		data = goregular.TTF
	}
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return ft, nil
}
