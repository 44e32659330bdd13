// Package render turns a template plus a resolved field map into a PNG
// artifact. Layout coordinates are authored against the fixed reference width:
// the background only ever changes canvas height, so horizontal positions stay
// stable across templates.
package render

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	templateModels "certserve/internal/template/models"
)

const (
	// ReferenceWidth is the fixed canvas width all field coordinates are
	// authored against.
	ReferenceWidth = 900
	// DefaultHeight applies when no background image is available.
	DefaultHeight = 636
)

// Renderer is synchronous per call and holds no per-render mutable state, so
// callers may run renders concurrently. The font face cache is the only shared
// structure and is internally locked.
type Renderer struct {
	fonts  *faceCache
	logger *slog.Logger
}

func New(fontDir string, logger *slog.Logger) *Renderer {
	return &Renderer{fonts: newFaceCache(fontDir), logger: logger}
}

// Render draws each template field in array order onto the canvas and writes
// the PNG to outPath, creating parent directories as needed. Fields whose
// resolved value is empty are skipped entirely. Background load failure is
// non-fatal; every other failure aborts the render.
func (r *Renderer) Render(ctx context.Context, tpl *templateModels.Template, values map[string]string, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	width := ReferenceWidth
	height := DefaultHeight
	var background image.Image
	if tpl.Background != "" {
		img, err := loadBackground(ctx, tpl.Background)
		if err != nil {
			r.logger.Warn("background unavailable, rendering without it",
				"background", tpl.Background,
				"error", err.Error(),
			)
		} else {
			background = img
			bounds := img.Bounds()
			height = width * bounds.Dy() / bounds.Dx()
		}
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if background != nil {
		dc.DrawImage(scaleToFill(background, width, height), 0, 0)
	}

	baseFamily := tpl.FontFamily
	for _, field := range tpl.Fields {
		value := values[field.Name]
		if value == "" {
			continue
		}

		family := field.FontFamily
		if family == "" {
			family = baseFamily
		}
		size := field.FontSize
		if size <= 0 {
			size = 16
		}
		face, err := r.fonts.face(family, size, field.IsBold, field.IsItalic)
		if err != nil {
			return fmt.Errorf("load font face for field %q: %w", field.Name, err)
		}
		dc.SetFontFace(face)

		red, green, blue := parseHexColor(field.FontColor)
		dc.SetRGB255(red, green, blue)

		// ax positions the anchor horizontally; ay=0 keeps the alphabetic
		// baseline at the authored y coordinate.
		var ax float64
		switch field.TextAlign {
		case templateModels.AlignCenter:
			ax = 0.5
		case templateModels.AlignRight:
			ax = 1
		default:
			ax = 0
		}
		dc.DrawStringAnchored(value, field.X, field.Y, ax, 0)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}
	if err := dc.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close artifact file: %w", err)
	}
	return nil
}

// parseHexColor resolves a #RRGGBB string to RGB components, defaulting to
// black on malformed input.
func parseHexColor(hex string) (int, int, int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var value int
	if _, err := fmt.Sscanf(hex, "%06x", &value); err != nil {
		return 0, 0, 0
	}
	return (value >> 16) & 0xff, (value >> 8) & 0xff, value & 0xff
}
