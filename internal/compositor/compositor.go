// Package compositor draws the date watermark strip onto daily photos.
//
// A photo is scaled to a fixed width, a white margin is appended on its right
// edge, and the day ordinal plus short date are rendered into that margin as
// vertical text.
package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"PhotoDaily/internal/domain"
)

const (
	// Right-anchor offsets measured back from the trailing edge of the horizontal strip.
	tagInset  = 50
	dateInset = 250
)

var (
	backgroundColor = color.White
	textColor       = color.Black
)

// Options controls the output geometry.
type Options struct {
	TargetWidth int
	MarginRatio float64
	FontRatio   float64
	Quality     int
	FontPath    string
}

// DefaultOptions mirrors the stock configuration.
func DefaultOptions() Options {
	return Options{
		TargetWidth: 1080,
		MarginRatio: 0.15,
		FontRatio:   0.4,
		Quality:     95,
	}
}

// Compositor renders watermarked images. It is safe for sequential use only.
type Compositor struct {
	opts  Options
	fonts *fontSource
}

// New resolves the font once; a missing or broken font file falls back to the built-in face.
func New(opts Options, logger *slog.Logger) (*Compositor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultOptions()
	if opts.TargetWidth <= 0 {
		opts.TargetWidth = def.TargetWidth
	}
	if opts.MarginRatio <= 0 {
		opts.MarginRatio = def.MarginRatio
	}
	if opts.FontRatio <= 0 {
		opts.FontRatio = def.FontRatio
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = def.Quality
	}

	fonts, err := loadFont(opts.FontPath, logger)
	if err != nil {
		return nil, err
	}

	return &Compositor{opts: opts, fonts: fonts}, nil
}

// FontName reports which font ended up in use.
func (c *Compositor) FontName() string {
	return c.fonts.name
}

// Layout computes the resized photo size and the margin width for a source of srcW x srcH.
func Layout(srcW, srcH, targetW int, marginRatio float64) (width, height, margin int) {
	scale := float64(targetW) / float64(srcW)
	height = int(float64(srcH) * scale)
	margin = int(float64(targetW) * marginRatio)
	return targetW, height, margin
}

// Compose returns the watermarked canvas for src dated by img.
func (c *Compositor) Compose(src image.Image, img domain.DatedImage) (*image.NRGBA, error) {
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, errors.New("compose: empty source image")
	}

	width, height, margin := Layout(bounds.Dx(), bounds.Dy(), c.opts.TargetWidth, c.opts.MarginRatio)
	if height == 0 || margin == 0 {
		return nil, fmt.Errorf("compose: degenerate layout %dx%d margin %d", width, height, margin)
	}

	resized := imaging.Resize(src, width, height, imaging.Lanczos)

	canvas := imaging.New(width+margin, height, backgroundColor)
	canvas = imaging.Paste(canvas, resized, image.Pt(0, 0))

	strip, err := c.renderStrip(height, margin, img)
	if err != nil {
		return nil, err
	}

	rotated := imaging.Rotate270(strip)
	return imaging.Overlay(canvas, rotated, image.Pt(width, 0), 1.0), nil
}

// renderStrip draws the tag and date right-anchored on a transparent horizontal strip.
func (c *Compositor) renderStrip(stripW, stripH int, img domain.DatedImage) (*image.RGBA, error) {
	face, err := c.fonts.face(float64(int(float64(stripH) * c.opts.FontRatio)))
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	defer face.Close()

	strip := image.NewRGBA(image.Rect(0, 0, stripW, stripH))
	d := &font.Drawer{
		Dst:  strip,
		Src:  image.NewUniform(textColor),
		Face: face,
	}

	middle := stripH / 2
	drawRightMiddle(d, img.Tag(), stripW-tagInset, middle)
	drawRightMiddle(d, img.ShortDate(), stripW-dateInset, middle)

	return strip, nil
}

// drawRightMiddle places text so its right edge sits on x and its vertical middle on y.
func drawRightMiddle(d *font.Drawer, text string, x, y int) {
	metrics := d.Face.Metrics()
	advance := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(x) - advance,
		Y: fixed.I(y) + (metrics.Ascent-metrics.Descent)/2,
	}
	d.DrawString(text)
}

// Render decodes inPath, composes it and writes the JPEG to outPath.
func (c *Compositor) Render(inPath, outPath string, img domain.DatedImage) error {
	src, err := imaging.Open(inPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inPath, err)
	}

	out, err := c.Compose(src, img)
	if err != nil {
		return err
	}

	return c.Save(out, outPath)
}

// Save encodes img as JPEG into a temp file beside outPath and renames it into place.
func (c *Compositor) Save(img image.Image, outPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".compose-*.jpg")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, img, imaging.JPEG, imaging.JPEGQuality(c.opts.Quality)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move into place: %w", err)
	}

	return nil
}
