package compositor

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

const builtinFontName = "builtin:gobold"

type fontSource struct {
	name string
	font *opentype.Font
}

func loadFont(path string, logger *slog.Logger) (*fontSource, error) {
	if path != "" {
		f, err := parseFontFile(path)
		if err == nil {
			return &fontSource{name: path, font: f}, nil
		}
		logger.Warn("font file unusable, using default", "path", path, "error", err)
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse builtin font: %w", err)
	}
	return &fontSource{name: builtinFontName, font: f}, nil
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

func (s *fontSource) face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %s at %.0fpt: %w", s.name, size, err)
	}
	return face, nil
}
