package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/ports"
)

// ErrSkipped marks a file that was intentionally not processed.
var ErrSkipped = errors.New("skipped")

// Processor walks the input directory and watermarks every dated JPEG.
type Processor struct {
	renderer  ports.ImageRenderer
	inputDir  string
	outputDir string
	logger    *slog.Logger
}

// NewProcessor wires the renderer with the input and output directories.
func NewProcessor(renderer ports.ImageRenderer, inputDir, outputDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		renderer:  renderer,
		inputDir:  inputDir,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Run processes the whole input directory. Only directory-level problems are
// returned as errors; per-file failures are counted in the report.
func (p *Processor) Run(ctx context.Context) (domain.BatchReport, error) {
	var report domain.BatchReport

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output dir: %w", err)
	}

	files, err := p.listJPEGs()
	if err != nil {
		return report, err
	}
	if len(files) == 0 {
		p.logger.Info("no JPG files found", "dir", p.inputDir)
		return report, nil
	}

	p.logger.Info("processing batch", "files", len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		switch err := p.ProcessFile(filepath.Join(p.inputDir, name)); {
		case err == nil:
			report.Processed++
		case errors.Is(err, ErrSkipped):
			report.Skipped++
		default:
			report.Failed++
		}
	}

	p.logger.Info("batch processing complete",
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report, nil
}

// ProcessFile watermarks a single source file into the output directory.
func (p *Processor) ProcessFile(path string) error {
	img, err := domain.ParseDatedImage(path)
	if err != nil {
		p.logger.Warn("skipping file", "file", filepath.Base(path), "reason", err)
		return fmt.Errorf("%w: %v", ErrSkipped, err)
	}

	out := filepath.Join(p.outputDir, img.Name)
	if err := p.renderer.Render(path, out, img); err != nil {
		p.logger.Error("processing failed", "file", img.Name, "error", err)
		return fmt.Errorf("process %s: %w", img.Name, err)
	}

	p.logger.Info("processed", "output", out, "tag", img.Tag(), "date", img.ShortDate())
	return nil
}

func (p *Processor) listJPEGs() ([]string, error) {
	entries, err := os.ReadDir(p.inputDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.inputDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsJPEG(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
