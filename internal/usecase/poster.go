package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/ports"
)

// ErrSurfaceFailed is returned when at least one surface did not publish.
var ErrSurfaceFailed = errors.New("surface upload failed")

// PosterDeps wires all driven adapters into the daily post workflow.
type PosterDeps struct {
	Host     ports.ImageHost
	Uploader *Uploader
	History  ports.UploadHistory
	Notifier ports.Notifier
	Hashtags string
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

// PostRequest is one invocation of the poster.
type PostRequest struct {
	Mode    domain.Mode
	Caption string
	// Date overrides the post date; zero means today in the configured location.
	Date time.Time
}

// Poster implements the daily publishing workflow.
type Poster struct {
	host     ports.ImageHost
	uploader *Uploader
	history  ports.UploadHistory
	notifier ports.Notifier
	hashtags string
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewPoster constructs the orchestration component.
func NewPoster(deps PosterDeps) *Poster {
	p := &Poster{
		host:     deps.Host,
		uploader: deps.Uploader,
		history:  deps.History,
		notifier: deps.Notifier,
		hashtags: deps.Hashtags,
		location: deps.Location,
		now:      deps.Now,
		logger:   deps.Logger,
	}
	if p.location == nil {
		p.location = time.UTC
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// PostDate resolves the calendar day this run publishes for.
func (p *Poster) PostDate(override time.Time) time.Time {
	day := override
	if day.IsZero() {
		day = p.now().In(p.location)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

// Run gates on the hosted image, then uploads to every requested surface.
// A missing image yields a skipped report and nil error.
func (p *Poster) Run(ctx context.Context, req PostRequest) (domain.RunReport, error) {
	surfaces := req.Mode.Surfaces()
	if len(surfaces) == 0 {
		return domain.RunReport{}, fmt.Errorf("unknown mode %q", req.Mode)
	}

	postDate := p.PostDate(req.Date)
	date := postDate.Format(domain.DateLayout)
	report := domain.RunReport{PostDate: date, ImageURL: p.host.ImageURL(date)}

	exists, err := p.host.Exists(ctx, report.ImageURL)
	if err != nil {
		return report, fmt.Errorf("probe hosted image: %w", err)
	}
	if !exists {
		p.logger.Info("no image scheduled", "date", date, "url", report.ImageURL)
		report.Skipped = true
		return report, nil
	}

	caption := ResolveCaption(req.Caption, postDate, p.hashtags)

	for _, surface := range surfaces {
		result := p.uploader.Upload(ctx, domain.ContainerRequest{
			Surface:  surface,
			ImageURL: report.ImageURL,
			Caption:  captionFor(surface, caption),
		})
		report.Results = append(report.Results, result)
		p.record(ctx, date, result)
	}

	p.notify(ctx, report)

	if report.Failed() {
		return report, fmt.Errorf("%w: %s", ErrSurfaceFailed, failedSurfaces(report))
	}
	return report, nil
}

func (p *Poster) record(ctx context.Context, date string, result domain.UploadResult) {
	if p.history == nil {
		return
	}

	rec := domain.UploadRecord{
		PostDate:    date,
		Surface:     result.Surface,
		State:       result.State,
		ContainerID: result.ContainerID,
		MediaID:     result.MediaID,
		Attempts:    result.Attempts,
		CreatedAt:   p.now(),
	}
	if result.Err != nil {
		rec.Error = result.Err.Error()
	}

	if err := p.history.Record(ctx, rec); err != nil {
		p.logger.Warn("history record failed", "surface", result.Surface, "error", err)
	}
}

func (p *Poster) notify(ctx context.Context, report domain.RunReport) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishReport(ctx, report); err != nil {
		p.logger.Warn("report notification failed", "error", err)
	}
}

// FormatReport renders a short plain-text summary of a run for the terminal.
func FormatReport(report domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "photodaily %s\n", report.PostDate)
	if report.Skipped {
		b.WriteString("no image scheduled\n")
		return b.String()
	}
	for _, res := range report.Results {
		if res.Published() {
			fmt.Fprintf(&b, "%s: published (%s)\n", res.Surface, res.MediaID)
			continue
		}
		fmt.Fprintf(&b, "%s: failed: %v\n", res.Surface, res.Err)
	}
	return b.String()
}

func failedSurfaces(report domain.RunReport) string {
	var names []string
	for _, res := range report.Results {
		if !res.Published() {
			names = append(names, string(res.Surface))
		}
	}
	return strings.Join(names, ", ")
}
