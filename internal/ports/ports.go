package ports

import (
	"context"
	"time"

	"PhotoDaily/internal/domain"
)

// MediaAPI is the vendor two-phase publishing API.
type MediaAPI interface {
	CreateContainer(ctx context.Context, req domain.ContainerRequest) (string, error)
	Publish(ctx context.Context, containerID string) (string, error)
}

// ImageHost resolves and probes the publicly hosted image for a post date.
type ImageHost interface {
	ImageURL(date string) string
	Exists(ctx context.Context, imageURL string) (bool, error)
}

// UploadHistory persists surface outcomes for auditing.
type UploadHistory interface {
	Record(ctx context.Context, rec domain.UploadRecord) error
	Recent(ctx context.Context, limit int) ([]domain.UploadRecord, error)
}

// Notifier delivers run reports to Telegram or other channels; each channel
// renders the report in its own format.
type Notifier interface {
	PublishReport(ctx context.Context, report domain.RunReport) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the production Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ImageRenderer composes one dated source photo into its output file.
type ImageRenderer interface {
	Render(inPath, outPath string, img domain.DatedImage) error
}
