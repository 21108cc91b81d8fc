package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/ports"
)

// UploaderDeps wires the vendor API and timing policy into the uploader.
type UploaderDeps struct {
	API         ports.MediaAPI
	MaxAttempts int
	RetryDelay  time.Duration
	SettleDelay time.Duration
	Sleep       ports.Sleeper
	Logger      *slog.Logger
}

// Uploader runs the create -> settle -> publish sequence for one surface.
type Uploader struct {
	api         ports.MediaAPI
	maxAttempts int
	retryDelay  time.Duration
	settleDelay time.Duration
	sleep       ports.Sleeper
	logger      *slog.Logger
}

// NewUploader fills unset policy values with 3 attempts, 5s retry delay and 10s settle delay.
func NewUploader(deps UploaderDeps) *Uploader {
	u := &Uploader{
		api:         deps.API,
		maxAttempts: deps.MaxAttempts,
		retryDelay:  deps.RetryDelay,
		settleDelay: deps.SettleDelay,
		sleep:       deps.Sleep,
		logger:      deps.Logger,
	}
	if u.maxAttempts <= 0 {
		u.maxAttempts = 3
	}
	if u.retryDelay <= 0 {
		u.retryDelay = 5 * time.Second
	}
	if u.settleDelay <= 0 {
		u.settleDelay = 10 * time.Second
	}
	if u.sleep == nil {
		u.sleep = ports.Sleep
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	return u
}

// Upload never returns an error; the outcome, including failures, is in the result.
func (u *Uploader) Upload(ctx context.Context, req domain.ContainerRequest) domain.UploadResult {
	log := u.logger.With("surface", req.Surface)
	result := domain.UploadResult{Surface: req.Surface, State: domain.StateCreating}

	containerID, err := u.create(ctx, req, &result, log)
	if err != nil {
		return fail(result, err, log)
	}
	result.ContainerID = containerID

	log.Info("container created, waiting for media to settle", "container_id", containerID, "delay", u.settleDelay)
	if err := u.sleep(ctx, u.settleDelay); err != nil {
		return fail(result, fmt.Errorf("settle: %w", err), log)
	}

	result.State = domain.StatePublishing
	mediaID, err := u.api.Publish(ctx, containerID)
	if err != nil {
		return fail(result, fmt.Errorf("publish: %w", err), log)
	}

	result.MediaID = mediaID
	result.State = domain.StatePublished
	log.Info("published", "media_id", mediaID)
	return result
}

func (u *Uploader) create(ctx context.Context, req domain.ContainerRequest, result *domain.UploadResult, log *slog.Logger) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		result.Attempts = attempt

		id, err := u.api.CreateContainer(ctx, req)
		if err == nil {
			return id, nil
		}
		lastErr = err
		log.Warn("container creation failed", "attempt", attempt, "max_attempts", u.maxAttempts, "error", err)

		if attempt == u.maxAttempts {
			break
		}
		if err := u.sleep(ctx, u.retryDelay); err != nil {
			return "", fmt.Errorf("retry wait: %w", err)
		}
	}
	return "", fmt.Errorf("create container after %d attempts: %w", u.maxAttempts, lastErr)
}

func fail(result domain.UploadResult, err error, log *slog.Logger) domain.UploadResult {
	result.State = domain.StateFailed
	result.Err = err
	log.Error("upload failed", "error", err)
	return result
}
