package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/logging"
	"PhotoDaily/internal/usecase"
)

var newYearMorning = time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)

func existingHost() *MockImageHost {
	return &MockImageHost{
		ExistsFunc: func(context.Context, string) (bool, error) { return true, nil },
	}
}

func newPoster(host *MockImageHost, api *MockMediaAPI, log *eventLog, opts ...func(*usecase.PosterDeps)) *usecase.Poster {
	deps := usecase.PosterDeps{
		Host:     host,
		Uploader: newUploader(api, log),
		Hashtags: "#365project #dailyphoto",
		Now:      func() time.Time { return newYearMorning },
		Logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return usecase.NewPoster(deps)
}

func TestPosterBothSurfacesAreIndependent(t *testing.T) {
	t.Parallel()

	log := &eventLog{}
	var requests []domain.ContainerRequest
	api := &MockMediaAPI{
		CreateFunc: func(_ context.Context, req domain.ContainerRequest) (string, error) {
			requests = append(requests, req)
			log.add("create %s", req.Surface)
			return "c-" + string(req.Surface), nil
		},
		PublishFunc: func(_ context.Context, containerID string) (string, error) {
			log.add("publish %s", containerID)
			if containerID == "c-STORY" {
				return "", errRemote
			}
			return "m-feed", nil
		},
	}

	report, err := newPoster(existingHost(), api, log).Run(context.Background(), usecase.PostRequest{
		Mode:    domain.ModeBoth,
		Caption: usecase.AutoCaption,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrSurfaceFailed))
	assert.Contains(t, err.Error(), "STORY")
	assert.NotContains(t, err.Error(), "FEED")

	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.SurfaceFeed, report.Results[0].Surface)
	assert.True(t, report.Results[0].Published())
	assert.Equal(t, "m-feed", report.Results[0].MediaID)
	assert.Equal(t, domain.SurfaceStory, report.Results[1].Surface)
	assert.Equal(t, domain.StateFailed, report.Results[1].State)
	assert.True(t, report.Failed())

	require.Len(t, requests, 2)
	assert.True(t, strings.HasPrefix(requests[0].Caption, "Day 1 of 365.\n"))
	assert.Empty(t, requests[1].Caption)
	assert.Equal(t, "https://img.example/2025-01-01.jpg", requests[0].ImageURL)

	assert.Equal(t, []string{
		"create FEED", "sleep 10s", "publish c-FEED",
		"create STORY", "sleep 10s", "publish c-STORY",
	}, log.all())
}

func TestPosterFeedFailureStillAttemptsStory(t *testing.T) {
	t.Parallel()

	log := &eventLog{}
	api := &MockMediaAPI{
		CreateFunc: func(_ context.Context, req domain.ContainerRequest) (string, error) {
			if req.Surface == domain.SurfaceFeed {
				return "", errRemote
			}
			return "c-story", nil
		},
		PublishFunc: func(context.Context, string) (string, error) { return "m-story", nil },
	}

	report, err := newPoster(existingHost(), api, log).Run(context.Background(), usecase.PostRequest{Mode: domain.ModeBoth})

	require.ErrorIs(t, err, usecase.ErrSurfaceFailed)
	require.Len(t, report.Results, 2)
	assert.Equal(t, domain.StateFailed, report.Results[0].State)
	assert.Equal(t, 3, report.Results[0].Attempts)
	assert.True(t, report.Results[1].Published())
}

func TestPosterSkipsWhenImageMissing(t *testing.T) {
	t.Parallel()

	host := &MockImageHost{
		ExistsFunc: func(_ context.Context, imageURL string) (bool, error) {
			assert.Equal(t, "https://img.example/2025-01-01.jpg", imageURL)
			return false, nil
		},
	}
	api := &MockMediaAPI{
		CreateFunc: func(context.Context, domain.ContainerRequest) (string, error) {
			t.Fatal("no upload expected")
			return "", nil
		},
	}
	notified := false
	notifier := &MockNotifier{PublishReportFunc: func(context.Context, domain.RunReport) error {
		notified = true
		return nil
	}}

	report, err := newPoster(host, api, &eventLog{}, func(d *usecase.PosterDeps) { d.Notifier = notifier }).
		Run(context.Background(), usecase.PostRequest{Mode: domain.ModeBoth, Caption: usecase.AutoCaption})

	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Empty(t, report.Results)
	assert.False(t, report.Failed())
	assert.False(t, notified)
}

func TestPosterProbeErrorIsFailure(t *testing.T) {
	t.Parallel()

	host := &MockImageHost{
		ExistsFunc: func(context.Context, string) (bool, error) { return false, errors.New("dial tcp: no route") },
	}

	_, err := newPoster(host, &MockMediaAPI{}, &eventLog{}).Run(context.Background(), usecase.PostRequest{Mode: domain.ModeFeed})

	require.Error(t, err)
	assert.False(t, errors.Is(err, usecase.ErrSurfaceFailed))
}

func TestPosterRecordsHistoryAndNotifies(t *testing.T) {
	t.Parallel()

	log := &eventLog{}
	api := &MockMediaAPI{
		CreateFunc:  func(context.Context, domain.ContainerRequest) (string, error) { return "c-1", nil },
		PublishFunc: func(context.Context, string) (string, error) { return "m-1", nil },
	}

	var records []domain.UploadRecord
	history := &MockHistory{RecordFunc: func(_ context.Context, rec domain.UploadRecord) error {
		records = append(records, rec)
		return errors.New("disk full")
	}}
	var reports []domain.RunReport
	notifier := &MockNotifier{PublishReportFunc: func(_ context.Context, r domain.RunReport) error {
		reports = append(reports, r)
		return errors.New("telegram down")
	}}

	report, err := newPoster(existingHost(), api, log, func(d *usecase.PosterDeps) {
		d.History = history
		d.Notifier = notifier
	}).Run(context.Background(), usecase.PostRequest{Mode: domain.ModeFeed, Caption: "literal caption"})

	require.NoError(t, err, "history and notifier failures never fail the run")
	require.Len(t, report.Results, 1)

	require.Len(t, records, 1)
	assert.Equal(t, "2025-01-01", records[0].PostDate)
	assert.Equal(t, domain.SurfaceFeed, records[0].Surface)
	assert.Equal(t, domain.StatePublished, records[0].State)
	assert.Equal(t, "m-1", records[0].MediaID)
	assert.Equal(t, 1, records[0].Attempts)

	require.Len(t, reports, 1)
	assert.Equal(t, "2025-01-01", reports[0].PostDate)
	assert.Equal(t, report.Results, reports[0].Results)
}

func TestPosterPostDate(t *testing.T) {
	t.Parallel()

	lateEvening := time.Date(2025, time.January, 31, 23, 30, 0, 0, time.UTC)
	poster := usecase.NewPoster(usecase.PosterDeps{
		Host:     existingHost(),
		Location: time.FixedZone("UTC+2", 2*60*60),
		Now:      func() time.Time { return lateEvening },
	})

	assert.Equal(t, "2025-02-01", poster.PostDate(time.Time{}).Format(domain.DateLayout))

	override := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-12-31", poster.PostDate(override).Format(domain.DateLayout))
}

func TestPosterRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := newPoster(existingHost(), &MockMediaAPI{}, &eventLog{}).Run(context.Background(), usecase.PostRequest{Mode: "reel"})
	assert.Error(t, err)
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	text := usecase.FormatReport(domain.RunReport{
		PostDate: "2025-03-01",
		Results: []domain.UploadResult{
			{Surface: domain.SurfaceFeed, State: domain.StatePublished, MediaID: "m-1"},
			{Surface: domain.SurfaceStory, State: domain.StateFailed, Err: errRemote},
		},
	})
	assert.Equal(t, "photodaily 2025-03-01\nFEED: published (m-1)\nSTORY: failed: status 500\n", text)

	assert.Equal(t, "photodaily 2025-03-02\nno image scheduled\n",
		usecase.FormatReport(domain.RunReport{PostDate: "2025-03-02", Skipped: true}))
}
