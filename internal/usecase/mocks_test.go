package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PhotoDaily/internal/domain"
)

// eventLog keeps the order in which collaborators were called.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) sleeper() func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		l.add("sleep %s", d)
		return ctx.Err()
	}
}

// MockMediaAPI is a mock implementation of the MediaAPI interface
type MockMediaAPI struct {
	CreateFunc  func(ctx context.Context, req domain.ContainerRequest) (string, error)
	PublishFunc func(ctx context.Context, containerID string) (string, error)
}

func (m *MockMediaAPI) CreateContainer(ctx context.Context, req domain.ContainerRequest) (string, error) {
	return m.CreateFunc(ctx, req)
}

func (m *MockMediaAPI) Publish(ctx context.Context, containerID string) (string, error) {
	return m.PublishFunc(ctx, containerID)
}

// MockImageHost is a mock implementation of the ImageHost interface
type MockImageHost struct {
	ExistsFunc func(ctx context.Context, imageURL string) (bool, error)
}

func (m *MockImageHost) ImageURL(date string) string {
	return "https://img.example/" + date + ".jpg"
}

func (m *MockImageHost) Exists(ctx context.Context, imageURL string) (bool, error) {
	return m.ExistsFunc(ctx, imageURL)
}

// MockHistory is a mock implementation of the UploadHistory interface
type MockHistory struct {
	RecordFunc func(ctx context.Context, rec domain.UploadRecord) error
}

func (m *MockHistory) Record(ctx context.Context, rec domain.UploadRecord) error {
	return m.RecordFunc(ctx, rec)
}

func (m *MockHistory) Recent(context.Context, int) ([]domain.UploadRecord, error) {
	return nil, nil
}

// MockNotifier is a mock implementation of the Notifier interface
type MockNotifier struct {
	PublishReportFunc func(ctx context.Context, report domain.RunReport) error
}

func (m *MockNotifier) PublishReport(ctx context.Context, report domain.RunReport) error {
	return m.PublishReportFunc(ctx, report)
}

// MockRenderer is a mock implementation of the ImageRenderer interface
type MockRenderer struct {
	RenderFunc func(inPath, outPath string, img domain.DatedImage) error
}

func (m *MockRenderer) Render(inPath, outPath string, img domain.DatedImage) error {
	return m.RenderFunc(inPath, outPath, img)
}
