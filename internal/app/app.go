package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"PhotoDaily/internal/compositor"
	"PhotoDaily/internal/config"
	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/infrastructure/graph"
	"PhotoDaily/internal/infrastructure/hosting"
	"PhotoDaily/internal/infrastructure/scheduler"
	"PhotoDaily/internal/infrastructure/storage"
	"PhotoDaily/internal/infrastructure/telegram"
	"PhotoDaily/internal/infrastructure/watch"
	"PhotoDaily/internal/logging"
	"PhotoDaily/internal/ports"
	"PhotoDaily/internal/usecase"
)

// ErrHistoryDisabled is returned by History when no database path is configured.
var ErrHistoryDisabled = errors.New("upload history is not configured")

const stopTimeout = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// ProcessOptions overrides compositor settings for one invocation.
type ProcessOptions struct {
	InputDir  string
	OutputDir string
	FontPath  string
	Watch     bool
}

// New builds an application around the loaded configuration.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Process runs the watermark batch and, in watch mode, keeps processing new
// files until ctx is cancelled.
func (a *Application) Process(ctx context.Context, opts ProcessOptions) (domain.BatchReport, error) {
	cc := a.cfg.Compositor
	if opts.InputDir != "" {
		cc.InputDir = opts.InputDir
	}
	if opts.OutputDir != "" {
		cc.OutputDir = opts.OutputDir
	}
	if opts.FontPath != "" {
		cc.FontPath = opts.FontPath
	}

	comp, err := compositor.New(compositor.Options{
		TargetWidth: cc.TargetWidth,
		MarginRatio: cc.MarginRatio,
		FontRatio:   cc.FontRatio,
		Quality:     cc.Quality,
		FontPath:    cc.FontPath,
	}, a.logger.With("component", "compositor"))
	if err != nil {
		return domain.BatchReport{}, err
	}
	a.logger.Debug("compositor ready", "font", comp.FontName())

	processor := usecase.NewProcessor(comp, cc.InputDir, cc.OutputDir, a.logger.With("component", "processor"))
	report, err := processor.Run(ctx)
	if err != nil || !opts.Watch {
		return report, err
	}

	watcher := watch.NewWatcher(cc.InputDir, 0, a.logger.With("component", "watcher"))
	err = watcher.Run(ctx, func(path string) {
		_ = processor.ProcessFile(path)
	})
	return report, err
}

// Post publishes the day's image once, or on every scheduler tick when daemon is set.
func (a *Application) Post(ctx context.Context, req usecase.PostRequest, daemon bool) (domain.RunReport, error) {
	if err := a.cfg.ValidateUploader(); err != nil {
		return domain.RunReport{}, err
	}

	deps := usecase.PosterDeps{
		Host:     hosting.NewGitHubRaw(a.cfg.Hosting, nil),
		Hashtags: a.cfg.Caption.Hashtags,
		Location: a.cfg.Scheduler.Location(),
		Logger:   a.logger.With("component", "poster"),
	}
	deps.Uploader = usecase.NewUploader(usecase.UploaderDeps{
		API:         graph.NewClient(a.cfg.Graph, nil),
		MaxAttempts: a.cfg.Upload.MaxAttempts,
		RetryDelay:  a.cfg.Upload.RetryDelay,
		SettleDelay: a.cfg.Upload.SettleDelay,
		Logger:      a.logger.With("component", "uploader"),
	})

	if a.cfg.History.Path != "" {
		history, err := storage.OpenSQLiteHistory(ctx, a.cfg.History.Path)
		if err != nil {
			a.logger.Warn("upload history unavailable", "path", a.cfg.History.Path, "error", err)
		} else {
			defer history.Close()
			deps.History = history
		}
	}

	if tg := a.cfg.Notifications.Telegram; tg.Enabled() {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	poster := usecase.NewPoster(deps)
	if !daemon {
		return poster.Run(ctx, req)
	}

	return domain.RunReport{}, a.runDaemon(ctx, scheduler.NewTickerScheduler(a.cfg.Scheduler.Interval), poster, req)
}

func (a *Application) runDaemon(ctx context.Context, driver ports.Scheduler, poster *usecase.Poster, req usecase.PostRequest) error {
	sched := usecase.NewScheduler(driver, poster, req, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("daemon started", "interval", a.cfg.Scheduler.Interval, "timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("daemon stopped")
	return nil
}

// History returns the most recent upload records.
func (a *Application) History(ctx context.Context, limit int) ([]domain.UploadRecord, error) {
	if a.cfg.History.Path == "" {
		return nil, ErrHistoryDisabled
	}

	history, err := storage.OpenSQLiteHistory(ctx, a.cfg.History.Path)
	if err != nil {
		return nil, err
	}
	defer history.Close()

	return history.Recent(ctx, limit)
}
