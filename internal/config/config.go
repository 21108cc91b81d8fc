package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "PHOTODAILY_CONFIG"
	dotEnvPath      = ".env"
	igUserIDEnv     = "IG_USER_ID"
	igTokenEnv      = "IG_ACCESS_TOKEN"
	graphBaseEnv    = "GRAPH_API_BASE"
	repoOwnerEnv    = "REPO_OWNER"
	repoNameEnv     = "REPO_NAME"
	repoBranchEnv   = "REPO_BRANCH"
	telegramToken   = "TELEGRAM_BOT_TOKEN"
	telegramChatID  = "TELEGRAM_CHAT_ID"
	historyPathEnv  = "PHOTODAILY_HISTORY"
	timezoneEnv     = "PHOTODAILY_TZ"
	logLevelEnv     = "LOG_LEVEL"
)

// ErrMissingSetting is returned when a required credential or identity value is absent.
var ErrMissingSetting = errors.New("missing required setting")

// Config holds high-level settings required across the application.
type Config struct {
	Graph         GraphConfig        `yaml:"graph"`
	Hosting       HostingConfig      `yaml:"hosting"`
	Upload        UploadConfig       `yaml:"upload"`
	Caption       CaptionConfig      `yaml:"caption"`
	Compositor    CompositorConfig   `yaml:"compositor"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	History       HistoryConfig      `yaml:"history"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// GraphConfig describes the vendor API account.
type GraphConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	UserID      string        `yaml:"userId"`
	AccessToken string        `yaml:"accessToken"`
	Timeout     time.Duration `yaml:"timeout"`
}

// HostingConfig locates the published images on raw.githubusercontent.com.
type HostingConfig struct {
	RawBaseURL string `yaml:"rawBaseUrl"`
	RepoOwner  string `yaml:"repoOwner"`
	RepoName   string `yaml:"repoName"`
	Branch     string `yaml:"branch"`
	Dir        string `yaml:"dir"`
}

// UploadConfig tunes the create/publish state machine.
type UploadConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
	SettleDelay time.Duration `yaml:"settleDelay"`
}

// CaptionConfig controls the generated caption template.
type CaptionConfig struct {
	Hashtags string `yaml:"hashtags"`
}

// CompositorConfig describes the watermark batch layout.
type CompositorConfig struct {
	InputDir    string  `yaml:"inputDir"`
	OutputDir   string  `yaml:"outputDir"`
	FontPath    string  `yaml:"fontPath"`
	TargetWidth int     `yaml:"targetWidth"`
	MarginRatio float64 `yaml:"marginRatio"`
	FontRatio   float64 `yaml:"fontRatio"`
	Quality     int     `yaml:"quality"`
}

// SchedulerConfig defines the daemon cadence and the clock used for "today".
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound report channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both bot token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// HistoryConfig points at the optional SQLite upload log.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present), the .env file and environment overrides.
// An explicit path wins over PHOTODAILY_CONFIG.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot read %s: %v", dotEnvPath, err)
	}

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg, nil
}

// ValidateUploader checks the settings the poster cannot run without.
func (c Config) ValidateUploader() error {
	var missing []string
	if c.Graph.UserID == "" {
		missing = append(missing, igUserIDEnv)
	}
	if c.Graph.AccessToken == "" {
		missing = append(missing, igTokenEnv)
	}
	if c.Hosting.RepoOwner == "" {
		missing = append(missing, repoOwnerEnv)
	}
	if c.Hosting.RepoName == "" {
		missing = append(missing, repoNameEnv)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env string
		dst *string
	}{
		{igUserIDEnv, &c.Graph.UserID},
		{igTokenEnv, &c.Graph.AccessToken},
		{graphBaseEnv, &c.Graph.BaseURL},
		{repoOwnerEnv, &c.Hosting.RepoOwner},
		{repoNameEnv, &c.Hosting.RepoName},
		{repoBranchEnv, &c.Hosting.Branch},
		{telegramToken, &c.Notifications.Telegram.BotToken},
		{telegramChatID, &c.Notifications.Telegram.ChatID},
		{historyPathEnv, &c.History.Path},
		{timezoneEnv, &c.Scheduler.Timezone},
		{logLevelEnv, &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	mergeString(&base.Graph.BaseURL, override.Graph.BaseURL)
	mergeString(&base.Graph.UserID, override.Graph.UserID)
	mergeString(&base.Graph.AccessToken, override.Graph.AccessToken)
	if override.Graph.Timeout > 0 {
		base.Graph.Timeout = override.Graph.Timeout
	}

	mergeString(&base.Hosting.RawBaseURL, override.Hosting.RawBaseURL)
	mergeString(&base.Hosting.RepoOwner, override.Hosting.RepoOwner)
	mergeString(&base.Hosting.RepoName, override.Hosting.RepoName)
	mergeString(&base.Hosting.Branch, override.Hosting.Branch)
	mergeString(&base.Hosting.Dir, override.Hosting.Dir)

	if override.Upload.MaxAttempts > 0 {
		base.Upload.MaxAttempts = override.Upload.MaxAttempts
	}
	if override.Upload.RetryDelay > 0 {
		base.Upload.RetryDelay = override.Upload.RetryDelay
	}
	if override.Upload.SettleDelay > 0 {
		base.Upload.SettleDelay = override.Upload.SettleDelay
	}

	mergeString(&base.Caption.Hashtags, override.Caption.Hashtags)

	mergeString(&base.Compositor.InputDir, override.Compositor.InputDir)
	mergeString(&base.Compositor.OutputDir, override.Compositor.OutputDir)
	mergeString(&base.Compositor.FontPath, override.Compositor.FontPath)
	if override.Compositor.TargetWidth > 0 {
		base.Compositor.TargetWidth = override.Compositor.TargetWidth
	}
	if override.Compositor.MarginRatio > 0 {
		base.Compositor.MarginRatio = override.Compositor.MarginRatio
	}
	if override.Compositor.FontRatio > 0 {
		base.Compositor.FontRatio = override.Compositor.FontRatio
	}
	if override.Compositor.Quality > 0 {
		base.Compositor.Quality = override.Compositor.Quality
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	mergeString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	mergeString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	mergeString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	mergeString(&base.History.Path, override.History.Path)
	mergeString(&base.Logging.Level, override.Logging.Level)

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Graph: GraphConfig{
			BaseURL: "https://graph.facebook.com/v18.0",
			Timeout: 30 * time.Second,
		},
		Hosting: HostingConfig{
			RawBaseURL: "https://raw.githubusercontent.com",
			Branch:     "main",
			Dir:        "ready_to_post",
		},
		Upload: UploadConfig{
			MaxAttempts: 3,
			RetryDelay:  5 * time.Second,
			SettleDelay: 10 * time.Second,
		},
		Caption: CaptionConfig{Hashtags: "#365project #dailyphoto"},
		Compositor: CompositorConfig{
			InputDir:    "raw_photos",
			OutputDir:   "ready_to_post",
			FontPath:    "fonts/Roboto-Bold.ttf",
			TargetWidth: 1080,
			MarginRatio: 0.15,
			FontRatio:   0.4,
			Quality:     95,
		},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
	}
}
