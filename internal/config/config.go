package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/inamate/canvas-go/internal/document"
)

type Config struct {
	Port              int    `envconfig:"PORT" default:"8080"`
	DatabaseURL       string `envconfig:"DATABASE_URL"`
	JWTSecret         string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`
	AssetDir          string `envconfig:"ASSET_DIR" default:"./data/assets"`
	FfmpegPath        string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	AllowedOrigins    string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	DefaultWidth      int    `envconfig:"DEFAULT_WIDTH" default:"640"`
	DefaultHeight     int    `envconfig:"DEFAULT_HEIGHT" default:"480"`
	MaxWidth          int    `envconfig:"MAX_WIDTH" default:"4096"`
	MaxHeight         int    `envconfig:"MAX_HEIGHT" default:"4096"`
	MaxFrames         int    `envconfig:"MAX_FRAMES" default:"3600"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.DefaultWidth <= 0 || cfg.DefaultHeight <= 0 {
		return nil, fmt.Errorf("default canvas size %dx%d must be positive", cfg.DefaultWidth, cfg.DefaultHeight)
	}
	if cfg.MaxWidth < cfg.DefaultWidth || cfg.MaxHeight < cfg.DefaultHeight {
		return nil, fmt.Errorf("max canvas size %dx%d is below the default %dx%d", cfg.MaxWidth, cfg.MaxHeight, cfg.DefaultWidth, cfg.DefaultHeight)
	}
	if cfg.MaxFrames <= 0 {
		return nil, fmt.Errorf("MAX_FRAMES must be positive, got %d", cfg.MaxFrames)
	}
	return &cfg, nil
}

// Limits returns the render limits for scene documents.
func (c *Config) Limits() document.Limits {
	return document.Limits{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight, MaxFrames: c.MaxFrames}
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts returns the origins without their scheme, as websocket
// origin patterns expect.
func (c *Config) OriginHosts() []string {
	origins := c.Origins()
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, rest, ok := strings.Cut(o, "://"); ok {
			o = rest
		}
		hosts = append(hosts, o)
	}
	return hosts
}

// Level maps LogLevel onto a slog level. Unknown values mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
