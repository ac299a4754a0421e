// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Settings fall into four groups:

  - Infrastructure: HTTP port, PostgreSQL, Redis, migrations.
  - WordPress: site URL, installation root, uploads directory, built-in image sizes.
  - Imgix: domain, signing token, quality and automatic enhancement flags.
  - Editor: session lifetime and where materialized copies are written.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/mediagate/internal/platform/validate"
)

// # Configuration Schema

// Config holds all runtime configuration for the mediagate server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	// Relational Database (PostgreSQL) holding the attachment metadata.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) for editor sessions.
	RedisURL string `env:"REDIS_URL,required"`

	// WordPress installation
	SiteURL     string `env:"SITE_URL,required"`
	WPRoot      string `env:"WP_ROOT,required"`
	UploadsDir  string `env:"UPLOADS_DIR"  envDefault:"wp-content/uploads"`
	ProxyPrefix string `env:"PROXY_PREFIX" envDefault:"/wp-content/plugins/mediagate/proxy"`

	// Imgix source
	Imgix ImgixConfig

	// Built-in WordPress image sizes
	Sizes SizesConfig

	// ImageSizesFile is an optional YAML file declaring additional image sizes.
	ImageSizesFile string `env:"IMAGE_SIZES_FILE"`

	// Editor
	LocalMultiResize bool          `env:"LOCAL_MULTIRESIZE"  envDefault:"true"`
	LocalQuality     int           `env:"LOCAL_QUALITY"      envDefault:"90"`
	SessionTTL       time.Duration `env:"EDITOR_SESSION_TTL" envDefault:"30m"`

	// Materialization backend for editor output ("fs" or "s3").
	MaterializeBackend string `env:"MATERIALIZE_BACKEND" envDefault:"fs"`

	// Object Storage (S3-compatible)
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"     envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// ImgixConfig configures URL construction for the Imgix source.
type ImgixConfig struct {
	Domain string `env:"IMGIX_DOMAIN,required"`
	Token  string `env:"IMGIX_TOKEN"`
	HTTPS  bool   `env:"IMGIX_HTTPS" envDefault:"true"`

	RemoteQuality         int  `env:"REMOTE_QUALITY"         envDefault:"75"`
	AutomaticEnhancement  bool `env:"AUTOMATIC_ENHANCEMENT"  envDefault:"false"`
	AggressiveCompression bool `env:"AGGRESSIVE_COMPRESSION" envDefault:"true"`
	FormatNegotiation     bool `env:"FORMAT_NEGOTIATION"     envDefault:"true"`

	// Strict returns untranslatable paths unchanged instead of guessing.
	Strict bool `env:"STRICT" envDefault:"true"`

	// Performance selects how much of a page is scanned: "fast" or "thorough".
	Performance string `env:"PERFORMANCE" envDefault:"fast"`
}

// SizesConfig mirrors the WordPress media settings for the built-in sizes.
type SizesConfig struct {
	ThumbnailWidth  int  `env:"THUMBNAIL_SIZE_W" envDefault:"150"`
	ThumbnailHeight int  `env:"THUMBNAIL_SIZE_H" envDefault:"150"`
	ThumbnailCrop   bool `env:"THUMBNAIL_CROP"   envDefault:"true"`

	MediumWidth  int `env:"MEDIUM_SIZE_W" envDefault:"300"`
	MediumHeight int `env:"MEDIUM_SIZE_H" envDefault:"300"`

	MediumLargeWidth  int `env:"MEDIUM_LARGE_SIZE_W" envDefault:"768"`
	MediumLargeHeight int `env:"MEDIUM_LARGE_SIZE_H" envDefault:"0"`

	LargeWidth  int `env:"LARGE_SIZE_W" envDefault:"1024"`
	LargeHeight int `env:"LARGE_SIZE_H" envDefault:"1024"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// normalize clamps qualities and trims separators the way the settings page
// sanitizer does.
func (c *Config) normalize() {
	c.LocalQuality = clampQuality(c.LocalQuality)
	c.Imgix.RemoteQuality = clampQuality(c.Imgix.RemoteQuality)

	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
	c.UploadsDir = strings.Trim(c.UploadsDir, "/")
	c.ProxyPrefix = "/" + strings.Trim(c.ProxyPrefix, "/")
	c.Imgix.Domain = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(c.Imgix.Domain, "https://"), "http://"), "/")
	c.Imgix.Performance = strings.ToLower(strings.TrimSpace(c.Imgix.Performance))
	if c.Imgix.Performance == "thoroughly" {
		c.Imgix.Performance = "thorough"
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	v := &validate.Validator{}
	v.OneOf("PERFORMANCE", c.Imgix.Performance, "fast", "thorough").
		OneOf("MATERIALIZE_BACKEND", c.MaterializeBackend, "fs", "s3").
		Custom("S3_BUCKET", c.MaterializeBackend == "s3" && c.S3Bucket == "", "Required when MATERIALIZE_BACKEND is s3").
		Custom("EDITOR_SESSION_TTL", c.SessionTTL <= 0, "Must be a positive duration")
	return v.Err()
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns EXTRA_ORIGINS split on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func clampQuality(q int) int {
	return min(100, max(1, q))
}
