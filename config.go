package inkwell

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// SiteConfig holds all configuration for an inkwell site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "Blog")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for RSS and meta tags
	Author      string `toml:"author"`      // Default author for posts and JSON-LD

	Addr         string `toml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `toml:"database_path"` // SQLite path (default "data/site.db")
	ContentDir   string `toml:"content_dir"`   // Markdown content root (default "content")
	WatchContent bool   `toml:"watch_content"` // Re-sync when content files change

	AdminPassword string `toml:"-"` // Required: admin login password (env only)
	SessionSecret string `toml:"-"` // Required: session encryption secret (env only)
	CookieSecure  bool   `toml:"cookie_secure"`

	CacheTTL duration `toml:"cache_ttl"` // Content cache TTL (default 5min)
}

// duration wraps time.Duration so TOML files can say cache_ttl = "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.CacheTTL.Duration == 0 {
		c.CacheTTL.Duration = 5 * time.Minute
	}
}

// LoadConfig reads a TOML config file and applies environment overrides.
// A missing file is not an error: env vars and defaults still apply.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("inkwell: parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

// applyEnv overrides config values from environment variables. Secrets are
// never read from the TOML file.
func (c *SiteConfig) applyEnv() {
	if v := os.Getenv("SITE_NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("SITE_DESCRIPTION"); v != "" {
		c.Description = v
	}
	if v := os.Getenv("SITE_AUTHOR"); v != "" {
		c.Author = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("CONTENT_DIR"); v != "" {
		c.ContentDir = v
	}
	c.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	c.SessionSecret = os.Getenv("ADMIN_SESSION_SECRET")
	if strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true") {
		c.CookieSecure = true
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
