// Package config loads sitekit settings from SITEKIT_* environment variables
// and an optional sitekit.yaml.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joestump/sitekit/internal/consent"
	"github.com/joestump/sitekit/internal/pager"
)

// Storage backends for visitor preferences.
const (
	BackendSession = "session"
	BackendSQL     = "sql"
	BackendRedis   = "redis"
	BackendMemory  = "memory"
	BackendNone    = "none"
)

type Config struct {
	HTTP struct {
		Addr            string
		InsecureCookies bool
	}
	DB struct {
		Driver string
		DSN    string
	}
	Redis struct {
		URL string
		TTL time.Duration
	}
	Storage struct {
		Backend string
	}
	SessionLifetime time.Duration
	VisitorMaxAge   time.Duration
	CORSOrigins     []string
	LogLevel        string
	ReportBuffer    int
	DefaultTheme    string

	Pager   PagerConfig
	Consent ConsentConfig
}

// PagerConfig controls paginator sizing and button captions.
type PagerConfig struct {
	PageCountLimit    int
	AutoLimit         bool
	ApproxButtonWidth int
	// MaxPages caps page counts accepted from the paginator endpoints.
	MaxPages int
	// RefreshDelay is the client-side resize debounce, handed to the page.
	RefreshDelay     time.Duration
	Labels           pager.Labels
	QueryURLTemplate string
}

// Sizer returns the window sizing strategy.
func (p PagerConfig) Sizer() pager.Sizer {
	if p.AutoLimit {
		return pager.Auto{ApproxButtonWidth: p.ApproxButtonWidth, Fallback: p.PageCountLimit}
	}
	return pager.Fixed(p.PageCountLimit)
}

// ConsentConfig lists the consent categories shown in the banner.
type ConsentConfig struct {
	CompleteOnSave bool
	Categories     consent.Categories
}

// DefaultCategories follow the gtag consent mode keys.
func DefaultCategories() consent.Categories {
	return consent.Categories{
		{Key: "necessary", Group: []string{"functionality_storage", "security_storage"}, Exempt: true},
		{Key: "preferences", Group: []string{"personalization_storage"}},
		{Key: "analytics", Group: []string{"analytics_storage"}},
		{Key: "marketing", Group: []string{"ad_storage", "ad_user_data", "ad_personalization"}},
	}
}

// Load reads config from environment (SITEKIT_ prefix) and optional sitekit.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("sitekit")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file
	return load(v)
}

// LoadFile is Load with an explicit config file, which must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("SITEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.backend", BackendSession)
	v.SetDefault("session.lifetime", "720h")
	v.SetDefault("visitor.max_age", "8760h")
	v.SetDefault("redis.ttl", "8760h")
	v.SetDefault("log.level", "info")
	v.SetDefault("reports.buffer", 256)
	v.SetDefault("theme.default", "light")
	v.SetDefault("pager.page_count_limit", 5)
	v.SetDefault("pager.auto_limit", true)
	v.SetDefault("pager.approx_button_width", 90)
	v.SetDefault("pager.max_pages", 1000)
	v.SetDefault("pager.refresh_delay", "300ms")
	v.SetDefault("pager.query_url_template", pager.DefaultQueryURLTemplate)
	v.SetDefault("pager.button_names.first", "«")
	v.SetDefault("pager.button_names.prev", "‹")
	v.SetDefault("pager.button_names.next", "›")
	v.SetDefault("pager.button_names.last", "»")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.InsecureCookies = v.GetBool("http.insecure_cookies")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Redis.URL = v.GetString("redis.url")
	cfg.Storage.Backend = strings.ToLower(v.GetString("storage.backend"))
	cfg.CORSOrigins = v.GetStringSlice("cors.origins")
	cfg.LogLevel = v.GetString("log.level")
	cfg.ReportBuffer = v.GetInt("reports.buffer")
	cfg.DefaultTheme = v.GetString("theme.default")

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"session.lifetime", &cfg.SessionLifetime},
		{"visitor.max_age", &cfg.VisitorMaxAge},
		{"redis.ttl", &cfg.Redis.TTL},
		{"pager.refresh_delay", &cfg.Pager.RefreshDelay},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid SITEKIT_%s: %w", envName(d.key), err)
		}
		*d.dst = parsed
	}

	cfg.Pager.PageCountLimit = v.GetInt("pager.page_count_limit")
	cfg.Pager.AutoLimit = v.GetBool("pager.auto_limit")
	cfg.Pager.ApproxButtonWidth = v.GetInt("pager.approx_button_width")
	cfg.Pager.MaxPages = v.GetInt("pager.max_pages")
	cfg.Pager.QueryURLTemplate = v.GetString("pager.query_url_template")
	cfg.Pager.Labels = pager.Labels{
		First: v.GetString("pager.button_names.first"),
		Prev:  v.GetString("pager.button_names.prev"),
		Next:  v.GetString("pager.button_names.next"),
		Last:  v.GetString("pager.button_names.last"),
	}
	if cfg.Pager.PageCountLimit < 1 {
		return nil, fmt.Errorf("SITEKIT_PAGER_PAGE_COUNT_LIMIT must be at least 1")
	}
	if cfg.Pager.MaxPages < 1 {
		return nil, fmt.Errorf("SITEKIT_PAGER_MAX_PAGES must be at least 1")
	}
	if cfg.Pager.AutoLimit && cfg.Pager.ApproxButtonWidth < 1 {
		return nil, fmt.Errorf("SITEKIT_PAGER_APPROX_BUTTON_WIDTH must be at least 1 when auto_limit is set")
	}

	cfg.Consent.CompleteOnSave = v.GetBool("consent.complete_on_save")
	if v.IsSet("consent.categories") {
		if err := v.UnmarshalKey("consent.categories", &cfg.Consent.Categories); err != nil {
			return nil, fmt.Errorf("parse consent.categories: %w", err)
		}
	} else {
		cfg.Consent.Categories = DefaultCategories()
	}
	if err := cfg.Consent.Categories.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case BackendSession, BackendSQL, BackendMemory, BackendNone:
	case BackendRedis:
		if cfg.Redis.URL == "" {
			return nil, fmt.Errorf("SITEKIT_REDIS_URL is required for the redis storage backend")
		}
	default:
		return nil, fmt.Errorf("unsupported storage backend %q: must be session, sql, redis, memory, or none", cfg.Storage.Backend)
	}

	if cfg.NeedsDB() {
		if cfg.DB.Driver == "" {
			return nil, fmt.Errorf("SITEKIT_DB_DRIVER is required (sqlite3, mysql, postgres)")
		}
		if cfg.DB.DSN == "" {
			return nil, fmt.Errorf("SITEKIT_DB_DSN is required")
		}
	}

	return cfg, nil
}

// NeedsDB reports whether the chosen storage backend lives in the database.
// The report audit trail uses the database whenever one is configured.
func (c *Config) NeedsDB() bool {
	return c.Storage.Backend == BackendSession || c.Storage.Backend == BackendSQL
}

// HasDB reports whether a database is configured.
func (c *Config) HasDB() bool {
	return c.DB.Driver != "" && c.DB.DSN != ""
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
