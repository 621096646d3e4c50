package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"NewsCatcher/internal/domain"
)

const (
	defaultTimezone = "Asia/Shanghai"
	configPathEnv   = "NEWSCATCHER_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
	redisURLEnv     = "REDIS_URL"
	llmAPIKeyEnv    = "LLM_API_KEY"
	llmBaseURLEnv   = "LLM_BASE_URL"
	llmModelEnv     = "LLM_MODEL"
	feishuURLEnv    = "FEISHU_WEBHOOK_URL"
	feishuSecretEnv = "FEISHU_WEBHOOK_SECRET"
	logLevelEnv     = "LOG_LEVEL"
	logFormatEnv    = "LOG_FORMAT"
	snapshotDirEnv  = "SNAPSHOT_DIR"
)

// ErrInvalidConfig marks a configuration that cannot drive a run.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Sites         []SiteConfig       `yaml:"sites"`
	Taxonomy      []TaxonomyConfig   `yaml:"taxonomy"`
	Extended      []TaxonomyConfig   `yaml:"extendedTaxonomy"`
	LLM           LLMConfig          `yaml:"llm"`
	Notifications NotificationConfig `yaml:"notifications"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Snapshot      SnapshotConfig     `yaml:"snapshot"`
}

// LoggingConfig selects slog level/format and whether spans are exported.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Tracing bool   `yaml:"tracing"`
}

// SchedulerConfig defines when the daily run fires.
type SchedulerConfig struct {
	DailyAt  string         `yaml:"dailyAt"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PipelineConfig bounds output volume, freshness and provider pacing.
type PipelineConfig struct {
	MaxPerLabel       int           `yaml:"maxPerLabel"`
	MaxTotal          int           `yaml:"maxTotal"`
	MaxAgeDays        int           `yaml:"maxAgeDays"`
	FundingMaxAgeDays int           `yaml:"fundingMaxAgeDays"`
	ProviderDelay     time.Duration `yaml:"providerDelay"`
	ProviderTimeout   time.Duration `yaml:"providerTimeout"`
	FeedCacheTTL      time.Duration `yaml:"feedCacheTTL"`
}

// SiteConfig describes a single site with its scanner strategy.
// Listing sites are pulled once per run instead of once per label.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Listing    bool              `yaml:"listing"`
	Disabled   bool              `yaml:"disabled"`
	Delay      time.Duration     `yaml:"delay"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds the concrete endpoint of a site (feed URL, listing page, search template).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// TaxonomyConfig is one label with its keywords.
type TaxonomyConfig struct {
	Label    string   `yaml:"label"`
	Glyph    string   `yaml:"glyph"`
	Keywords []string `yaml:"keywords"`
}

// LLMConfig defines how to contact an OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL      string  `yaml:"baseUrl"`
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"apiKey"`
	SystemPrompt string  `yaml:"systemPrompt"`
	MaxTokens    int64   `yaml:"maxTokens"`
	Temperature  float64 `yaml:"temperature"`
}

// Enabled reports whether digests should be requested from the model.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Feishu FeishuConfig `yaml:"feishu"`
}

// FeishuConfig wires the custom bot webhook.
type FeishuConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
	Secret     string `yaml:"secret"`
}

// DatabaseConfig describes the optional Postgres seen-store.
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// RedisConfig describes the optional Redis seen-store.
type RedisConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

// SnapshotConfig points at the directory for JSON run snapshots. Empty disables them.
type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads YAML configuration (if present), applies environment overrides and validates the result.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	p := c.Pipeline
	if p.MaxPerLabel <= 0 || p.MaxTotal <= 0 {
		return fmt.Errorf("%w: maxPerLabel and maxTotal must be positive", ErrInvalidConfig)
	}
	if p.MaxAgeDays < 0 || p.FundingMaxAgeDays < 0 {
		return fmt.Errorf("%w: age windows must not be negative", ErrInvalidConfig)
	}
	if p.ProviderDelay < 0 || p.ProviderTimeout < 0 {
		return fmt.Errorf("%w: provider delay and timeout must not be negative", ErrInvalidConfig)
	}

	names := map[string]struct{}{}
	for i, site := range c.Sites {
		if strings.TrimSpace(site.Name) == "" || strings.TrimSpace(site.Scanner) == "" {
			return fmt.Errorf("%w: site #%d needs name and scanner", ErrInvalidConfig, i+1)
		}
		if _, dup := names[site.Name]; dup {
			return fmt.Errorf("%w: duplicate site %s", ErrInvalidConfig, site.Name)
		}
		names[site.Name] = struct{}{}
	}

	if _, err := time.Parse("15:04", c.Scheduler.DailyAt); err != nil {
		return fmt.Errorf("%w: dailyAt %q is not HH:MM", ErrInvalidConfig, c.Scheduler.DailyAt)
	}

	if _, err := c.BuildTaxonomy(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// BuildTaxonomy returns the configured label table or the built-in one.
func (c Config) BuildTaxonomy() (domain.Taxonomy, error) {
	if len(c.Taxonomy) == 0 {
		return domain.DefaultTaxonomy(), nil
	}
	return domain.NewTaxonomy(toEntries(c.Taxonomy), toEntries(c.Extended))
}

func toEntries(cfg []TaxonomyConfig) []domain.TaxonomyEntry {
	entries := make([]domain.TaxonomyEntry, 0, len(cfg))
	for _, t := range cfg {
		entries = append(entries, domain.TaxonomyEntry{Label: t.Label, Glyph: t.Glyph, Keywords: t.Keywords})
	}
	return entries
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{databaseDSNEnv, &c.Database.DSN},
		{redisURLEnv, &c.Redis.URL},
		{llmAPIKeyEnv, &c.LLM.APIKey},
		{llmBaseURLEnv, &c.LLM.BaseURL},
		{llmModelEnv, &c.LLM.Model},
		{feishuURLEnv, &c.Notifications.Feishu.WebhookURL},
		{feishuSecretEnv, &c.Notifications.Feishu.Secret},
		{logLevelEnv, &c.Logging.Level},
		{logFormatEnv, &c.Logging.Format},
		{snapshotDirEnv, &c.Snapshot.Dir},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
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
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Scheduler: SchedulerConfig{DailyAt: "08:00", Timezone: defaultTimezone},
		Pipeline: PipelineConfig{
			MaxPerLabel:       5,
			MaxTotal:          50,
			MaxAgeDays:        3,
			FundingMaxAgeDays: 7,
			ProviderDelay:     1500 * time.Millisecond,
			ProviderTimeout:   15 * time.Second,
			FeedCacheTTL:      10 * time.Minute,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   500,
			Temperature: 0.3,
		},
		Database: DatabaseConfig{Table: "seen_items"},
		Redis:    RedisConfig{TTL: 7 * 24 * time.Hour},
		Snapshot: SnapshotConfig{Dir: "output"},
		Sites: []SiteConfig{
			{Name: "百度新闻", Scanner: "baidu"},
			{Name: "必应新闻", Scanner: "bing"},
			{Name: "搜狗新闻", Scanner: "sogou"},
			{Name: "科技RSS", Scanner: "rss"},
			{Name: "投资界融资", Scanner: "pedaily-funding", Listing: true},
			{Name: "投资界IPO", Scanner: "pedaily-ipo", Listing: true},
		},
	}
}
