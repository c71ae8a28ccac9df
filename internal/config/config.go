// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SourceConfig struct {
	Name         string   `yaml:"name"`
	Tier         int      `yaml:"tier"`
	RoleCategory string   `yaml:"role_category"`
	Keywords     []string `yaml:"keywords"`
	Locations    []string `yaml:"locations"`
	TimeFilter   string   `yaml:"time_filter"`
	RecencyDays  int      `yaml:"recency_days"`
	//adapter-specific extras (greenhouse board tokens, api hosts)
	Boards  []string `yaml:"boards"`
	APIBase string   `yaml:"api_base"`
}

type StoreConfig struct {
	Backend     string `yaml:"backend"` //postgres | redis | file
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL    string `yaml:"redis_url" env:"REDIS_URL"`
	CachePath   string `yaml:"cache_path"`
}

type RetryConfig struct {
	Attempts  int `yaml:"attempts"`
	BackoffMs int `yaml:"backoff_ms"`
}

type PacingConfig struct {
	InterQueryMs   int         `yaml:"inter_query_ms"`
	InterMessageMs int         `yaml:"inter_message_ms"`
	TierDelaysSec  map[int]int `yaml:"tier_delays_s"`
}

type Config struct {
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	RunMode            string `yaml:"run_mode"` //preview | comprehensive
	PreviewLimit       int    `yaml:"preview_limit"`
	ComprehensiveLimit int    `yaml:"comprehensive_limit"`
	DeliveryCap        int    `yaml:"delivery_cap"`
	SweepEveryHours    int    `yaml:"sweep_every_hours"` //0 = one-shot

	Store  StoreConfig  `yaml:"store"`
	Retry  RetryConfig  `yaml:"retry"`
	Pacing PacingConfig `yaml:"pacing"`

	//relevance allow-list per role category
	RoleCategories map[string][]string `yaml:"role_categories"`
	//role category -> telegram chat id; "default" falls back to TelegramChatID
	Channels map[string]int64 `yaml:"channels"`

	Sources []SourceConfig `yaml:"sources"`

	//paths
	CookiesPath string `yaml:"cookies_path"`
}

func Load(path string) *Config {
	_ = godotenv.Load()

	if path == "" {
		path = "configs/config.yaml"
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: Could not read %s: %v", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", path, err)
		}
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Store.DatabaseURL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Store.RedisURL = redisURL
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	return cfg
}

// ApplyDefaults fills every tuning knob that was left unset. Exported so
// tests can build minimal configs without replaying the whole YAML file.
func (c *Config) ApplyDefaults() {
	if c.RunMode == "" {
		c.RunMode = "preview"
	}
	if c.PreviewLimit == 0 {
		c.PreviewLimit = 25
	}
	if c.ComprehensiveLimit == 0 {
		c.ComprehensiveLimit = 100
	}
	if c.DeliveryCap == 0 {
		c.DeliveryCap = 5
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.BackoffMs == 0 {
		c.Retry.BackoffMs = 400
	}
	if c.Pacing.InterQueryMs == 0 {
		c.Pacing.InterQueryMs = 4000
	}
	if c.Pacing.InterMessageMs == 0 {
		c.Pacing.InterMessageMs = 1000
	}
	if c.Pacing.TierDelaysSec == nil {
		//tier 1 short, tier 2 medium, tier 3 long
		c.Pacing.TierDelaysSec = map[int]int{1: 5, 2: 15, 3: 30}
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.CachePath == "" {
		c.Store.CachePath = ".cache"
	}
	if c.CookiesPath == "" {
		c.CookiesPath = ".cookies"
	}
}

// Validate fails fast on anything the run cannot proceed without.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	switch c.Store.Backend {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url (or DATABASE_URL) is required for the postgres backend")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url (or REDIS_URL) is required for the redis backend")
		}
	case "file":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.RunMode {
	case "preview", "comprehensive":
	default:
		return fmt.Errorf("unknown run_mode %q", c.RunMode)
	}
	for _, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source with empty name")
		}
		if s.Tier < 1 || s.Tier > 3 {
			return fmt.Errorf("source %s: tier must be 1..3, got %d", s.Name, s.Tier)
		}
		if len(s.Keywords) == 0 {
			return fmt.Errorf("source %s: at least one keyword is required", s.Name)
		}
	}
	return nil
}

// JobLimit resolves the per-query cap from the run mode.
func (c *Config) JobLimit() int {
	if c.RunMode == "comprehensive" {
		return c.ComprehensiveLimit
	}
	return c.PreviewLimit
}

// ChatFor returns the chat id configured for a role category, falling back
// to the default chat.
func (c *Config) ChatFor(category string) int64 {
	if id, ok := c.Channels[category]; ok && id != 0 {
		return id
	}
	if id, ok := c.Channels["default"]; ok && id != 0 {
		return id
	}
	return c.TelegramChatID
}
