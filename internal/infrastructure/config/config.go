package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration errors
var (
	ErrMissingPrimaryAPIKey = errors.New("config: holded primary api key is required")
	ErrInvalidDocType       = errors.New("config: invalid holded document type")
	ErrSiteMissingPrefix    = errors.New("config: site prefix is required")
	ErrSiteMissingBaseURL   = errors.New("config: site base url is required")
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	Holded   HoldedConfig
	Routing  RoutingConfig
	Sync     SyncConfig
	Sites    []SiteConfig
	CardPay  CardPayConfig
	Bookings BookingsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HoldedConfig holds credentials and settings for the destination ledger.
// SecondaryAPIKey is optional; when empty only the primary account is synced.
type HoldedConfig struct {
	PrimaryAPIKey   string
	SecondaryAPIKey string
	BaseURL         string
	DocType         string // invoice, salesreceipt, creditnote
	PageSize        int
	Timeout         time.Duration
}

// RoutingConfig decides which ledger account receives each SKU
type RoutingConfig struct {
	SecondarySKUs []string // SKUs routed to the secondary account
	ExcludedSKUs  []string // SKUs never synced anywhere
}

// SyncConfig holds batch pacing and tax fallbacks
type SyncConfig struct {
	ProductDelay   time.Duration // pause between product writes
	DocumentDelay  time.Duration // pause between document writes
	DefaultVATRate float64       // fallback when no other rate resolves
}

// SiteConfig describes one storefront source
type SiteConfig struct {
	Prefix           string  `mapstructure:"prefix"`
	BaseURL          string  `mapstructure:"base_url"`
	ConsumerKey      string  `mapstructure:"consumer_key"`
	ConsumerSecret   string  `mapstructure:"consumer_secret"`
	VATRate          float64 `mapstructure:"vat_rate"`
	PricesIncludeTax bool    `mapstructure:"prices_include_tax"`
}

// CardPayConfig describes the card-payment processor source
type CardPayConfig struct {
	Enabled    bool
	BaseURL    string
	APIKey     string
	SitePrefix string
	DefaultSKU string // SKU assigned to charges without a catalog reference
}

// BookingsConfig describes the booking subsystem source
type BookingsConfig struct {
	Enabled      bool
	BaseURL      string
	APIKey       string
	SitePrefix   string
	SalesChannel string // destination sales channel hint attached to bookings
}

// Load loads configuration from a TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with HOLDED_SYNC_ prefix (e.g. HOLDED_SYNC_HOLDED_PRIMARY_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/holded-sync")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("HOLDED_SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Holded: HoldedConfig{
			PrimaryAPIKey:   v.GetString("holded.primary_api_key"),
			SecondaryAPIKey: v.GetString("holded.secondary_api_key"),
			BaseURL:         v.GetString("holded.base_url"),
			DocType:         v.GetString("holded.doc_type"),
			PageSize:        v.GetInt("holded.page_size"),
			Timeout:         v.GetDuration("holded.timeout"),
		},
		Routing: RoutingConfig{
			SecondarySKUs: v.GetStringSlice("routing.secondary_skus"),
			ExcludedSKUs:  v.GetStringSlice("routing.excluded_skus"),
		},
		Sync: SyncConfig{
			ProductDelay:   v.GetDuration("sync.product_delay"),
			DocumentDelay:  v.GetDuration("sync.document_delay"),
			DefaultVATRate: v.GetFloat64("sync.default_vat_rate"),
		},
		CardPay: CardPayConfig{
			Enabled:    v.GetBool("cardpay.enabled"),
			BaseURL:    v.GetString("cardpay.base_url"),
			APIKey:     v.GetString("cardpay.api_key"),
			SitePrefix: v.GetString("cardpay.site_prefix"),
			DefaultSKU: v.GetString("cardpay.default_sku"),
		},
		Bookings: BookingsConfig{
			Enabled:      v.GetBool("bookings.enabled"),
			BaseURL:      v.GetString("bookings.base_url"),
			APIKey:       v.GetString("bookings.api_key"),
			SitePrefix:   v.GetString("bookings.site_prefix"),
			SalesChannel: v.GetString("bookings.sales_channel"),
		},
	}

	if err := v.UnmarshalKey("sites", &cfg.Sites); err != nil {
		return nil, fmt.Errorf("error parsing sites: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "holded-sync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Holded.BaseURL == "" {
		cfg.Holded.BaseURL = "https://api.holded.com/api/invoicing/v1"
	}
	if cfg.Holded.DocType == "" {
		cfg.Holded.DocType = "invoice"
	}
	if cfg.Holded.PageSize == 0 {
		cfg.Holded.PageSize = 100
	}
	if cfg.Holded.Timeout == 0 {
		cfg.Holded.Timeout = 30 * time.Second
	}
	if cfg.Sync.ProductDelay == 0 {
		cfg.Sync.ProductDelay = 300 * time.Millisecond
	}
	if cfg.Sync.DocumentDelay == 0 {
		cfg.Sync.DocumentDelay = time.Second
	}
	if cfg.Sync.DefaultVATRate == 0 {
		cfg.Sync.DefaultVATRate = 21
	}
	if cfg.CardPay.DefaultSKU == "" {
		cfg.CardPay.DefaultSKU = "TPV"
	}
}

// validate checks configuration consistency
func (c *Config) validate() error {
	if c.Holded.PrimaryAPIKey == "" {
		return ErrMissingPrimaryAPIKey
	}
	switch c.Holded.DocType {
	case "invoice", "salesreceipt", "creditnote":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDocType, c.Holded.DocType)
	}
	for _, site := range c.Sites {
		if site.Prefix == "" {
			return ErrSiteMissingPrefix
		}
		if site.BaseURL == "" {
			return fmt.Errorf("%w: site %q", ErrSiteMissingBaseURL, site.Prefix)
		}
	}
	return nil
}
