package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StorefrontConfig is runtime-tunable presentation configuration. It lives
// in an optional storefront.yml and can be edited without a restart.
type StorefrontConfig struct {
	DefaultLocale     string        `mapstructure:"defaultLocale"`
	Locales           []string      `mapstructure:"locales"`
	Currency          string        `mapstructure:"currency"`
	LowStockThreshold int           `mapstructure:"lowStockThreshold"`
	RevenueWindow     time.Duration `mapstructure:"revenueWindow"`
}

func DefaultStorefrontConfig() StorefrontConfig {
	return StorefrontConfig{
		DefaultLocale:     "en",
		Locales:           []string{"en", "hi", "kn"},
		Currency:          "INR",
		LowStockThreshold: 5,
		RevenueWindow:     24 * time.Hour,
	}
}

// StorefrontConfigHolder exposes the current StorefrontConfig and swaps it
// atomically when the backing file changes.
type StorefrontConfigHolder struct {
	current atomic.Value // holds StorefrontConfig
}

func NewStorefrontConfigHolder() (*StorefrontConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("storefront")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/greenmandi")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GREENMANDI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultStorefrontConfig()
		v.SetDefault("storefront.defaultLocale", defaults.DefaultLocale)
		v.SetDefault("storefront.locales", defaults.Locales)
		v.SetDefault("storefront.currency", defaults.Currency)
		v.SetDefault("storefront.lowStockThreshold", defaults.LowStockThreshold)
		v.SetDefault("storefront.revenueWindow", defaults.RevenueWindow)
	}

	var cfg StorefrontConfig
	if err := v.UnmarshalKey("storefront", &cfg); err != nil {
		return nil, err
	}
	if err := validateStorefrontConfig(cfg); err != nil {
		return nil, err
	}

	holder := &StorefrontConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StorefrontConfig
		if err := v.UnmarshalKey("storefront", &updated); err != nil {
			log.Printf("[storefront-config] reload failed: %v", err)
			return
		}
		if err := validateStorefrontConfig(updated); err != nil {
			log.Printf("[storefront-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[storefront-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *StorefrontConfigHolder) Current() StorefrontConfig {
	if h == nil {
		return DefaultStorefrontConfig()
	}
	if cfg, ok := h.current.Load().(StorefrontConfig); ok {
		return cfg
	}
	return DefaultStorefrontConfig()
}

func validateStorefrontConfig(cfg StorefrontConfig) error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return errors.New("storefront config requires a default locale")
	}
	if len(cfg.Locales) == 0 {
		return errors.New("storefront config requires at least one locale")
	}
	found := false
	for _, locale := range cfg.Locales {
		if locale == cfg.DefaultLocale {
			found = true
			break
		}
	}
	if !found {
		return errors.New("default locale must be listed in locales")
	}
	if cfg.LowStockThreshold < 0 {
		return errors.New("low stock threshold must not be negative")
	}
	if cfg.RevenueWindow <= 0 {
		return errors.New("revenue window must be positive")
	}
	return nil
}
