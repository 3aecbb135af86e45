// Package config handles loading and managing application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Mercado Pago credentials
	Payments PaymentsConfig `yaml:"payments"`

	// PIX charge settings
	Pix PixConfig `yaml:"pix"`

	// Campaign being funded
	Campaign CampaignConfig `yaml:"campaign"`

	// Storage backends
	Storage StorageConfig `yaml:"storage"`

	// Terminal client settings
	Client ClientConfig `yaml:"client"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"` // "debug", "release", or "test"
}

// PaymentsConfig holds Mercado Pago configuration. An empty AccessToken
// selects the development gateway.
type PaymentsConfig struct {
	AccessToken     string `yaml:"access_token"`
	WebhookSecret   string `yaml:"webhook_secret"`
	NotificationURL string `yaml:"notification_url"`
}

// PixConfig holds PIX charge settings.
type PixConfig struct {
	Key          string `yaml:"key"`
	MerchantName string `yaml:"merchant_name"`
	MerchantCity string `yaml:"merchant_city"`
	TTLMinutes   int    `yaml:"ttl_minutes"`
}

// CampaignConfig identifies the campaign and its minimum contribution.
type CampaignConfig struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	MinAmountCents int    `yaml:"min_amount_cents"`
}

// StorageConfig selects the stores. An empty RedisURL keeps everything in
// process memory or on disk.
type StorageConfig struct {
	RedisURL   string `yaml:"redis_url"`
	HandoffDir string `yaml:"handoff_dir"`
}

// ClientConfig holds terminal client configuration.
type ClientConfig struct {
	APIURL     string `yaml:"api_url"`
	ForceOSC52 bool   `yaml:"force_osc52"` // skip the system clipboard
}

// TTL returns the PIX charge lifetime.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Pix.TTLMinutes) * time.Minute
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "debug",
		},
		Pix: PixConfig{
			MerchantName: "VAKINHA",
			MerchantCity: "SAO PAULO",
			TTLMinutes:   30,
		},
		Campaign: CampaignConfig{
			ID:             "default",
			MinAmountCents: 2500,
		},
		Storage: StorageConfig{
			HandoffDir: filepath.Join(os.TempDir(), "vakinha-checkout"),
		},
		Client: ClientConfig{
			APIURL: "http://localhost:8080",
		},
	}
}

// Load builds the configuration from the defaults, the YAML file named by
// CONFIG_FILE if set, and finally environment variables, each layer
// overriding the previous one.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)

	c.Payments.AccessToken = getEnv("MP_ACCESS_TOKEN", c.Payments.AccessToken)
	c.Payments.WebhookSecret = getEnv("MP_WEBHOOK_SECRET", c.Payments.WebhookSecret)
	c.Payments.NotificationURL = getEnv("MP_NOTIFICATION_URL", c.Payments.NotificationURL)

	c.Pix.Key = getEnv("PIX_KEY", c.Pix.Key)
	c.Pix.MerchantName = getEnv("PIX_MERCHANT_NAME", c.Pix.MerchantName)
	c.Pix.MerchantCity = getEnv("PIX_MERCHANT_CITY", c.Pix.MerchantCity)
	c.Pix.TTLMinutes = getEnvInt("PIX_TTL_MINUTES", c.Pix.TTLMinutes)

	c.Campaign.ID = getEnv("CAMPAIGN_ID", c.Campaign.ID)
	c.Campaign.Name = getEnv("CAMPAIGN_NAME", c.Campaign.Name)
	c.Campaign.MinAmountCents = getEnvInt("MIN_AMOUNT_CENTS", c.Campaign.MinAmountCents)

	c.Storage.RedisURL = getEnv("REDIS_URL", c.Storage.RedisURL)
	c.Storage.HandoffDir = getEnv("HANDOFF_DIR", c.Storage.HandoffDir)

	c.Client.APIURL = getEnv("CHECKOUT_API_URL", c.Client.APIURL)
	c.Client.ForceOSC52 = getEnvBool("CLIPBOARD_OSC52", c.Client.ForceOSC52)
}

// getEnv retrieves an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer with a fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean with a fallback.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
