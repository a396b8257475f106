package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "SHELF"
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultDatabasePath   = "shelf.db"
	defaultLogLevel       = "info"
	defaultKeyTTLHours    = 24 * 365
	defaultStoreURL       = "http://localhost:8080"
	defaultStoreTimeout   = 15
	defaultViewPageSize   = 10
	minimumSigningKeySize = 16
)

// AppConfig captures runtime configuration for the store API server.
type AppConfig struct {
	HTTPAddress   string
	SigningSecret string
	KeyTTL        time.Duration
	DatabasePath  string
	LogLevel      string
}

// ClientConfig captures runtime configuration for the terminal client.
type ClientConfig struct {
	StoreURL     string
	StoreAPIKey  string
	StoreTimeout time.Duration
	PageSize     int
	LogLevel     string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("auth.key_ttl_hours", defaultKeyTTLHours)
	configViper.SetDefault("store.url", defaultStoreURL)
	configViper.SetDefault("store.timeout_seconds", defaultStoreTimeout)
	configViper.SetDefault("view.page_size", defaultViewPageSize)
}

// Load parses server configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:   configViper.GetString("http.address"),
		SigningSecret: configViper.GetString("auth.signing_secret"),
		KeyTTL:        time.Duration(configViper.GetInt("auth.key_ttl_hours")) * time.Hour,
		DatabasePath:  configViper.GetString("database.path"),
		LogLevel:      configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// LoadClient parses terminal client configuration from viper.
func LoadClient(configViper *viper.Viper) (ClientConfig, error) {
	cfg := ClientConfig{
		StoreURL:     strings.TrimRight(configViper.GetString("store.url"), "/"),
		StoreAPIKey:  configViper.GetString("store.api_key"),
		StoreTimeout: time.Duration(configViper.GetInt("store.timeout_seconds")) * time.Second,
		PageSize:     configViper.GetInt("view.page_size"),
		LogLevel:     configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if len(c.SigningSecret) < minimumSigningKeySize {
		return fmt.Errorf("auth.signing_secret must be at least %d bytes", minimumSigningKeySize)
	}
	if c.KeyTTL <= 0 {
		return fmt.Errorf("auth.key_ttl_hours must be positive")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

func (c ClientConfig) validate() error {
	if strings.TrimSpace(c.StoreURL) == "" {
		return fmt.Errorf("store.url is required")
	}
	if strings.TrimSpace(c.StoreAPIKey) == "" {
		return fmt.Errorf("store.api_key is required")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("store.timeout_seconds must be positive")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("view.page_size must be at least 1")
	}
	return nil
}
