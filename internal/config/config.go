// Package config loads assetutil settings from a YAML file, ASSETUTIL_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Storage     StorageConfig     `mapstructure:"storage"`
	Blob        BlobConfig        `mapstructure:"blob"`
	Server      ServerConfig      `mapstructure:"server"`
	Alerts      AlertsConfig      `mapstructure:"alerts"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Cloud       CloudConfig       `mapstructure:"cloud"`
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver"` // memory, sqlite, postgres
	Path     string         `mapstructure:"path"`
	DSN      string         `mapstructure:"dsn"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Memgraph MemgraphConfig `mapstructure:"memgraph"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type MemgraphConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type BlobConfig struct {
	Driver    string `mapstructure:"driver"` // fs, s3; empty disables uploads
	Path      string `mapstructure:"path"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type ServerConfig struct {
	Listen         string `mapstructure:"listen"`
	ReadOnly       bool   `mapstructure:"read_only"`
	APIToken       string `mapstructure:"api_token"`
	CORSOrigin     string `mapstructure:"cors_origin"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	RateLimit      int    `mapstructure:"rate_limit"`
}

type AlertsConfig struct {
	Stdout  StdoutConfig  `mapstructure:"stdout"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

type StdoutConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type WebhookConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type MaintenanceConfig struct {
	RemindersEnabled bool   `mapstructure:"reminders_enabled"`
	ReminderInterval string `mapstructure:"reminder_interval"`
	ReminderHorizon  string `mapstructure:"reminder_horizon"`
}

type CloudConfig struct {
	AWSEndpoint string `mapstructure:"aws_endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "./data/assetutil.db")
	v.SetDefault("storage.redis.enabled", false)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.ttl", 5*time.Minute)
	v.SetDefault("storage.memgraph.enabled", false)
	v.SetDefault("storage.memgraph.uri", "bolt://localhost:7687")
	v.SetDefault("blob.driver", "fs")
	v.SetDefault("blob.path", "./data/blobs")
	v.SetDefault("blob.region", "us-east-1")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_only", false)
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("alerts.stdout.enabled", true)
	v.SetDefault("alerts.kafka.topic", "assetutil.alerts")
	v.SetDefault("maintenance.reminders_enabled", true)
	v.SetDefault("maintenance.reminder_interval", "15m")
	v.SetDefault("maintenance.reminder_horizon", "24h")
}

// Load reads the configuration from file and environment variables. With an
// empty cfgFile, assetutil.yaml is looked up in ~/.assetutil and the
// working directory; a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".assetutil"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("assetutil")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ASSETUTIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.expandSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandSecrets resolves ${VAR} references in credential fields.
func (c *Config) expandSecrets() {
	c.Storage.DSN = os.ExpandEnv(c.Storage.DSN)
	c.Storage.Redis.Password = os.ExpandEnv(c.Storage.Redis.Password)
	c.Storage.Memgraph.Password = os.ExpandEnv(c.Storage.Memgraph.Password)
	c.Blob.AccessKey = os.ExpandEnv(c.Blob.AccessKey)
	c.Blob.SecretKey = os.ExpandEnv(c.Blob.SecretKey)
	c.Server.APIToken = os.ExpandEnv(c.Server.APIToken)
	for k, val := range c.Alerts.Webhook.Headers {
		c.Alerts.Webhook.Headers[k] = os.ExpandEnv(val)
	}
}

// Validate checks enumerations and the fields each driver needs.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q (use: memory, sqlite, postgres)", c.Storage.Driver)
	}

	switch c.Blob.Driver {
	case "", "fs":
	case "s3":
		if c.Blob.Bucket == "" {
			return fmt.Errorf("blob.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown blob.driver %q (use: fs, s3)", c.Blob.Driver)
	}

	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		return fmt.Errorf("alerts.webhook.url is required when the webhook is enabled")
	}
	if c.Alerts.Kafka.Enabled && len(c.Alerts.Kafka.Brokers) == 0 {
		return fmt.Errorf("alerts.kafka.brokers is required when kafka alerts are enabled")
	}
	return nil
}
