package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assetutil.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("storage.driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "./data/assetutil.db" {
		t.Errorf("storage.path = %q, want ./data/assetutil.db", cfg.Storage.Path)
	}
	if cfg.Storage.Memgraph.Enabled {
		t.Error("memgraph should be disabled by default")
	}
	if cfg.Storage.Memgraph.URI != "bolt://localhost:7687" {
		t.Errorf("memgraph.uri = %q", cfg.Storage.Memgraph.URI)
	}
	if cfg.Storage.Redis.TTL != 5*time.Minute {
		t.Errorf("redis.ttl = %s, want 5m", cfg.Storage.Redis.TTL)
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("server.listen = %q, want :8080", cfg.Server.Listen)
	}
	if cfg.Server.ReadOnly {
		t.Error("server.read_only should be false by default")
	}
	if cfg.Server.MaxUploadBytes != 32<<20 {
		t.Errorf("server.max_upload_bytes = %d", cfg.Server.MaxUploadBytes)
	}
	if !cfg.Alerts.Stdout.Enabled {
		t.Error("alerts.stdout.enabled should be true by default")
	}
	if cfg.Maintenance.ReminderInterval != "15m" || cfg.Maintenance.ReminderHorizon != "24h" {
		t.Errorf("maintenance = %+v", cfg.Maintenance)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: postgres
  dsn: postgres://assetutil@localhost/assetutil
  redis:
    enabled: true
    addr: cache:6379
    ttl: 30s
blob:
  driver: s3
  bucket: attachments
  endpoint: http://minio:9000
alerts:
  kafka:
    enabled: true
    brokers: [kafka-1:9092, kafka-2:9092]
server:
  read_only: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN == "" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if !cfg.Storage.Redis.Enabled || cfg.Storage.Redis.TTL != 30*time.Second {
		t.Errorf("redis = %+v", cfg.Storage.Redis)
	}
	if cfg.Blob.Driver != "s3" || cfg.Blob.Endpoint != "http://minio:9000" {
		t.Errorf("blob = %+v", cfg.Blob)
	}
	if len(cfg.Alerts.Kafka.Brokers) != 2 || cfg.Alerts.Kafka.Topic != "assetutil.alerts" {
		t.Errorf("kafka = %+v", cfg.Alerts.Kafka)
	}
	if !cfg.Server.ReadOnly {
		t.Error("server.read_only should be true")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ASSETUTIL_SERVER_LISTEN", ":9090")
	t.Setenv("ASSETUTIL_STORAGE_DRIVER", "memory")

	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Listen != ":9090" {
		t.Errorf("server.listen = %q, want :9090", cfg.Server.Listen)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("storage.driver = %q, want memory", cfg.Storage.Driver)
	}
}

func TestLoad_ExpandsSecrets(t *testing.T) {
	t.Setenv("ASSETUTIL_TEST_TOKEN", "my-secret-token")
	t.Setenv("ASSETUTIL_WEBHOOK_KEY", "secret-key")

	cfg, err := Load(writeConfig(t, `
server:
  api_token: ${ASSETUTIL_TEST_TOKEN}
alerts:
  webhook:
    enabled: true
    url: http://hooks.local/alerts
    headers:
      X-API-Key: ${ASSETUTIL_WEBHOOK_KEY}
      Static: value
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.APIToken != "my-secret-token" {
		t.Errorf("api_token = %q, want my-secret-token", cfg.Server.APIToken)
	}
	// viper lower-cases map keys
	if cfg.Alerts.Webhook.Headers["x-api-key"] != "secret-key" {
		t.Errorf("headers = %v", cfg.Alerts.Webhook.Headers)
	}
	if cfg.Alerts.Webhook.Headers["static"] != "value" {
		t.Errorf("Static = %q, want value", cfg.Alerts.Webhook.Headers["static"])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown storage driver", "storage:\n  driver: mongo\n"},
		{"postgres without dsn", "storage:\n  driver: postgres\n"},
		{"s3 without bucket", "blob:\n  driver: s3\n"},
		{"unknown blob driver", "blob:\n  driver: ftp\n"},
		{"webhook without url", "alerts:\n  webhook:\n    enabled: true\n"},
		{"kafka without brokers", "alerts:\n  kafka:\n    enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}
