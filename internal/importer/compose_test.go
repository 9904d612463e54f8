package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matijazezelj/assetutil/pkg/models"
)

const testCompose = `
services:
  web:
    image: nginx:1.25
    ports: ["80:80"]
    depends_on: [api]
    networks: [frontend]
    volumes:
      - static:/usr/share/nginx/html
      - ./conf:/etc/nginx/conf.d
  api:
    image: ghcr.io/acme/api:2.1
    depends_on:
      db:
        condition: service_healthy
      cache:
        condition: service_started
    networks:
      frontend: {}
      backend: {}
  db:
    image: docker.io/library/postgres:16-alpine
    volumes: [pgdata:/var/lib/postgresql/data]
  cache:
    image: redis:7
volumes:
  static: {}
  pgdata: {}
`

func TestParseCompose(t *testing.T) {
	p, err := ParseCompose([]byte(testCompose), "shop")
	if err != nil {
		t.Fatal(err)
	}

	if len(p.Assets) != 4 {
		t.Fatalf("assets = %d, want 4", len(p.Assets))
	}

	byKey := make(map[string]models.AssetInput)
	for _, a := range p.Assets {
		byKey[a.Key] = a.Input
	}

	tests := []struct {
		key, wantType string
	}{
		{"web", "proxy"},
		{"api", "service"},
		{"db", "database"},
		{"cache", "cache"},
	}
	for _, tt := range tests {
		if got := byKey[tt.key].Type; got != tt.wantType {
			t.Errorf("%s type = %q, want %q", tt.key, got, tt.wantType)
		}
	}

	web := byKey["web"]
	if web.Location != "compose/shop" {
		t.Errorf("web location = %q", web.Location)
	}
	if web.Configuration["image"] != "nginx:1.25" {
		t.Errorf("web image = %v", web.Configuration["image"])
	}
	vols, _ := web.Configuration["volumes"].([]string)
	if len(vols) != 1 || vols[0] != "static" {
		t.Errorf("web volumes = %v, want [static]", vols)
	}
	if err := web.Validate(); err != nil {
		t.Errorf("planned input should validate: %v", err)
	}

	edges := make(map[string]bool)
	for _, d := range p.Dependencies {
		if d.Type != models.DependencyDependsOn || d.Impact != models.LevelHigh {
			t.Errorf("dependency %+v should be depends-on/high", d)
		}
		edges[d.Source+"->"+d.Target] = true
	}
	for _, want := range []string{"web->api", "api->db", "api->cache"} {
		if !edges[want] {
			t.Errorf("missing dependency %s", want)
		}
	}
	if len(p.Dependencies) != 3 {
		t.Errorf("dependencies = %d, want 3", len(p.Dependencies))
	}
}

func TestParseCompose_ProjectName(t *testing.T) {
	p, err := ParseCompose([]byte("name: billing\nservices:\n  worker:\n    build: .\n"), "dir")
	if err != nil {
		t.Fatal(err)
	}
	if p.Assets[0].Input.Location != "compose/billing" {
		t.Errorf("location = %q", p.Assets[0].Input.Location)
	}
	if len(p.Warnings) != 1 {
		t.Errorf("expected a warning for a service without image, got %v", p.Warnings)
	}
}

func TestParseCompose_Errors(t *testing.T) {
	if _, err := ParseCompose([]byte(":::bad"), "x"); err == nil {
		t.Error("expected error for bad YAML")
	}
	if _, err := ParseCompose([]byte("services: {}\n"), "x"); err == nil {
		t.Error("expected error for empty services")
	}
}

func TestServiceType(t *testing.T) {
	tests := map[string]string{
		"postgres":                    "database",
		"bitnami/mysql:8.0":           "database",
		"redis@sha256:abc":            "cache",
		"registry.local:5000/app:1.0": "service",
		"":                            "service",
	}
	for image, want := range tests {
		if got := serviceType(image); got != want {
			t.Errorf("serviceType(%q) = %q, want %q", image, got, want)
		}
	}
}

func TestLoadCompose_Directory(t *testing.T) {
	for _, name := range composeFileNames {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "shop")
			if err := os.Mkdir(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, name), []byte(testCompose), 0o644); err != nil {
				t.Fatal(err)
			}

			if !IsComposePath(dir) {
				t.Errorf("should detect %s in directory", name)
			}
			p, err := LoadCompose(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(p.Assets) != 4 || p.Assets[0].Input.Location != "compose/shop" {
				t.Errorf("unexpected plan: %+v", p.Assets)
			}
		})
	}
}

func TestIsComposePath(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "random.txt")
	_ = os.WriteFile(tmp, []byte("hello"), 0o644)
	if IsComposePath(tmp) {
		t.Error("should not accept random.txt")
	}
	if IsComposePath("/nonexistent/path") {
		t.Error("should not accept a missing path")
	}
	if _, err := LoadCompose(t.TempDir()); err == nil {
		t.Error("expected error for directory without compose file")
	}
}
