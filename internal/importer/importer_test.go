package importer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/matijazezelj/assetutil/internal/apperr"
	"github.com/matijazezelj/assetutil/internal/inventory"
	"github.com/matijazezelj/assetutil/pkg/models"
)

const testManifest = `
assets:
  - key: lb
    name: edge-lb
    type: load-balancer
    location: eu-west-1
    provider: aws
    configuration:
      listeners: 2
  - name: app-server
    type: server
    status: maintenance
    location: eu-west-1
dependencies:
  - source: lb
    target: app-server
    type: requires
    impact: critical
    description: routes traffic
  - source: app-server
    target: missing
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseManifest(t *testing.T) {
	p, err := ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Assets) != 2 || len(p.Dependencies) != 2 {
		t.Fatalf("plan = %d assets, %d deps", len(p.Assets), len(p.Dependencies))
	}
	if p.Assets[1].Key != "app-server" {
		t.Errorf("asset without key should be keyed by name, got %q", p.Assets[1].Key)
	}
	if p.Assets[0].Input.Provider != models.ProviderAWS {
		t.Errorf("provider = %q", p.Assets[0].Input.Provider)
	}

	def := p.Dependencies[1]
	if def.Type != models.DependencyDependsOn || def.Impact != models.LevelMedium {
		t.Errorf("defaults not applied: %+v", def)
	}
}

func TestParseManifest_Errors(t *testing.T) {
	if _, err := ParseManifest([]byte("assets: [")); err == nil {
		t.Error("expected error for bad YAML")
	}
	if _, err := ParseManifest([]byte("assets:\n  - type: server\n")); err == nil {
		t.Error("expected error for asset without key or name")
	}
}

func TestApply(t *testing.T) {
	inv := inventory.New(inventory.MemoryStores(), inventory.WithLogger(testLogger()))
	ctx := context.Background()

	p, err := ParseManifest([]byte(testManifest))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Apply(ctx, inv.Assets, inv.Dependencies, p, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if res.Assets != 2 || res.Dependencies != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected one warning for the unknown target, got %v", res.Warnings)
	}

	deps, err := inv.Dependencies.GetDependenciesForAsset(ctx, res.IDs["lb"])
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 || deps[0].TargetAssetID != res.IDs["app-server"] || deps[0].Impact != models.LevelCritical {
		t.Errorf("dependencies = %+v", deps)
	}

	srv, err := inv.Assets.GetAssetByID(ctx, res.IDs["app-server"])
	if err != nil {
		t.Fatal(err)
	}
	if srv.Status != models.AssetMaintenance {
		t.Errorf("status = %q", srv.Status)
	}
}

func TestApply_InvalidAssetStops(t *testing.T) {
	inv := inventory.New(inventory.MemoryStores(), inventory.WithLogger(testLogger()))
	p := &Plan{Assets: []PlannedAsset{
		{Key: "ok", Input: models.AssetInput{Name: "ok", Type: "server", Location: "dc1"}},
		{Key: "bad", Input: models.AssetInput{Name: "bad", Type: "server"}},
	}}

	res, err := Apply(context.Background(), inv.Assets, inv.Dependencies, p, testLogger())
	if !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if res.Assets != 1 {
		t.Errorf("assets created before the failure = %d, want 1", res.Assets)
	}
}

func TestApply_Compose(t *testing.T) {
	inv := inventory.New(inventory.MemoryStores(), inventory.WithLogger(testLogger()))
	p, err := ParseCompose([]byte(testCompose), "shop")
	if err != nil {
		t.Fatal(err)
	}

	res, err := Apply(context.Background(), inv.Assets, inv.Dependencies, p, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if res.Assets != 4 || res.Dependencies != 3 {
		t.Errorf("result = %+v", res)
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Assets) != 2 {
		t.Errorf("assets = %d", len(p.Assets))
	}
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
