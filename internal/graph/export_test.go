package graph

import (
	"encoding/json"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/matijazezelj/assetutil/pkg/models"
)

func testData() Data {
	return Data{
		Assets: []models.Asset{
			{ID: "ast-1", Name: "web", Type: "application", Status: models.AssetActive},
			{ID: "ast-2", Name: "db", Type: "database", Status: models.AssetMaintenance},
		},
		Dependencies: []models.Dependency{
			{ID: "dep-1", SourceAssetID: "ast-1", TargetAssetID: "ast-2", Type: models.DependencyRequires, Impact: models.LevelCritical},
		},
	}
}

func TestExportJSON(t *testing.T) {
	out, err := ExportJSON(testData())
	if err != nil {
		t.Fatal(err)
	}

	var data Data
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(data.Assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(data.Assets))
	}
	if len(data.Dependencies) != 1 {
		t.Errorf("expected 1 dependency, got %d", len(data.Dependencies))
	}
}

func TestExportJSON_Empty(t *testing.T) {
	out, err := ExportJSON(Data{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"assets": []`) {
		t.Errorf("empty export should carry empty arrays, got %s", out)
	}
}

func TestExportYAML(t *testing.T) {
	out, err := ExportYAML(testData())
	if err != nil {
		t.Fatal(err)
	}
	var data Data
	if err := yaml.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid YAML output: %v", err)
	}
	if len(data.Assets) != 2 || data.Dependencies[0].TargetAssetID != "ast-2" {
		t.Errorf("round-tripped data = %+v", data)
	}
}

func TestExportDOT(t *testing.T) {
	out := ExportDOT(testData())

	if !strings.Contains(out, "digraph assetutil") {
		t.Error("DOT output missing 'digraph assetutil'")
	}
	if !strings.Contains(out, `"ast-1"`) {
		t.Error("DOT output missing node ast-1")
	}
	if !strings.Contains(out, `"ast-1" -> "ast-2" [label="requires", penwidth=4]`) {
		t.Errorf("DOT output missing edge, got:\n%s", out)
	}
}

func TestExportMermaid(t *testing.T) {
	out := ExportMermaid(testData())

	if !strings.Contains(out, "graph LR") {
		t.Error("Mermaid output missing 'graph LR'")
	}
	if !strings.Contains(out, `ast_1["web (application)"]`) {
		t.Errorf("Mermaid output missing node, got:\n%s", out)
	}
	if !strings.Contains(out, "ast_1 ==>|requires| ast_2") {
		t.Errorf("Mermaid output missing critical edge, got:\n%s", out)
	}
}

func TestExport_Dispatch(t *testing.T) {
	for _, f := range Formats {
		if _, err := Export(f, testData()); err != nil {
			t.Errorf("Export(%q): %v", f, err)
		}
	}
	if _, err := Export("svg", testData()); err == nil {
		t.Error("expected error for unknown format")
	}
	if ContentType("json") != "application/json" {
		t.Errorf("ContentType(json) = %q", ContentType("json"))
	}
}
