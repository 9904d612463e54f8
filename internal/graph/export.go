package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/matijazezelj/assetutil/pkg/models"
)

// Data is a full graph snapshot for export.
type Data struct {
	Assets       []models.Asset      `json:"assets" yaml:"assets"`
	Dependencies []models.Dependency `json:"dependencies" yaml:"dependencies"`
}

func (d Data) normalized() Data {
	if d.Assets == nil {
		d.Assets = []models.Asset{}
	}
	if d.Dependencies == nil {
		d.Dependencies = []models.Dependency{}
	}
	return d
}

// Formats lists the names accepted by Export.
var Formats = []string{"json", "yaml", "dot", "mermaid"}

// Export renders d in the named format.
func Export(format string, d Data) (string, error) {
	switch format {
	case "json":
		return ExportJSON(d)
	case "yaml":
		return ExportYAML(d)
	case "dot":
		return ExportDOT(d), nil
	case "mermaid":
		return ExportMermaid(d), nil
	default:
		return "", fmt.Errorf("unknown export format %q (use: %s)", format, strings.Join(Formats, ", "))
	}
}

// ContentType returns the media type of the named format.
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "yaml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ExportJSON returns the graph as indented JSON.
func ExportJSON(d Data) (string, error) {
	b, err := json.MarshalIndent(d.normalized(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExportYAML returns the graph as YAML.
func ExportYAML(d Data) (string, error) {
	b, err := yaml.Marshal(d.normalized())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExportDOT returns the graph in Graphviz DOT format.
func ExportDOT(d Data) string {
	var b strings.Builder
	b.WriteString("digraph assetutil {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled];\n\n")

	for _, a := range d.Assets {
		label := fmt.Sprintf("%s\\n(%s)", a.Name, a.Type)
		b.WriteString(fmt.Sprintf("  %q [label=%q, fillcolor=%q];\n", a.ID, label, statusColor(a.Status)))
	}

	b.WriteString("\n")

	for _, dep := range d.Dependencies {
		b.WriteString(fmt.Sprintf("  %q -> %q [label=%q, penwidth=%d];\n",
			dep.SourceAssetID, dep.TargetAssetID, dep.Type, impactWidth(dep.Impact)))
	}

	b.WriteString("}\n")
	return b.String()
}

// ExportMermaid returns the graph as a Mermaid flowchart.
func ExportMermaid(d Data) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, a := range d.Assets {
		b.WriteString(fmt.Sprintf("  %s[\"%s (%s)\"]\n", mermaidSafeID(a.ID), a.Name, a.Type))
	}

	for _, dep := range d.Dependencies {
		arrow := "-->"
		if dep.Impact == models.LevelCritical || dep.Impact == models.LevelHigh {
			arrow = "==>"
		}
		b.WriteString(fmt.Sprintf("  %s %s|%s| %s\n",
			mermaidSafeID(dep.SourceAssetID), arrow, dep.Type, mermaidSafeID(dep.TargetAssetID)))
	}

	return b.String()
}

func statusColor(s models.AssetStatus) string {
	switch s {
	case models.AssetActive:
		return "#A3E4D7"
	case models.AssetMaintenance:
		return "#F9E79F"
	case models.AssetInactive:
		return "#D5D8DC"
	default:
		return "#AED6F1"
	}
}

func impactWidth(l models.Level) int {
	switch l {
	case models.LevelCritical:
		return 4
	case models.LevelHigh:
		return 3
	case models.LevelMedium:
		return 2
	default:
		return 1
	}
}

func mermaidSafeID(id string) string {
	r := strings.NewReplacer(":", "_", ".", "_", "-", "_", "/", "_")
	return r.Replace(id)
}
