// Package importer turns manifest and Docker Compose files into assets and
// dependencies in the inventory.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/matijazezelj/assetutil/pkg/models"
)

// SafeResolvePath resolves a user-provided path to an absolute path with
// symlinks and ".." components evaluated.
func SafeResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("evaluating symlinks: %w", err)
	}

	return resolved, nil
}

// Plan is a parsed source. Dependencies reference assets by Key.
type Plan struct {
	Assets       []PlannedAsset
	Dependencies []PlannedDependency
	Warnings     []string
}

// PlannedAsset is an asset to create, addressed by a source-local key.
type PlannedAsset struct {
	Key   string
	Input models.AssetInput
}

// PlannedDependency links two planned assets by key.
type PlannedDependency struct {
	Source      string
	Target      string
	Type        models.DependencyType
	Impact      models.Level
	Description string
}

// AssetTarget is the part of the inventory an import writes assets to.
type AssetTarget interface {
	CreateAsset(ctx context.Context, in models.AssetInput) (models.Asset, error)
}

// DependencyTarget is the part of the inventory an import writes dependencies to.
type DependencyTarget interface {
	AddDependency(ctx context.Context, in models.DependencyInput) (models.Dependency, error)
}

// Target is the part of the inventory an import writes to.
type Target interface {
	AssetTarget
	DependencyTarget
}

// Result reports what an import created.
type Result struct {
	Assets       int               `json:"assets"`
	Dependencies int               `json:"dependencies"`
	IDs          map[string]string `json:"ids"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// Apply creates every planned asset, then every dependency whose endpoints
// were created. Dependencies with unknown keys are skipped with a warning.
// The first failing create stops the import; records created before it
// are kept.
func Apply(ctx context.Context, assets AssetTarget, deps DependencyTarget, p *Plan, logger *slog.Logger) (Result, error) {
	res := Result{IDs: make(map[string]string, len(p.Assets)), Warnings: append([]string(nil), p.Warnings...)}

	for _, pa := range p.Assets {
		if _, dup := res.IDs[pa.Key]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate asset key %q skipped", pa.Key))
			continue
		}
		a, err := assets.CreateAsset(ctx, pa.Input)
		if err != nil {
			return res, fmt.Errorf("creating asset %q: %w", pa.Key, err)
		}
		res.IDs[pa.Key] = a.ID
		res.Assets++
	}

	for _, pd := range p.Dependencies {
		src, okSrc := res.IDs[pd.Source]
		dst, okDst := res.IDs[pd.Target]
		if !okSrc || !okDst {
			res.Warnings = append(res.Warnings, fmt.Sprintf("dependency %s -> %s references an unknown asset", pd.Source, pd.Target))
			continue
		}
		_, err := deps.AddDependency(ctx, models.DependencyInput{
			SourceAssetID: src,
			TargetAssetID: dst,
			Type:          pd.Type,
			Impact:        pd.Impact,
			Description:   pd.Description,
		})
		if err != nil {
			return res, fmt.Errorf("creating dependency %s -> %s: %w", pd.Source, pd.Target, err)
		}
		res.Dependencies++
	}

	logger.Info("import complete", "assets", res.Assets, "dependencies", res.Dependencies, "warnings", len(res.Warnings))
	return res, nil
}
