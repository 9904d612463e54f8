package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matijazezelj/assetutil/pkg/models"
)

type manifestFile struct {
	Assets       []manifestAsset      `yaml:"assets"`
	Dependencies []manifestDependency `yaml:"dependencies"`
}

type manifestAsset struct {
	Key           string         `yaml:"key"`
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	Status        string         `yaml:"status"`
	Location      string         `yaml:"location"`
	Provider      string         `yaml:"provider"`
	Configuration map[string]any `yaml:"configuration"`
}

type manifestDependency struct {
	Source      string `yaml:"source"`
	Target      string `yaml:"target"`
	Type        string `yaml:"type"`
	Impact      string `yaml:"impact"`
	Description string `yaml:"description"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Plan, error) {
	path, err := SafeResolvePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path validated by SafeResolvePath
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest YAML. Assets without a key are keyed by
// name. Dependency type defaults to depends-on and impact to medium.
func ParseManifest(data []byte) (*Plan, error) {
	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	p := &Plan{}
	for i, a := range mf.Assets {
		key := a.Key
		if key == "" {
			key = a.Name
		}
		if key == "" {
			return nil, fmt.Errorf("manifest asset #%d has neither key nor name", i+1)
		}
		p.Assets = append(p.Assets, PlannedAsset{
			Key: key,
			Input: models.AssetInput{
				Name:          a.Name,
				Type:          a.Type,
				Status:        models.AssetStatus(a.Status),
				Location:      a.Location,
				Provider:      models.Provider(a.Provider),
				Configuration: a.Configuration,
			},
		})
	}

	for _, d := range mf.Dependencies {
		pd := PlannedDependency{
			Source:      d.Source,
			Target:      d.Target,
			Type:        models.DependencyType(d.Type),
			Impact:      models.Level(d.Impact),
			Description: d.Description,
		}
		if pd.Type == "" {
			pd.Type = models.DependencyDependsOn
		}
		if pd.Impact == "" {
			pd.Impact = models.LevelMedium
		}
		p.Dependencies = append(p.Dependencies, pd)
	}
	return p, nil
}
