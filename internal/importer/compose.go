package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matijazezelj/assetutil/pkg/models"
)

type composeFile struct {
	Name     string                    `yaml:"name"`
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image     string          `yaml:"image"`
	DependsOn dependsOn       `yaml:"depends_on"`
	Networks  serviceNetworks `yaml:"networks"`
	Volumes   []string        `yaml:"volumes"`
	Ports     []string        `yaml:"ports"`
}

// dependsOn handles both []string and map[string]{condition:...} forms.
type dependsOn struct {
	Services []string
}

func (d *dependsOn) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&d.Services)
	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return err
		}
		for k := range m {
			d.Services = append(d.Services, k)
		}
		sort.Strings(d.Services)
		return nil
	default:
		return fmt.Errorf("unsupported depends_on type: %v", node.Kind)
	}
}

// serviceNetworks handles both []string and map[string]{...} forms.
type serviceNetworks struct {
	Names []string
}

func (n *serviceNetworks) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&n.Names)
	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return err
		}
		for k := range m {
			n.Names = append(n.Names, k)
		}
		sort.Strings(n.Names)
		return nil
	default:
		return fmt.Errorf("unsupported networks type: %v", node.Kind)
	}
}

var composeFileNames = []string{
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
}

// image repository name -> asset type
var imageFamilies = map[string]string{
	"postgres":      "database",
	"mysql":         "database",
	"mariadb":       "database",
	"mongo":         "database",
	"clickhouse":    "database",
	"elasticsearch": "database",
	"redis":         "cache",
	"memcached":     "cache",
	"valkey":        "cache",
	"rabbitmq":      "queue",
	"kafka":         "queue",
	"nats":          "queue",
	"nginx":         "proxy",
	"traefik":       "proxy",
	"haproxy":       "proxy",
}

// IsComposePath reports whether path is a Compose file or a directory
// holding one.
func IsComposePath(path string) bool {
	_, err := findComposeFile(path)
	return err == nil
}

func findComposeFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		base := filepath.Base(path)
		for _, name := range composeFileNames {
			if strings.EqualFold(base, name) {
				return path, nil
			}
		}
		return "", fmt.Errorf("%s is not a docker compose file", path)
	}

	for _, name := range composeFileNames {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no docker compose file found in %s", path)
}

// LoadCompose reads a Compose file, or the Compose file inside a directory.
func LoadCompose(path string) (*Plan, error) {
	path, err := SafeResolvePath(path)
	if err != nil {
		return nil, err
	}
	path, err = findComposeFile(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path validated by SafeResolvePath
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseCompose(data, filepath.Base(filepath.Dir(path)))
}

// ParseCompose builds a plan from Compose YAML. Every service becomes an
// asset located at "compose/<project>"; depends_on entries become
// depends-on dependencies with high impact.
func ParseCompose(data []byte, project string) (*Plan, error) {
	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing compose file: %w", err)
	}
	if len(cf.Services) == 0 {
		return nil, fmt.Errorf("compose file has no services")
	}
	if cf.Name != "" {
		project = cf.Name
	}

	names := make([]string, 0, len(cf.Services))
	for name := range cf.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	p := &Plan{}
	for _, name := range names {
		svc := cf.Services[name]
		cfg := map[string]any{"source": "compose"}
		if svc.Image != "" {
			cfg["image"] = svc.Image
		}
		if len(svc.Ports) > 0 {
			cfg["ports"] = svc.Ports
		}
		if len(svc.Networks.Names) > 0 {
			cfg["networks"] = svc.Networks.Names
		}
		if vols := namedVolumes(svc.Volumes); len(vols) > 0 {
			cfg["volumes"] = vols
		}
		if svc.Image == "" {
			p.Warnings = append(p.Warnings, fmt.Sprintf("service %q has no image", name))
		}

		p.Assets = append(p.Assets, PlannedAsset{
			Key: name,
			Input: models.AssetInput{
				Name:          name,
				Type:          serviceType(svc.Image),
				Status:        models.AssetActive,
				Location:      "compose/" + project,
				Provider:      models.ProviderOther,
				Configuration: cfg,
			},
		})
	}

	for _, name := range names {
		for _, dep := range cf.Services[name].DependsOn.Services {
			p.Dependencies = append(p.Dependencies, PlannedDependency{
				Source:      name,
				Target:      dep,
				Type:        models.DependencyDependsOn,
				Impact:      models.LevelHigh,
				Description: "compose depends_on",
			})
		}
	}
	return p, nil
}

// serviceType maps an image reference such as
// "docker.io/library/postgres:16-alpine" to an asset type.
func serviceType(image string) string {
	ref := image
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.IndexAny(ref, ":@"); i >= 0 {
		ref = ref[:i]
	}
	if t, ok := imageFamilies[strings.ToLower(ref)]; ok {
		return t
	}
	return "service"
}

// namedVolumes keeps "name:/path" mounts and drops host paths.
func namedVolumes(mounts []string) []string {
	var out []string
	for _, vol := range mounts {
		name := strings.SplitN(vol, ":", 2)[0]
		if name == "" || strings.HasPrefix(name, "/") || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
			continue
		}
		out = append(out, name)
	}
	return out
}
