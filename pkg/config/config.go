package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/intecture/inpack/pkg/spec"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where init writes a new config.
const DefaultPath = ".config/inpack.yml"

// Candidate config file names relative to a project directory, in lookup order.
var candidates = []string{
	filepath.FromSlash(DefaultPath),
	filepath.Join(".config", "inpack.yaml"),
}

// Load reads and parses an inpack config file from the given path
func Load(path string) (*spec.ProjectSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}
	return Parse(data, path)
}

// Parse decodes config data; name is only used in error messages.
func Parse(data []byte, name string) (*spec.ProjectSpec, error) {
	var cfg spec.ProjectSpec
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file: %s", name)
	}

	cfg.SetDefaults()

	return &cfg, nil
}

// Discover searches for an inpack config file in the current directory
// and parent directories
func Discover() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current directory")
	}

	for {
		for _, c := range candidates {
			configPath := filepath.Join(dir, c)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no inpack config found")
}

// LoadOrDiscover loads a config from the given path, or discovers one if path
// is empty. When nothing is found the built-in defaults are returned with an
// empty path.
func LoadOrDiscover(configPath string) (*spec.ProjectSpec, string, error) {
	path := configPath
	if path == "" {
		found, err := Discover()
		if err != nil {
			return spec.Default(), "", nil
		}
		path = found
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}
