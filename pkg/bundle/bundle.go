// Package bundle reads and writes package.yml, the description of a bundle
// that the installer engine works from.
package bundle

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/pkg/errors"
)

// FileName is the manifest location relative to the bundle root.
const FileName = "package.yml"

// Manifest describes a bundle, never the state of a host it was installed on.
type Manifest struct {
	Product  string           `yaml:"product"`
	Version  string           `yaml:"version"`
	Profile  platform.Profile `yaml:"profile"`
	Binaries []string         `yaml:"binaries"`
	// ConfigDir is relative to the profile's sysconfdir.
	ConfigDir    string       `yaml:"config_dir"`
	ConfigName   string       `yaml:"config_name"`
	Services     Services     `yaml:"services"`
	Dependencies []Dependency `yaml:"dependencies"`
}

// Services holds bundle-relative paths of staged service files.
type Services struct {
	Systemd string `yaml:"systemd,omitempty"`
	Init    string `yaml:"init,omitempty"`
}

// Dependency is the install plan of one bundled library.
type Dependency struct {
	Name      string   `yaml:"name"`
	PkgConfig string   `yaml:"pkgconfig"`
	Library   string   `yaml:"library"`
	SOVersion string   `yaml:"soversion"`
	Headers   []string `yaml:"headers,omitempty"`
	// ExtraLibs are file names below lib/.
	ExtraLibs []string `yaml:"extra_libs,omitempty"`
}

// Write stores m as package.yml in dir.
func Write(dir string, m *Manifest) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal bundle manifest")
	}
	p := filepath.Join(dir, FileName)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", p)
	}
	return p, nil
}

// Read loads package.yml from the bundle rooted at dir.
func Read(dir string) (*Manifest, error) {
	p := filepath.Join(dir, FileName)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", p)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", p)
	}
	if m.Product == "" || m.Version == "" {
		return nil, errors.Errorf("%s: product and version are required", p)
	}
	return &m, nil
}
