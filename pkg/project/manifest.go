package project

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// CargoManifest holds the parts of Cargo.toml the builder reads.
type CargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Bin []struct {
		Name string `toml:"name"`
	} `toml:"bin"`
}

// ReadManifest parses the Cargo manifest at path.
func ReadManifest(path string) (*CargoManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest: %s", path)
	}
	var m CargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest: %s", path)
	}
	return &m, nil
}

// BinaryNames returns the declared [[bin]] targets, or the package name
// when none are declared.
func (m *CargoManifest) BinaryNames() []string {
	if len(m.Bin) == 0 {
		if m.Package.Name == "" {
			return nil
		}
		return []string{m.Package.Name}
	}
	names := make([]string, 0, len(m.Bin))
	for _, b := range m.Bin {
		names = append(names, b.Name)
	}
	return names
}
