package spec

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"golang.org/x/mod/semver"
)

// Validate checks that the ProjectSpec can drive a packaging run. It expects
// SetDefaults to have been applied.
func (s *ProjectSpec) Validate() error {
	if s.Schema != SchemaV1 {
		return fmt.Errorf("unsupported schema %q (want %s)", s.Schema, SchemaV1)
	}
	if s.Product == "" {
		return fmt.Errorf("product is required")
	}
	if s.ConfigName == "" {
		return fmt.Errorf("config_name is required")
	}
	switch s.Compression {
	case Gzip, XZ:
	default:
		return fmt.Errorf("compression must be %q or %q, got %q", Gzip, XZ, s.Compression)
	}

	seen := make(map[string]bool)
	for i, d := range s.Dependencies {
		if err := d.validate(); err != nil {
			return fmt.Errorf("dependencies[%d]: %w", i, err)
		}
		if seen[d.Name] {
			return fmt.Errorf("dependencies[%d]: duplicate dependency %q", i, d.Name)
		}
		seen[d.Name] = true
	}

	return s.ValidateShellFields()
}

func (d Dependency) validate() error {
	required := []struct{ name, value string }{
		{"name", d.Name},
		{"pkgconfig", d.PkgConfig},
		{"version", d.Version},
		{"url", d.URL},
		{"library", d.Library},
		{"soversion", d.SOVersion},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	// The installed version is compared by exact string, so any pin works.
	if !semver.IsValid("v" + d.Version) {
		log.WithField("dependency", d.Name).Warnf("version %q is not a semantic version", d.Version)
	}
	if err := ValidateURLTemplate(d.URL); err != nil {
		return err
	}
	if !strings.HasPrefix(d.Library, "lib") {
		return fmt.Errorf("library %q must start with \"lib\"", d.Library)
	}
	for _, e := range d.ExtraLibs {
		if e.OS == "" || e.Path == "" {
			return fmt.Errorf("extra_libs entries need both os and path")
		}
	}
	return nil
}

// ValidateURLTemplate checks a source URL template before interpolation.
func ValidateURLTemplate(template string) error {
	if strings.Contains(template, "$(") || strings.Contains(template, "`") {
		return fmt.Errorf("url template contains command substitution: %s", template)
	}
	if !strings.HasPrefix(template, "https://") && !strings.HasPrefix(template, "http://") {
		return fmt.Errorf("url template must be an http(s) URL: %s", template)
	}
	return nil
}
