package shell

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/pkg/errors"
	"mvdan.cc/sh/v3/syntax"
)

// Tokens maps placeholder names to their values. A name "prefix" replaces
// every "{{prefix}}" in a template.
type Tokens map[string]string

// Render replaces every known placeholder in one pass. Values are inserted
// literally and are never rescanned, so a value containing "{{x}}" stays
// as is. Unknown placeholders are left untouched.
func Render(tmpl string, tokens Tokens) string {
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{{"+name+"}}", tokens[name])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// ConfigTokens are the placeholders available to the config template.
func ConfigTokens(p platform.Profile, s *spec.ProjectSpec) Tokens {
	return Tokens{
		"sysconfdir": p.SysconfDir,
		"config_dir": s.ConfigDir,
	}
}

// InstallerTokens are the placeholders available to the installer and the
// service templates.
func InstallerTokens(p platform.Profile, s *spec.ProjectSpec, binaries []string) Tokens {
	return Tokens{
		"prefix":       p.Prefix,
		"libdir":       p.LibDir,
		"libext":       p.LibExt,
		"sysconfdir":   p.SysconfDir,
		"os":           string(p.OS),
		"product":      s.Product,
		"binaries":     strings.Join(binaries, " "),
		"config_dir":   s.ConfigDir,
		"config_name":  s.ConfigName,
		"pkgconfig":    p.PkgConfig,
		"dependencies": DependencyLines(p, s.Dependencies),
	}
}

// DependencyLines renders one install_dep call per dependency. Values are
// single-quoted; ProjectSpec.Validate rejects values containing quotes.
func DependencyLines(p platform.Profile, deps []spec.Dependency) string {
	lines := make([]string, 0, len(deps))
	for _, d := range deps {
		var extras []string
		for _, e := range d.ExtraLibsFor(string(p.OS)) {
			extras = append(extras, path.Base(e))
		}
		lines = append(lines, fmt.Sprintf("  install_dep '%s' '%s' '%s' '%s' '%s'",
			d.PkgConfig, d.Library, d.SOVersion,
			strings.Join(d.Headers, " "), strings.Join(extras, " ")))
	}
	return strings.Join(lines, "\n")
}

// RenderInstaller renders installer.sh for p and checks that the result
// parses as POSIX shell.
func RenderInstaller(t *Templates, p platform.Profile, s *spec.ProjectSpec, binaries []string) (string, error) {
	tmpl, err := t.Read(InstallerTemplate)
	if err != nil {
		return "", err
	}
	lib, err := t.Read(shlibTemplate)
	if err != nil {
		return "", err
	}
	tokens := InstallerTokens(p, s, binaries)
	tokens["shlib"] = strings.TrimRight(lib, "\n")

	script := Render(tmpl, tokens)
	if err := CheckSyntax(InstallerTemplate, script); err != nil {
		return "", err
	}
	return script, nil
}

// CheckSyntax parses script as POSIX shell.
func CheckSyntax(name, script string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(script), name); err != nil {
		return errors.Wrapf(err, "rendered %s is not valid shell", name)
	}
	return nil
}
