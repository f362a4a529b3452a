// Package assemble lays out a bundle for one platform profile and archives
// it.
package assemble

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/apex/log"
	"github.com/intecture/inpack/internal/shell"
	"github.com/intecture/inpack/pkg/archive"
	"github.com/intecture/inpack/pkg/asset"
	"github.com/intecture/inpack/pkg/bundle"
	"github.com/intecture/inpack/pkg/install"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/project"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/intecture/inpack/pkg/verify"
	"github.com/pkg/errors"
)

// Bundle-relative locations.
const (
	IncludeDir   = "include"
	LibDir       = "lib"
	PkgConfigDir = "lib/pkgconfig"
	SystemdDir   = "systemd"
	InitDir      = "init"
	InstallerSh  = "installer.sh"
)

// PackagingIncompleteError names a file the bundle needs but the build
// host does not have.
type PackagingIncompleteError struct {
	MissingPath string
}

func (e *PackagingIncompleteError) Error() string {
	return fmt.Sprintf("packaging incomplete: %s is missing", e.MissingPath)
}

// Entry copies one file from the build host into the bundle.
type Entry struct {
	Source string
	// Dest is relative to the bundle root.
	Dest string
	Mode os.FileMode
}

// Manifest is everything that goes into one bundle.
type Manifest struct {
	Version  string
	Binaries []string
	Entries  []Entry
	// Rendered file contents. Systemd and Init are empty when the OS has
	// no such service file.
	Config    string
	Systemd   string
	Init      string
	Installer string

	StageDir string
	Archive  string
	Checksum string
}

// Assembler builds bundles for one profile.
type Assembler struct {
	Spec      *spec.ProjectSpec
	Profile   platform.Profile
	Templates *shell.Templates
	// SourceRoot rebases library and header lookups, for dependencies
	// installed below a staging directory. Empty means the host root.
	SourceRoot string
}

// New returns an Assembler using the templates configured in s.
func New(s *spec.ProjectSpec, p platform.Profile) *Assembler {
	return &Assembler{
		Spec:      s,
		Profile:   p,
		Templates: shell.NewTemplates(s.TemplatesDir),
	}
}

// Name is the bundle directory and archive base name.
func (a *Assembler) Name(version string) string {
	return a.Spec.Product + "-" + version
}

// ArchivePath is where the bundle for version is written.
func (a *Assembler) ArchivePath(version string) string {
	ext := ".tar.gz"
	if a.Spec.Compression == spec.XZ {
		ext = ".tar.xz"
	}
	return filepath.Join(a.Spec.OutputDir, string(a.Profile.OS), a.Name(version)+ext)
}

func (a *Assembler) format() archive.Format {
	if a.Spec.Compression == spec.XZ {
		return archive.FormatTarXz
	}
	return archive.FormatTarGz
}

func (a *Assembler) source(p string) string {
	return install.Rebase(a.SourceRoot, p)
}

// Plan renders every template and lists every file to copy. Nothing is
// written. A source file that does not exist is reported as
// PackagingIncompleteError.
func (a *Assembler) Plan(art *project.Artifacts) (*Manifest, error) {
	p := a.Profile
	s := a.Spec
	m := &Manifest{Version: art.Version, Binaries: art.Names}

	for i, name := range art.Names {
		m.Entries = append(m.Entries, Entry{Source: art.Paths[i], Dest: name, Mode: 0755})
	}
	for _, d := range s.Dependencies {
		lib := asset.LibFileName(p, d.Library)
		m.Entries = append(m.Entries, Entry{
			Source: a.source(path.Join(p.LibDir, lib)),
			Dest:   path.Join(LibDir, lib),
			Mode:   0755,
		})
		for _, extra := range d.ExtraLibsFor(string(p.OS)) {
			m.Entries = append(m.Entries, Entry{
				Source: a.source(extra),
				Dest:   path.Join(LibDir, path.Base(extra)),
				Mode:   0755,
			})
		}
		pc := d.PkgConfig + ".pc"
		m.Entries = append(m.Entries, Entry{
			Source: a.source(path.Join(p.PkgConfigDir(), pc)),
			Dest:   path.Join(PkgConfigDir, pc),
			Mode:   0644,
		})
		for _, h := range d.Headers {
			m.Entries = append(m.Entries, Entry{
				Source: a.source(path.Join(p.IncludeDir(), h)),
				Dest:   path.Join(IncludeDir, h),
				Mode:   0644,
			})
		}
	}
	for _, e := range m.Entries {
		if _, err := os.Stat(e.Source); err != nil {
			return nil, &PackagingIncompleteError{MissingPath: e.Source}
		}
	}

	if err := a.render(m); err != nil {
		return nil, err
	}
	m.StageDir = filepath.Join(s.WorkDir, a.Name(art.Version))
	m.Archive = a.ArchivePath(art.Version)
	return m, nil
}

func (a *Assembler) render(m *Manifest) error {
	p := a.Profile
	s := a.Spec

	cfg, err := a.Templates.Read(shell.ConfigTemplate)
	if err != nil {
		return err
	}
	m.Config = shell.Render(cfg, shell.ConfigTokens(p, s))

	tokens := shell.InstallerTokens(p, s, m.Binaries)
	set := shell.ServiceTemplates(p.OS)
	if set.Systemd != "" {
		unit, err := a.Templates.Read(set.Systemd)
		if err != nil {
			return err
		}
		m.Systemd = shell.Render(unit, tokens)
	}
	if set.Init != "" {
		script, err := a.Templates.Read(set.Init)
		if err != nil {
			return err
		}
		m.Init = shell.Render(script, tokens)
		if err := shell.CheckSyntax(set.Init, m.Init); err != nil {
			return err
		}
	}

	m.Installer, err = shell.RenderInstaller(a.Templates, p, s, m.Binaries)
	return err
}

// Assemble stages the bundle for art and writes the archive plus its
// .sha256 file.
func (a *Assembler) Assemble(ctx context.Context, art *project.Artifacts) (*Manifest, error) {
	m, err := a.Plan(art)
	if err != nil {
		return nil, err
	}
	logger := log.WithField("os", a.Profile.OS).WithField("version", m.Version)

	if err := a.stage(m); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.WithField("archive", m.Archive).Info("creating archive")
	if err := archive.Create(m.StageDir, a.Name(m.Version), m.Archive, a.format()); err != nil {
		return nil, err
	}
	if m.Checksum, err = verify.WriteSidecar(m.Archive); err != nil {
		// An archive without its checksum is never published.
		_ = os.Remove(m.Archive)
		return nil, err
	}
	logger.WithField("sha256", m.Checksum).Info("bundle ready")
	return m, nil
}

func (a *Assembler) stage(m *Manifest) error {
	s := a.Spec
	dir := m.StageDir
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrap(err, "failed to clear staging directory")
	}
	for _, d := range []string{IncludeDir, LibDir, PkgConfigDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			return errors.Wrap(err, "failed to create staging directory")
		}
	}
	log.WithField("dir", dir).Debug("staging")

	for _, e := range m.Entries {
		if err := install.File(e.Source, filepath.Join(dir, filepath.FromSlash(e.Dest)), e.Mode); err != nil {
			return err
		}
	}

	files := []struct {
		name    string
		content string
		mode    os.FileMode
	}{
		{s.ConfigName, m.Config, 0644},
		{path.Join(SystemdDir, s.Product+".service"), m.Systemd, 0644},
		{path.Join(InitDir, s.Product), m.Init, 0755},
		{InstallerSh, m.Installer, 0755},
	}
	for _, f := range files {
		if f.content == "" {
			continue
		}
		if err := writeFile(filepath.Join(dir, filepath.FromSlash(f.name)), f.content, f.mode); err != nil {
			return err
		}
	}

	_, err := bundle.Write(dir, a.bundleManifest(m))
	return err
}

func (a *Assembler) bundleManifest(m *Manifest) *bundle.Manifest {
	s := a.Spec
	p := a.Profile
	bm := &bundle.Manifest{
		Product:    s.Product,
		Version:    m.Version,
		Profile:    p,
		ConfigDir:  s.ConfigDir,
		ConfigName: s.ConfigName,
		Binaries:   m.Binaries,
	}
	if m.Systemd != "" {
		bm.Services.Systemd = path.Join(SystemdDir, s.Product+".service")
	}
	if m.Init != "" {
		bm.Services.Init = path.Join(InitDir, s.Product)
	}
	for _, d := range s.Dependencies {
		bd := bundle.Dependency{
			Name:      d.Name,
			PkgConfig: d.PkgConfig,
			Library:   d.Library,
			SOVersion: d.SOVersion,
			Headers:   d.Headers,
		}
		for _, extra := range d.ExtraLibsFor(string(p.OS)) {
			bd.ExtraLibs = append(bd.ExtraLibs, path.Base(extra))
		}
		bm.Dependencies = append(bm.Dependencies, bd)
	}
	return bm
}

func writeFile(p, content string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(p))
	}
	if err := os.WriteFile(p, []byte(content), mode); err != nil {
		return errors.Wrapf(err, "failed to write %s", p)
	}
	// WriteFile honours the umask; the bundle must not.
	return errors.Wrapf(os.Chmod(p, mode), "failed to set mode of %s", p)
}
