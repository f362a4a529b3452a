// Package installer installs and removes an unpacked bundle on the running
// host. It follows the same plan as the installer.sh shipped in every
// bundle, reading package.yml instead of baked-in shell variables.
package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/asset"
	"github.com/intecture/inpack/pkg/bundle"
	"github.com/intecture/inpack/pkg/install"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/runner"
	"github.com/pkg/errors"
)

// Usage is printed for an empty subcommand.
const Usage = `Usage: installer.sh <install|uninstall>

  install    Install the product, its libraries, config and service files
  uninstall  Remove the product, leaving shared libraries in place
`

// Unit directories in lookup order; the first one present receives the unit.
var systemdUnitDirs = []string{"/lib/systemd/system", "/usr/lib/systemd/system"}

const sysvInitDir = "/etc/init.d"

// Probes answer the questions installer.sh asks the host.
type Probes struct {
	// LookPath reports whether a command is runnable.
	LookPath func(name string) bool
	// PkgConfigExists reports whether pkgconfig knows module.
	PkgConfigExists func(ctx context.Context, pkgconfig, module string) bool
	// SystemdRunning reports whether systemd is the active service manager.
	SystemdRunning func() bool
}

// HostProbes inspect the running machine.
func HostProbes() Probes {
	return Probes{
		LookPath: runner.LookPath,
		PkgConfigExists: func(ctx context.Context, pkgconfig, module string) bool {
			return runner.Exec{}.Run(ctx, runner.Cmd{Name: pkgconfig, Args: []string{"--exists", module}}) == nil
		},
		SystemdRunning: systemdRunning,
	}
}

// Engine installs one bundle.
type Engine struct {
	// Root rebases every target path; "" and "/" install into the host.
	Root      string
	BundleDir string
	Manifest  *bundle.Manifest
	// DryRun logs each placement instead of performing it.
	DryRun bool
	Probes Probes
}

// New reads the manifest of the bundle at dir.
func New(dir, root string) (*Engine, error) {
	m, err := bundle.Read(dir)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Root:      root,
		BundleDir: dir,
		Manifest:  m,
		Probes:    HostProbes(),
	}, nil
}

// Dispatch runs the subcommand named by args[0]. Without arguments it
// writes Usage to stdout and succeeds.
func (e *Engine) Dispatch(ctx context.Context, stdout io.Writer, args []string) error {
	if len(args) == 0 || args[0] == "" {
		_, err := io.WriteString(stdout, Usage)
		return err
	}
	switch args[0] {
	case "install":
		return e.Install(ctx)
	case "uninstall":
		return e.Uninstall()
	}
	return &UnknownSubcommandError{Name: args[0]}
}

func (e *Engine) profile() platform.Profile {
	return e.Manifest.Profile
}

func (e *Engine) target(p string) string {
	return install.Rebase(e.Root, p)
}

func (e *Engine) source(rel string) string {
	return filepath.Join(e.BundleDir, filepath.FromSlash(rel))
}

func (e *Engine) configDir() string {
	return path.Join(e.profile().SysconfDir, e.Manifest.ConfigDir)
}

// Install places the bundle's libraries, service file, config and binaries.
// Dependencies pkg-config already knows are left alone.
func (e *Engine) Install(ctx context.Context) error {
	m := e.Manifest
	p := e.profile()
	log.WithField("product", m.Product).WithField("version", m.Version).Info("installing")

	pkgconfig, err := e.pkgConfig()
	if err != nil {
		return err
	}

	for _, d := range m.Dependencies {
		if e.Probes.PkgConfigExists(ctx, pkgconfig, d.PkgConfig) {
			log.WithField("module", d.PkgConfig).Info("already present")
			continue
		}
		if err := e.installDependency(d); err != nil {
			return err
		}
	}

	if err := e.installService(); err != nil {
		return err
	}

	certs := e.target(path.Join(e.configDir(), "certs"))
	if e.DryRun {
		log.Infof("Would create %s", certs)
	} else if err := os.MkdirAll(certs, 0755); err != nil {
		return errors.Wrap(err, "failed to create certificate directory")
	}
	if err := e.place(m.ConfigName, path.Join(e.configDir(), m.ConfigName), 0644); err != nil {
		return err
	}

	for _, b := range m.Binaries {
		if err := e.place(b, path.Join(p.BinDir(), b), 0755); err != nil {
			return err
		}
	}
	log.WithField("product", m.Product).Info("installed")
	return nil
}

func (e *Engine) installDependency(d bundle.Dependency) error {
	p := e.profile()
	log.WithField("module", d.PkgConfig).Info("installing library")

	unversioned := asset.LibFileName(p, d.Library)
	versioned := asset.VersionedLibName(p, d.Library, d.SOVersion)
	if err := e.place("lib/"+unversioned, path.Join(p.LibDir, versioned), 0755); err != nil {
		return err
	}
	link := e.target(path.Join(p.LibDir, unversioned))
	if e.DryRun {
		log.Infof("Would link %s to %s", link, versioned)
	} else if err := install.Symlink(versioned, link); err != nil {
		return err
	}

	for _, lib := range d.ExtraLibs {
		if err := e.place("lib/"+lib, path.Join(p.LibDir, lib), 0755); err != nil {
			return err
		}
	}
	pc := d.PkgConfig + ".pc"
	if err := e.place("lib/pkgconfig/"+pc, path.Join(p.PkgConfigDir(), pc), 0644); err != nil {
		return err
	}
	for _, h := range d.Headers {
		if err := e.place("include/"+h, path.Join(p.IncludeDir(), h), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) installService() error {
	m := e.Manifest
	p := e.profile()
	switch p.OS {
	case platform.Darwin:
		return nil
	case platform.FreeBSD:
		if m.Services.Init == "" {
			return nil
		}
		return e.place(m.Services.Init, path.Join(p.Prefix, "etc", "rc.d", m.Product), 0755)
	}
	if e.Probes.SystemdRunning() {
		if m.Services.Systemd == "" {
			return nil
		}
		return e.place(m.Services.Systemd, path.Join(e.unitDir(), m.Product+".service"), 0644)
	}
	if m.Services.Init == "" {
		return nil
	}
	return e.place(m.Services.Init, path.Join(sysvInitDir, m.Product), 0755)
}

func (e *Engine) unitDir() string {
	for _, dir := range systemdUnitDirs {
		if info, err := os.Stat(e.target(dir)); err == nil && info.IsDir() {
			return dir
		}
	}
	return systemdUnitDirs[0]
}

// serviceCandidates lists every location Install may have used for the
// service file on this OS.
func (e *Engine) serviceCandidates() []string {
	m := e.Manifest
	p := e.profile()
	switch p.OS {
	case platform.Darwin:
		return nil
	case platform.FreeBSD:
		return []string{path.Join(p.Prefix, "etc", "rc.d", m.Product)}
	}
	var paths []string
	for _, dir := range systemdUnitDirs {
		paths = append(paths, path.Join(dir, m.Product+".service"))
	}
	return append(paths, path.Join(sysvInitDir, m.Product))
}

// Uninstall removes binaries, config and service files. Shared libraries
// stay, since other software may link them. The certificate and config
// directories are removed only when empty, so stored certificates survive.
// Standard directories such as the bin and service directories belong to
// the host and are left in place even when empty.
func (e *Engine) Uninstall() error {
	m := e.Manifest
	p := e.profile()

	var paths []string
	for _, b := range m.Binaries {
		paths = append(paths, path.Join(p.BinDir(), b))
	}
	paths = append(paths, path.Join(e.configDir(), m.ConfigName))
	paths = append(paths, e.serviceCandidates()...)

	for _, rel := range paths {
		target := e.target(rel)
		if e.DryRun {
			log.Infof("Would remove %s", target)
			continue
		}
		if err := install.Remove(target); err != nil {
			return err
		}
	}

	if !e.DryRun {
		for _, dir := range []string{path.Join(e.configDir(), "certs"), e.configDir()} {
			removed, err := install.RemoveDirIfEmpty(e.target(dir))
			if err != nil {
				return err
			}
			if !removed {
				log.WithField("dir", dir).Debug("kept")
			}
		}
	}
	log.WithField("product", m.Product).Info("uninstalled")
	return nil
}

// place copies a bundle-relative file to a rebased target path.
func (e *Engine) place(rel, dst string, mode os.FileMode) error {
	src := e.source(rel)
	target := e.target(dst)
	if _, err := os.Stat(src); err != nil {
		return errors.Errorf("missing bundle file %s", rel)
	}
	if e.DryRun {
		log.Info(install.DryRunOutput(src, target))
		return nil
	}
	log.WithField("mode", fmt.Sprintf("%04o", mode)).Debugf("installing %s", target)
	return install.File(src, target, mode)
}

// pkgConfig returns the pkg-config command to use: the profile's path when
// runnable, else pkg-config from PATH.
func (e *Engine) pkgConfig() (string, error) {
	if pc := e.profile().PkgConfig; pc != "" && e.Probes.LookPath(pc) {
		return pc, nil
	}
	if e.Probes.LookPath("pkg-config") {
		return "pkg-config", nil
	}
	return "", &MissingCommandError{Name: "pkg-config"}
}

func systemdRunning() bool {
	if info, err := os.Stat("/run/systemd/system"); err == nil && info.IsDir() {
		return true
	}
	comm, err := os.ReadFile("/proc/1/comm")
	return err == nil && strings.TrimSpace(string(comm)) == "systemd"
}
