// Package platform resolves the filesystem conventions of the host a package
// is built for.
package platform

import (
	"fmt"
	"path"
)

// OSID identifies a supported operating system or Linux distribution.
type OSID string

const (
	CentOS  OSID = "centos"
	Fedora  OSID = "fedora"
	Debian  OSID = "debian"
	Ubuntu  OSID = "ubuntu"
	FreeBSD OSID = "freebsd"
	Darwin  OSID = "darwin"
)

// InitSystem identifies the service manager a package registers with.
type InitSystem string

const (
	Systemd InitSystem = "systemd"
	SysV    InitSystem = "sysv"
	BSDRC   InitSystem = "bsd-rc"
	NoInit  InitSystem = "none"
)

// Profile is the fixed set of filesystem conventions of a target environment.
// A Profile is a value; once resolved it is only ever copied.
type Profile struct {
	OS         OSID       `yaml:"os"`
	Prefix     string     `yaml:"prefix"`
	LibDir     string     `yaml:"libdir"`
	LibExt     string     `yaml:"libext"`
	SysconfDir string     `yaml:"sysconfdir"`
	Init       InitSystem `yaml:"init"`
	PkgConfig  string     `yaml:"pkgconfig"`
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (prefix=%s libdir=%s ext=%s sysconfdir=%s init=%s)",
		p.OS, p.Prefix, p.LibDir, p.LibExt, p.SysconfDir, p.Init)
}

// IncludeDir is where headers live for this profile.
func (p Profile) IncludeDir() string {
	return path.Join(p.Prefix, "include")
}

// BinDir is where executables live for this profile.
func (p Profile) BinDir() string {
	return path.Join(p.Prefix, "bin")
}

// PkgConfigDir is where pkg-config descriptors live for this profile.
func (p Profile) PkgConfigDir() string {
	return path.Join(p.LibDir, "pkgconfig")
}

// Kernel names as reported by uname(2).
const (
	KernelLinux   = "Linux"
	KernelFreeBSD = "FreeBSD"
	KernelDarwin  = "Darwin"
)

// UnsupportedPlatformError is returned for a kernel with no profile.
type UnsupportedPlatformError struct {
	Kernel string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: kernel %q", e.Kernel)
}

// UnsupportedDistributionError is returned when a Linux host carries none of
// the recognized release marker files.
type UnsupportedDistributionError struct {
	Checked []string
}

func (e *UnsupportedDistributionError) Error() string {
	return fmt.Sprintf("unsupported Linux distribution: none of %v present", e.Checked)
}
