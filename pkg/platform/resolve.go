package platform

import (
	"fmt"
	"sort"
)

// Host exposes the signals profile resolution depends on.
type Host interface {
	// Kernel returns the kernel name, e.g. "Linux".
	Kernel() string
	// Exists reports whether path exists on the host.
	Exists(path string) bool
}

// distroMarker ties a Linux distribution to the file that identifies it.
type distroMarker struct {
	os     OSID
	marker string
}

// linuxMarkers is checked in order; the first present marker wins. Ubuntu
// also ships /etc/debian_version, so it must come before Debian.
var linuxMarkers = []distroMarker{
	{CentOS, "/etc/centos-release"},
	{Fedora, "/etc/fedora-release"},
	{Ubuntu, "/etc/lsb-release"},
	{Debian, "/etc/debian_version"},
}

var linuxBase = Profile{
	Prefix:     "/usr",
	LibExt:     "so",
	SysconfDir: "/etc",
	Init:       Systemd,
	PkgConfig:  "/usr/bin/pkg-config",
}

func linux(os OSID, libdir string) Profile {
	p := linuxBase
	p.OS = os
	p.LibDir = libdir
	return p
}

var profiles = map[OSID]Profile{
	CentOS: linux(CentOS, "/usr/lib64"),
	Fedora: linux(Fedora, "/usr/lib64"),
	Debian: linux(Debian, "/usr/lib"),
	Ubuntu: linux(Ubuntu, "/usr/lib"),
	FreeBSD: {
		OS:         FreeBSD,
		Prefix:     "/usr/local",
		LibDir:     "/usr/local/lib",
		LibExt:     "so",
		SysconfDir: "/usr/local/etc",
		Init:       BSDRC,
		PkgConfig:  "/usr/local/bin/pkg-config",
	},
	Darwin: {
		OS:         Darwin,
		Prefix:     "/usr/local",
		LibDir:     "/usr/local/lib",
		LibExt:     "dylib",
		SysconfDir: "/usr/local/etc",
		Init:       NoInit,
		PkgConfig:  "/usr/local/bin/pkg-config",
	},
}

// kernels maps a kernel name to the function choosing its OSID.
var kernels = map[string]func(Host) (OSID, error){
	KernelLinux:   linuxDistribution,
	KernelFreeBSD: func(Host) (OSID, error) { return FreeBSD, nil },
	KernelDarwin:  func(Host) (OSID, error) { return Darwin, nil },
}

// Resolve returns the profile for the host described by h.
func Resolve(h Host) (Profile, error) {
	kernel := h.Kernel()
	pick, ok := kernels[kernel]
	if !ok {
		return Profile{}, &UnsupportedPlatformError{Kernel: kernel}
	}
	id, err := pick(h)
	if err != nil {
		return Profile{}, err
	}
	return ProfileFor(id)
}

// ProfileFor returns the profile of a known OSID.
func ProfileFor(id OSID) (Profile, error) {
	p, ok := profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("no profile for os %q", id)
	}
	return p, nil
}

// Supported lists every OSID with a profile, sorted.
func Supported() []OSID {
	ids := make([]OSID, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func linuxDistribution(h Host) (OSID, error) {
	checked := make([]string, 0, len(linuxMarkers))
	for _, m := range linuxMarkers {
		if h.Exists(m.marker) {
			return m.os, nil
		}
		checked = append(checked, m.marker)
	}
	return "", &UnsupportedDistributionError{Checked: checked}
}
