package spec

import "path"

const (
	SchemaV1 = "v1"

	DefaultVersionFlag = "--version"
	DefaultOutputDir   = "dist"
	DefaultManifest    = "Cargo.toml"
	DefaultTargetDir   = "target/release"
)

// DefaultBuildCommand is the release build of a Cargo project.
var DefaultBuildCommand = []string{"cargo", "build", "--release"}

// SetDefaults fills unset fields of the ProjectSpec.
func (s *ProjectSpec) SetDefaults() {
	if s.Schema == "" {
		s.Schema = SchemaV1
	}
	if s.VersionFlag == "" {
		s.VersionFlag = DefaultVersionFlag
	}
	if s.ConfigDir == "" {
		s.ConfigDir = "intecture"
	}
	if s.ConfigName == "" {
		s.ConfigName = "auth.json"
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.WorkDir == "" {
		s.WorkDir = path.Join(s.OutputDir, "work")
	}
	if s.Compression == "" {
		s.Compression = Gzip
	}
	if len(s.Build.Command) == 0 {
		s.Build.Command = append([]string(nil), DefaultBuildCommand...)
	}
	if s.Build.Dir == "" {
		s.Build.Dir = "."
	}
	if s.Build.TargetDir == "" {
		s.Build.TargetDir = DefaultTargetDir
	}
	if s.Build.Manifest == "" {
		s.Build.Manifest = DefaultManifest
	}
}

// Default returns the configuration for packaging Intecture Auth.
func Default() *ProjectSpec {
	s := &ProjectSpec{
		Product:  "inauth",
		Binaries: []string{"inauth", "inauth_cli"},
		Dependencies: []Dependency{
			{
				Name:      "zeromq",
				PkgConfig: "libzmq",
				Version:   "4.1.4",
				URL:       "https://github.com/zeromq/zeromq4-1/releases/download/v${VERSION}/zeromq-${VERSION}.tar.gz",
				Library:   "libzmq",
				SOVersion: "5",
				Headers:   []string{"zmq.h", "zmq_utils.h"},
				ExtraLibs: []ExtraLib{
					{OS: "freebsd", Path: "/usr/local/lib/gcc48/libstdc++.so.6"},
				},
				ConfigureArgs: []string{"--without-libsodium"},
			},
			{
				Name:      "czmq",
				PkgConfig: "libczmq",
				Version:   "3.0.2",
				URL:       "https://github.com/zeromq/czmq/releases/download/v${VERSION}/czmq-${VERSION}.tar.gz",
				Library:   "libczmq",
				SOVersion: "3",
				Headers: []string{
					"czmq.h", "czmq_library.h", "czmq_prelude.h",
					"zactor.h", "zarmour.h", "zauth.h", "zbeacon.h", "zcert.h", "zcertstore.h",
					"zchunk.h", "zclock.h", "zconfig.h", "zdigest.h", "zdir.h", "zdir_patch.h",
					"zfile.h", "zframe.h", "zhash.h", "zhashx.h", "ziflist.h", "zlist.h",
					"zlistx.h", "zloop.h", "zmonitor.h", "zmsg.h", "zpoller.h", "zproxy.h",
					"zrex.h", "zsock.h", "zsock_option.h", "zstr.h", "zsys.h", "zuuid.h",
				},
			},
		},
	}
	s.SetDefaults()
	return s
}

// ExtraLibsFor returns the extra library paths of d that apply to os.
func (d Dependency) ExtraLibsFor(os string) []string {
	var paths []string
	for _, e := range d.ExtraLibs {
		if e.OS == os {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// ConfigPath is the config file location relative to sysconfdir.
func (s *ProjectSpec) ConfigPath() string {
	return path.Join(s.ConfigDir, s.ConfigName)
}
