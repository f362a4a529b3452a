package spec

// ProjectSpec is the packaging configuration of one product.
//
// Minimal example:
//
//	schema: v1
//	product: inauth
//	dependencies:
//	  - name: zeromq
//	    pkgconfig: libzmq
//	    version: 4.1.4
//	    url: https://github.com/zeromq/zeromq4-1/releases/download/v${VERSION}/zeromq-${VERSION}.tar.gz
//	    library: libzmq
//	    soversion: "5"
//	    headers: [zmq.h, zmq_utils.h]
type ProjectSpec struct {
	Schema string `yaml:"schema,omitempty"`
	// Product names the package directory, the service and the archive.
	Product string `yaml:"product"`
	// Binaries are the executables produced by the build. The first one
	// answers the version query.
	Binaries    []string `yaml:"binaries,omitempty"`
	VersionFlag string   `yaml:"version_flag,omitempty"`
	// ConfigDir is the directory below sysconfdir holding ConfigName and certs/.
	ConfigDir  string `yaml:"config_dir,omitempty"`
	ConfigName string `yaml:"config_name,omitempty"`

	Build BuildConfig `yaml:"build,omitempty"`

	// TemplatesDir overrides the embedded templates when set.
	TemplatesDir string      `yaml:"templates_dir,omitempty"`
	OutputDir    string      `yaml:"output_dir,omitempty"`
	WorkDir      string      `yaml:"work_dir,omitempty"`
	Compression  Compression `yaml:"compression,omitempty"`

	Dependencies []Dependency `yaml:"dependencies"`
}

// BuildConfig describes how to invoke the project toolchain.
type BuildConfig struct {
	Command   []string `yaml:"command,omitempty"`
	Dir       string   `yaml:"dir,omitempty"`
	TargetDir string   `yaml:"target_dir,omitempty"`
	// Manifest is the Cargo manifest consulted for binary names.
	Manifest string `yaml:"manifest,omitempty"`
}

// Dependency is one native library the product links against.
type Dependency struct {
	Name      string `yaml:"name"`
	PkgConfig string `yaml:"pkgconfig"`
	// Version must match the pkg-config reported version exactly.
	Version string `yaml:"version"`
	// URL may reference ${NAME}, ${VERSION} and ${TAG}.
	URL           string     `yaml:"url"`
	Library       string     `yaml:"library"`
	SOVersion     string     `yaml:"soversion"`
	Headers       []string   `yaml:"headers,omitempty"`
	ExtraLibs     []ExtraLib `yaml:"extra_libs,omitempty"`
	ConfigureArgs []string   `yaml:"configure_args,omitempty"`
}

// ExtraLib is a secondary shared object bundled with a dependency on one OS.
type ExtraLib struct {
	OS   string `yaml:"os"`
	Path string `yaml:"path"`
}

// Compression selects the archive compressor.
type Compression string

const (
	Gzip Compression = "gz"
	XZ   Compression = "xz"
)
