// Package project compiles the product and reports the version it was
// built at.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/runner"
	"github.com/intecture/inpack/pkg/spec"
)

// BuildFailedError reports a failed compile or an unusable build result.
type BuildFailedError struct {
	Reason string
	Err    error
}

func (e *BuildFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build failed: %s: %v", e.Reason, e.Err)
	}
	return "build failed: " + e.Reason
}

func (e *BuildFailedError) Unwrap() error {
	return e.Err
}

// Artifacts is the result of a successful build.
type Artifacts struct {
	Version string
	// Names are the binary names in configured order.
	Names []string
	// Paths are absolute paths to the built binaries, parallel to Names.
	Paths []string
}

// Builder runs the project toolchain.
type Builder struct {
	Spec   *spec.ProjectSpec
	Runner runner.Runner
}

// NewBuilder returns a Builder executing real commands.
func NewBuilder(s *spec.ProjectSpec) *Builder {
	return &Builder{Spec: s, Runner: runner.Exec{}}
}

// Build compiles the project and queries the version from the first binary.
func (b *Builder) Build(ctx context.Context) (*Artifacts, error) {
	cfg := b.Spec.Build
	manifest := b.manifest()

	names := b.binaries(manifest)
	if len(names) == 0 {
		return nil, &BuildFailedError{Reason: "no binaries configured and none found in " + cfg.Manifest}
	}
	if len(cfg.Command) == 0 {
		return nil, &BuildFailedError{Reason: "no build command configured"}
	}

	log.Infof("building %s", b.Spec.Product)
	cmd := runner.Cmd{Name: cfg.Command[0], Args: cfg.Command[1:], Dir: cfg.Dir}
	if err := b.Runner.Run(ctx, cmd); err != nil {
		return nil, &BuildFailedError{Reason: "build command failed", Err: err}
	}

	targetDir, err := b.targetDir()
	if err != nil {
		return nil, &BuildFailedError{Reason: "cannot resolve target dir", Err: err}
	}
	art := &Artifacts{Names: names}
	for _, name := range names {
		p := filepath.Join(targetDir, name)
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return nil, &BuildFailedError{Reason: fmt.Sprintf("binary %s missing from %s", name, targetDir)}
		}
		art.Paths = append(art.Paths, p)
	}

	version, err := b.version(ctx, art.Paths[0])
	if err != nil {
		return nil, err
	}
	art.Version = version

	if manifest != nil && manifest.Package.Version != "" && manifest.Package.Version != version {
		log.Warnf("%s declares version %s but %s reports %s",
			cfg.Manifest, manifest.Package.Version, names[0], version)
	}
	log.WithField("version", version).Infof("built %s", strings.Join(names, ", "))
	return art, nil
}

// Binaries returns the configured binary names, falling back to the Cargo
// manifest.
func (b *Builder) Binaries() []string {
	return b.binaries(b.manifest())
}

func (b *Builder) binaries(manifest *CargoManifest) []string {
	if len(b.Spec.Binaries) > 0 || manifest == nil {
		return b.Spec.Binaries
	}
	names := manifest.BinaryNames()
	log.Debugf("binaries from %s: %s", b.Spec.Build.Manifest, strings.Join(names, ", "))
	return names
}

// version runs the binary with the version flag. Output such as
// "inauth 0.1.0" yields its last word.
func (b *Builder) version(ctx context.Context, bin string) (string, error) {
	out, err := b.Runner.Output(ctx, runner.Cmd{Name: bin, Args: []string{b.Spec.VersionFlag}})
	if err != nil {
		return "", &BuildFailedError{Reason: "version query failed", Err: err}
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", &BuildFailedError{Reason: fmt.Sprintf("%s %s printed no version", filepath.Base(bin), b.Spec.VersionFlag)}
	}
	return fields[len(fields)-1], nil
}

func (b *Builder) targetDir() (string, error) {
	dir := b.Spec.Build.TargetDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(b.Spec.Build.Dir, dir)
	}
	return filepath.Abs(dir)
}

// manifest returns nil when no readable Cargo manifest exists.
func (b *Builder) manifest() *CargoManifest {
	if b.Spec.Build.Manifest == "" {
		return nil
	}
	p := b.Spec.Build.Manifest
	if !filepath.IsAbs(p) {
		p = filepath.Join(b.Spec.Build.Dir, p)
	}
	m, err := ReadManifest(p)
	if err != nil {
		log.WithError(err).Debug("no cargo manifest")
		return nil
	}
	return m
}
