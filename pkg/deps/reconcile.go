// Package deps makes sure the native libraries a product links against are
// installed on the build host at exactly the pinned version.
package deps

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/archive"
	"github.com/intecture/inpack/pkg/asset"
	"github.com/intecture/inpack/pkg/autotools"
	"github.com/intecture/inpack/pkg/fetch"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/runner"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/pkg/errors"
)

// Action is what Reconcile did for one dependency.
type Action int

const (
	// Satisfied means the pinned version was already installed.
	Satisfied Action = iota
	// Rebuilt means the dependency was built and installed from source.
	Rebuilt
)

func (a Action) String() string {
	switch a {
	case Satisfied:
		return "satisfied"
	case Rebuilt:
		return "rebuilt"
	}
	return "unknown"
}

// Downloader fetches a URL to a local file.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// Result records the outcome for one dependency.
type Result struct {
	Name   string
	Action Action
	// Found is the version pkg-config reported before reconciling, empty
	// when the module was absent.
	Found string
}

// Reconciler builds missing or mismatched dependencies into the profile's
// prefix and libdir.
type Reconciler struct {
	Profile    platform.Profile
	Runner     runner.Runner
	Downloader Downloader
	// TempDir is the parent of per-build scratch directories. Empty means
	// the system default.
	TempDir string
}

// New returns a Reconciler that executes real commands and downloads.
func New(p platform.Profile) *Reconciler {
	return &Reconciler{
		Profile:    p,
		Runner:     runner.Exec{},
		Downloader: &fetch.Fetcher{Progress: fetch.LogProgress},
	}
}

// InstalledVersion asks pkg-config for the version of dep. ok is false when
// the module is unknown to pkg-config.
func (r *Reconciler) InstalledVersion(ctx context.Context, dep spec.Dependency) (version string, ok bool) {
	out, err := r.Runner.Output(ctx, runner.Cmd{
		Name: r.Profile.PkgConfig,
		Args: []string{"--modversion", dep.PkgConfig},
		Env:  r.env(),
	})
	if err != nil {
		log.WithField("module", dep.PkgConfig).Debugf("pkg-config query failed: %v", err)
		return "", false
	}
	return strings.TrimSpace(string(out)), true
}

// Reconcile ensures dep is installed at exactly dep.Version. The comparison
// is plain string equality, so "4.1.4" and "4.1.4.0" differ.
func (r *Reconciler) Reconcile(ctx context.Context, dep spec.Dependency) (Action, error) {
	res, err := r.reconcile(ctx, dep)
	return res.Action, err
}

// ReconcileAll reconciles deps in order and stops at the first failure.
// Later entries may link against earlier ones.
func (r *Reconciler) ReconcileAll(ctx context.Context, deps []spec.Dependency) ([]Result, error) {
	results := make([]Result, 0, len(deps))
	for _, dep := range deps {
		res, err := r.reconcile(ctx, dep)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Reconciler) reconcile(ctx context.Context, dep spec.Dependency) (Result, error) {
	logger := log.WithField("dependency", dep.Name)

	installed, ok := r.InstalledVersion(ctx, dep)
	res := Result{Name: dep.Name, Action: Satisfied, Found: installed}
	if ok && installed == dep.Version {
		logger.Infof("%s %s already installed", dep.PkgConfig, installed)
		return res, nil
	}
	if ok {
		logger.Infof("found %s %s, need %s; building from source", dep.PkgConfig, installed, dep.Version)
	} else {
		logger.Infof("%s not found; building %s from source", dep.PkgConfig, dep.Version)
	}

	res.Action = Rebuilt
	if err := r.build(ctx, dep); err != nil {
		return res, err
	}
	logger.Infof("installed %s %s", dep.Name, dep.Version)
	return res, nil
}

func (r *Reconciler) build(ctx context.Context, dep spec.Dependency) error {
	fail := func(stage Stage, err error) error {
		return &DependencyBuildFailedError{Name: dep.Name, Stage: stage, Err: err}
	}

	work, err := os.MkdirTemp(r.TempDir, "inpack-"+dep.Name+"-")
	if err != nil {
		return fail(StageFetch, errors.Wrap(err, "failed to create build directory"))
	}

	url, err := asset.SourceURL(dep)
	if err != nil {
		return fail(StageFetch, err)
	}
	filename, err := asset.SourceFilename(dep)
	if err != nil {
		return fail(StageFetch, err)
	}
	tarball := filepath.Join(work, filename)
	log.WithField("url", url).Debugf("downloading %s", dep.Name)
	if err := r.Downloader.Download(ctx, url, tarball); err != nil {
		return fail(StageFetch, err)
	}

	srcDir := filepath.Join(work, "src")
	if err := archive.NewExtractor(1).Extract(tarball, srcDir); err != nil {
		return fail(StageExtract, err)
	}

	at := autotools.New(r.Runner, srcDir)
	// Later dependencies find the ones installed before them.
	for k, v := range r.env() {
		at.Env(k, v)
	}
	if err := at.Configure(ctx, r.Profile.Prefix, r.Profile.LibDir, dep.ConfigureArgs...); err != nil {
		return fail(StageConfigure, err)
	}
	if err := at.Build(ctx); err != nil {
		return fail(StageBuild, err)
	}
	if err := at.Install(ctx); err != nil {
		return fail(StageInstall, err)
	}

	// Scratch space is only kept when a stage failed.
	if err := os.RemoveAll(work); err != nil {
		log.WithError(err).Warnf("failed to remove %s", work)
	}
	return nil
}

func (r *Reconciler) env() map[string]string {
	return map[string]string{"PKG_CONFIG_PATH": r.Profile.PkgConfigDir()}
}
