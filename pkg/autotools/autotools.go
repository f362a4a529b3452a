// Package autotools wraps the classic configure/make/make-install workflow.
package autotools

import (
	"context"
	"os"
	"path/filepath"

	"github.com/intecture/inpack/pkg/runner"
)

// AutoTools drives Autotools-style builds inside one source tree.
type AutoTools struct {
	runner    runner.Runner
	sourceDir string
	env       map[string]string
}

// New returns an AutoTools building the tree at sourceDir.
func New(r runner.Runner, sourceDir string) *AutoTools {
	return &AutoTools{
		runner:    r,
		sourceDir: sourceDir,
		env:       make(map[string]string),
	}
}

// Env sets key=value for every command spawned later.
func (a *AutoTools) Env(key, value string) {
	a.env[key] = value
}

// Configure runs ./configure with --prefix and --libdir. Extra flags are
// appended after them. Trees shipped without a configure script are
// bootstrapped with ./autogen.sh first.
func (a *AutoTools) Configure(ctx context.Context, prefix, libdir string, args ...string) error {
	if _, err := os.Stat(filepath.Join(a.sourceDir, "configure")); os.IsNotExist(err) {
		if _, err := os.Stat(filepath.Join(a.sourceDir, "autogen.sh")); err == nil {
			if err := a.run(ctx, "sh", "./autogen.sh"); err != nil {
				return err
			}
		}
	}
	flags := make([]string, 0, 3+len(args))
	flags = append(flags, "./configure", "--prefix="+prefix, "--libdir="+libdir)
	return a.run(ctx, "sh", append(flags, args...)...)
}

// Build runs "make" with optional extra arguments.
func (a *AutoTools) Build(ctx context.Context, args ...string) error {
	return a.run(ctx, "make", args...)
}

// Install runs "make install" with optional extra arguments appended.
func (a *AutoTools) Install(ctx context.Context, args ...string) error {
	return a.run(ctx, "make", append([]string{"install"}, args...)...)
}

func (a *AutoTools) run(ctx context.Context, name string, args ...string) error {
	c := runner.Cmd{Name: name, Args: args, Dir: a.sourceDir}
	if len(a.env) > 0 {
		c.Env = make(map[string]string, len(a.env))
		for k, v := range a.env {
			c.Env[k] = v
		}
	}
	return a.runner.Run(ctx, c)
}
