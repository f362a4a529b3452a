package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/installer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	// Flags shared by install and uninstall
	installBundle string
	installRoot   string
	installDryRun bool
)

// InstallCommand represents the install command
var InstallCommand = &cobra.Command{
	Use:   "install",
	Short: "Install a bundle on this host",
	Long: `Installs an inpack bundle the same way its installer.sh does. --bundle
takes an unpacked bundle directory or a bundle tarball; a tarball is checked
against its .sha256 file when one sits next to it.

Libraries pkg-config already knows are left alone. The config file is
overwritten; files in the certificate directory are kept.`,
	Example: `  inpack install --bundle dist/debian/inauth-0.1.0.tar.gz

  # Stage into a directory instead of /
  inpack install --bundle inauth-0.1.0 --root /tmp/stage`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEngine(cmd, "install")
	},
}

// UninstallCommand represents the uninstall command
var UninstallCommand = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove a bundle's binaries, config and service files",
	Long: `Removes what install placed except shared libraries and headers. The
certificate and config directories are removed only when they are empty.
Files that are already gone are not an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEngine(cmd, "uninstall")
	},
}

func runEngine(cmd *cobra.Command, subcommand string) error {
	dir, cleanup, err := openBundle(installBundle)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := installer.New(dir, installRoot)
	if err != nil {
		return err
	}
	e.DryRun = installDryRun
	return e.Dispatch(commandContext(cmd), cmd.OutOrStdout(), []string{subcommand})
}

// openBundle returns a bundle directory for path, unpacking it first when
// path is an archive.
func openBundle(path string) (string, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to open bundle")
	}
	if info.IsDir() {
		return path, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "inpack-bundle-")
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create temporary directory")
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.WithError(err).Warnf("failed to remove %s", dir)
		}
	}
	if err := installer.Unpack(path, dir); err != nil {
		cleanup()
		return "", nil, err
	}
	return dir, cleanup, nil
}

func init() {
	for _, c := range []*cobra.Command{InstallCommand, UninstallCommand} {
		c.Flags().StringVarP(&installBundle, "bundle", "b", ".", "Bundle directory or tarball")
		c.Flags().StringVar(&installRoot, "root", "/", "Install below this directory")
		c.Flags().BoolVar(&installDryRun, "dry-run", false, "Log what would change without touching the filesystem")
	}
}
