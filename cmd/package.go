package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/assemble"
	"github.com/intecture/inpack/pkg/project"
	"github.com/spf13/cobra"
)

var (
	// Flags for package command
	packageSkipDeps   bool
	packageOutput     string
	packageOS         string
	packageSourceRoot string
)

// PackageCommand represents the package command
var PackageCommand = &cobra.Command{
	Use:   "package",
	Short: "Detect, install dependencies, build and write the bundle",
	Long: `Runs the whole build host pipeline once:

  1. resolve the platform profile
  2. install the pinned dependencies (unless --skip-deps)
  3. build the project and query its version
  4. stage the bundle, render installer.sh, config and service files
  5. write <output>/<os>/<product>-<version>.tar.gz and its .sha256

Nothing is written to the output directory unless every step succeeds.`,
	Example: `  # Bundle for this host
  inpack package

  # Bundle for FreeBSD from libraries staged below /srv/freebsd-root
  inpack package --os freebsd --skip-deps --source-root /srv/freebsd-root`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Running package command...")
		ctx := commandContext(cmd)

		s, err := loadSpec(configFile)
		if err != nil {
			return err
		}
		if packageOutput != "" {
			s.OutputDir = packageOutput
		}
		if packageOS != "" && !packageSkipDeps {
			return fmt.Errorf("--os packages for another platform and requires --skip-deps")
		}

		p, err := resolveProfile(packageOS)
		if err != nil {
			return err
		}
		log.Infof("Packaging for %s", p)

		if packageSkipDeps {
			log.Info("Skipping dependency reconciliation")
		} else if err := reconcileDeps(ctx, cmd.OutOrStdout(), p, s); err != nil {
			return err
		}

		art, err := project.NewBuilder(s).Build(ctx)
		if err != nil {
			return err
		}

		a := assemble.New(s, p)
		a.SourceRoot = packageSourceRoot
		m, err := a.Assemble(ctx, art)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", m.Checksum, m.Archive)
		return nil
	},
}

func init() {
	PackageCommand.Flags().BoolVar(&packageSkipDeps, "skip-deps", false, "Do not check or build dependencies")
	PackageCommand.Flags().StringVarP(&packageOutput, "output", "o", "", "Output directory (default: output_dir from config)")
	PackageCommand.Flags().StringVar(&packageOS, "os", "", "Package for this OS instead of the host ("+supportedOSList()+")")
	PackageCommand.Flags().StringVar(&packageSourceRoot, "source-root", "", "Read libraries and headers below this directory")
}
