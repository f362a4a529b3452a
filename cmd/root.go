package cmd

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/intecture/inpack/pkg/config"
	"github.com/spf13/cobra"
)

// Global flags.
var (
	configFile string
	verbose    bool
	quiet      bool
)

// RootCmd is the inpack command tree; cmd/inpack hands it to fang.
var RootCmd = &cobra.Command{
	Use:   "inpack",
	Short: "Build, package and install Intecture Auth for the host platform",
	Long: `inpack turns a Cargo project with native library dependencies into a
self-contained bundle for one operating system.

On a build host it detects the platform, makes sure the exact dependency
versions are installed (building them from source when they are not),
compiles the project and writes a versioned tarball with an installer script.
On a target host the bundled installer.sh, or "inpack install", places the
binaries, libraries, config and service files.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose, quiet)
		log.WithField("config", configFile).Debug("flags parsed")
	},
}

// setupLogging routes apex/log through the cli handler. --verbose wins
// over --quiet.
func setupLogging(verbose, quiet bool) {
	log.SetHandler(cli.Default)
	switch {
	case verbose:
		log.SetLevel(log.DebugLevel)
	case quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

func init() {
	// Keep commands in pipeline order
	cobra.EnableCommandSorting = false

	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to inpack config file (default: "+config.DefaultPath+")")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Increase log verbosity")
	RootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress progress output")

	RootCmd.AddGroup(&cobra.Group{
		ID:    "build",
		Title: "Build Host Commands:",
	})
	RootCmd.AddGroup(&cobra.Group{
		ID:    "target",
		Title: "Target Host Commands:",
	})
	RootCmd.AddGroup(&cobra.Group{
		ID:    "utility",
		Title: "Utility Commands:",
	})

	RootCmd.SetHelpCommandGroupID("utility")
	RootCmd.SetCompletionCommandGroupID("utility")

	for _, c := range []*cobra.Command{InitCommand, CheckCommand, DepsCommand, BuildCommand, PackageCommand} {
		c.GroupID = "build"
		RootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{InstallCommand, UninstallCommand} {
		c.GroupID = "target"
		RootCmd.AddCommand(c)
	}
	DetectCommand.GroupID = "utility"
	RootCmd.AddCommand(DetectCommand)
}
