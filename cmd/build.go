package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/project"
	"github.com/spf13/cobra"
)

// BuildCommand represents the build command
var BuildCommand = &cobra.Command{
	Use:   "build",
	Short: "Compile the project and print its version",
	Long: `Runs the configured build command (cargo build --release by default),
checks every binary exists in the target directory and prints the version
the first binary reports.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Running build command...")

		s, err := loadSpec(configFile)
		if err != nil {
			return err
		}
		art, err := project.NewBuilder(s).Build(commandContext(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), art.Version)
		return nil
	},
}
