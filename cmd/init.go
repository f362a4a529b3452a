package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/goccy/go-yaml"
	"github.com/intecture/inpack/pkg/config"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/spf13/cobra"
)

var (
	// Flags for init command
	initOutputFile string
	initForce      bool // Skip confirmation when overwriting existing files
)

// InitCommand represents the init command
var InitCommand = &cobra.Command{
	Use:   "init",
	Short: "Write the default inpack config file",
	Long: `Writes the built-in Intecture Auth packaging configuration to
.config/inpack.yml so it can be edited: dependency pins, source URLs,
binaries, config file name and build command.`,
	Example: `  # Write .config/inpack.yml
  inpack init

  # Print the defaults instead
  inpack init -o -

  # Overwrite an existing config without confirmation
  inpack init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Infof("Running init command...")

		confirm := func(message string) bool {
			return promptForConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(), message)
		}
		return writeDefaultConfig(cmd.OutOrStdout(), initOutputFile, initForce, confirm)
	},
}

// renderDefaultConfig marshals the built-in ProjectSpec.
func renderDefaultConfig() ([]byte, error) {
	data, err := yaml.Marshal(spec.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}
	header := "# inpack configuration, see `inpack check` for the resolved plan\n"
	return append([]byte(header), data...), nil
}

func writeDefaultConfig(stdout io.Writer, output string, force bool, confirm func(string) bool) error {
	yamlData, err := renderDefaultConfig()
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		log.Debug("Writing config to stdout")
		_, err := stdout.Write(yamlData)
		return err
	}

	log.Infof("Writing config to file: %s", output)
	if _, err := os.Stat(output); err == nil {
		if !force {
			message := fmt.Sprintf("File %s already exists. Overwrite?", output)
			if !confirm(message) {
				log.Info("Operation cancelled by user")
				return fmt.Errorf("operation cancelled: file %s already exists", output)
			}
		}
		log.Infof("Overwriting existing file: %s", output)
	}

	outputDir := filepath.Dir(output)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	if err := os.WriteFile(output, yamlData, 0644); err != nil {
		return fmt.Errorf("failed to write config to file %s: %w", output, err)
	}
	log.Infof("Config successfully written to %s", output)
	return nil
}

func init() {
	InitCommand.Flags().StringVarP(&initOutputFile, "output", "o", config.DefaultPath, "Write config to file (use '-' for stdout)")
	InitCommand.Flags().BoolVar(&initForce, "force", false, "Skip confirmation when overwriting existing files")
}
