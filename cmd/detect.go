package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/spf13/cobra"
)

// Style definitions
var (
	// Color profile detection
	colorProfile = colorprofile.Detect(os.Stdout, os.Environ())

	headerStyle = func() lipgloss.Style {
		if colorProfile == colorprofile.TrueColor || colorProfile == colorprofile.ANSI256 {
			return lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))
		}
		return lipgloss.NewStyle().Bold(true)
	}()

	labelStyle = func() lipgloss.Style {
		if colorProfile == colorprofile.TrueColor || colorProfile == colorprofile.ANSI256 {
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("241")).
				Width(12)
		}
		return lipgloss.NewStyle().Width(12)
	}()

	separatorStyle = func() lipgloss.Style {
		if colorProfile == colorprofile.TrueColor || colorProfile == colorprofile.ANSI256 {
			return lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
		}
		return lipgloss.NewStyle().Faint(true)
	}()
)

var detectAll bool

// DetectCommand represents the detect command
var DetectCommand = &cobra.Command{
	Use:   "detect",
	Short: "Show the platform profile of this host",
	Long: `Identifies the operating system and Linux distribution of this host and
prints the filesystem conventions bundles for it use: prefix, library
directory and extension, sysconfdir, init system and pkg-config path.`,
	Example: `  inpack detect

  # Every profile inpack knows
  inpack detect --all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if detectAll {
			for i, id := range platform.Supported() {
				p, err := platform.ProfileFor(id)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out, separatorStyle.Render(strings.Repeat("─", 40)))
				}
				printProfile(out, p)
			}
			return nil
		}

		p, err := platform.Detect()
		if err != nil {
			return err
		}
		printProfile(out, p)
		return nil
	},
}

func printProfile(w io.Writer, p platform.Profile) {
	fmt.Fprintln(w, headerStyle.Render(string(p.OS)))
	rows := [][2]string{
		{"prefix", p.Prefix},
		{"libdir", p.LibDir},
		{"libext", p.LibExt},
		{"sysconfdir", p.SysconfDir},
		{"init", string(p.Init)},
		{"pkg-config", p.PkgConfig},
	}
	for _, r := range rows {
		fmt.Fprintln(w, labelStyle.Render(r[0])+r[1])
	}
}

func init() {
	DetectCommand.Flags().BoolVar(&detectAll, "all", false, "Print every supported profile")
}
