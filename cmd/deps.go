package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/deps"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/spf13/cobra"
)

// DepsCommand represents the deps command
var DepsCommand = &cobra.Command{
	Use:   "deps",
	Short: "Install the pinned native dependencies on this host",
	Long: `Asks pkg-config for the installed version of every dependency. Any
dependency that is absent or at a different version is downloaded, built
with configure/make and installed into the host's prefix and libdir.
Dependencies are handled in the configured order; the first failure stops
the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Running deps command...")

		s, err := loadSpec(configFile)
		if err != nil {
			return err
		}
		p, err := resolveProfile("")
		if err != nil {
			return err
		}
		return reconcileDeps(commandContext(cmd), cmd.OutOrStdout(), p, s)
	},
}

func reconcileDeps(ctx context.Context, out io.Writer, p platform.Profile, s *spec.ProjectSpec) error {
	results, err := deps.New(p).ReconcileAll(ctx, s.Dependencies)
	writeResults(out, s, results)
	if err != nil {
		log.WithError(err).Error("Dependency reconciliation failed")
		return err
	}
	log.Info("✓ Dependencies satisfied")
	return nil
}

func writeResults(w io.Writer, s *spec.ProjectSpec, results []deps.Result) {
	if len(results) == 0 {
		return
	}
	required := make(map[string]string, len(s.Dependencies))
	for _, d := range s.Dependencies {
		required[d.Name] = d.Version
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPENDENCY\tREQUIRED\tFOUND\tACTION")
	fmt.Fprintln(tw, "----------\t--------\t-----\t------")
	for _, r := range results {
		found := r.Found
		if found == "" {
			found = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, required[r.Name], found, r.Action)
	}
	tw.Flush()
}
