package cmd

import (
	"fmt"
	"io"
	"path"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/asset"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/project"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/spf13/cobra"
)

var (
	// Flags for check command
	checkOS string
)

// CheckCommand represents the check command
var CheckCommand = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and show the packaging plan",
	Long: `Checks an inpack configuration by:
- Validating the configuration and every value substituted into shell text
- Resolving the platform profile of this host (or of --os)
- Listing the dependency pins with their resolved source URLs
- Listing where each bundled file lands on a target host`,
	Example: `  # Plan for this host
  inpack check

  # Plan for a FreeBSD bundle
  inpack check --os freebsd`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("Running check command...")

		s, err := loadSpec(configFile)
		if err != nil {
			log.WithError(err).Error("Config validation failed")
			return err
		}
		log.Info("✓ Config validation passed")

		p, err := resolveProfile(checkOS)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Platform: %s\n\n", p)
		if err := writeDependencyTable(out, s); err != nil {
			return err
		}
		fmt.Fprintln(out)
		writeDestinationTable(out, p, s, project.NewBuilder(s).Binaries())

		log.Info("✓ Check completed successfully")
		return nil
	},
}

// writeDependencyTable lists each dependency pin with its source URL.
func writeDependencyTable(w io.Writer, s *spec.ProjectSpec) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPENDENCY\tPKGCONFIG\tVERSION\tSOURCE")
	fmt.Fprintln(tw, "----------\t---------\t-------\t------")
	for _, d := range s.Dependencies {
		url, err := asset.SourceURL(d)
		if err != nil {
			return fmt.Errorf("dependency %s: %w", d.Name, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.PkgConfig, d.Version, url)
	}
	return tw.Flush()
}

type destination struct {
	bundle string
	target string
	note   string
}

// destinations maps bundle files to their install location under p.
func destinations(p platform.Profile, s *spec.ProjectSpec, binaries []string) []destination {
	var ds []destination
	for _, b := range binaries {
		ds = append(ds, destination{b, path.Join(p.BinDir(), b), ""})
	}
	ds = append(ds, destination{s.ConfigName, path.Join(p.SysconfDir, s.ConfigPath()), ""})
	for _, d := range s.Dependencies {
		lib := asset.LibFileName(p, d.Library)
		versioned := asset.VersionedLibName(p, d.Library, d.SOVersion)
		ds = append(ds, destination{"lib/" + lib, path.Join(p.LibDir, versioned), "linked as " + lib})
		for _, extra := range d.ExtraLibsFor(string(p.OS)) {
			base := path.Base(extra)
			ds = append(ds, destination{"lib/" + base, path.Join(p.LibDir, base), ""})
		}
		pc := d.PkgConfig + ".pc"
		ds = append(ds, destination{"lib/pkgconfig/" + pc, path.Join(p.PkgConfigDir(), pc), ""})
		if len(d.Headers) > 0 {
			ds = append(ds, destination{"include/*", p.IncludeDir(), fmt.Sprintf("%d headers", len(d.Headers))})
		}
	}
	switch p.OS {
	case platform.Darwin:
	case platform.FreeBSD:
		ds = append(ds, destination{"init/" + s.Product, path.Join(p.Prefix, "etc/rc.d", s.Product), "bsd-rc"})
	default:
		ds = append(ds,
			destination{"systemd/" + s.Product + ".service", path.Join("/lib/systemd/system", s.Product+".service"), "when systemd runs"},
			destination{"init/" + s.Product, path.Join("/etc/init.d", s.Product), "otherwise"},
		)
	}
	return ds
}

func writeDestinationTable(w io.Writer, p platform.Profile, s *spec.ProjectSpec, binaries []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUNDLE FILE\tTARGET PATH\tNOTE")
	fmt.Fprintln(tw, "-----------\t-----------\t----")
	for _, d := range destinations(p, s, binaries) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.bundle, d.target, d.note)
	}
	tw.Flush()
}

func init() {
	CheckCommand.Flags().StringVar(&checkOS, "os", "", "Plan for this OS instead of the host ("+supportedOSList()+")")
}
