package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/config"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/spf13/cobra"
)

// loadSpec loads the --config file, or discovers one, and validates it.
func loadSpec(cfgFile string) (*spec.ProjectSpec, error) {
	s, path, err := config.LoadOrDiscover(cfgFile)
	if err != nil {
		return nil, err
	}
	if path == "" {
		log.Info("No config file found, using built-in defaults")
	} else {
		log.Debugf("Using config file: %s", path)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s, nil
}

// resolveProfile returns the profile named by osFlag, or the running
// host's profile when osFlag is empty.
func resolveProfile(osFlag string) (platform.Profile, error) {
	if osFlag == "" {
		p, err := platform.Detect()
		if err != nil {
			return platform.Profile{}, err
		}
		log.WithField("os", p.OS).Debug("detected platform")
		return p, nil
	}
	return platform.ProfileFor(platform.OSID(osFlag))
}

func supportedOSList() string {
	ids := platform.Supported()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// promptForConfirmation asks message on out and reads the answer from in.
func promptForConfirmation(in io.Reader, out io.Writer, message string) bool {
	fmt.Fprintf(out, "%s (y/N): ", message)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// commandContext returns the context fang installed, or Background when the
// command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
