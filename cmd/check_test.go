package cmd

import (
	"bytes"
	"testing"

	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProfile(t *testing.T, id platform.OSID) platform.Profile {
	t.Helper()
	p, err := platform.ProfileFor(id)
	require.NoError(t, err)
	return p
}

func TestWriteDependencyTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeDependencyTable(&out, spec.Default()))

	text := out.String()
	assert.Contains(t, text, "zeromq")
	assert.Contains(t, text, "https://github.com/zeromq/zeromq4-1/releases/download/v4.1.4/zeromq-4.1.4.tar.gz")
	assert.Contains(t, text, "https://github.com/zeromq/czmq/releases/download/v3.0.2/czmq-3.0.2.tar.gz")
}

func TestDestinations(t *testing.T) {
	s := spec.Default()
	tests := []struct {
		os   platform.OSID
		want map[string]string
		none []string
	}{
		{
			os: platform.CentOS,
			want: map[string]string{
				"inauth":                  "/usr/bin/inauth",
				"auth.json":               "/etc/intecture/auth.json",
				"lib/libzmq.so":           "/usr/lib64/libzmq.so.5",
				"lib/libczmq.so":          "/usr/lib64/libczmq.so.3",
				"lib/pkgconfig/libzmq.pc": "/usr/lib64/pkgconfig/libzmq.pc",
				"systemd/inauth.service":  "/lib/systemd/system/inauth.service",
				"init/inauth":             "/etc/init.d/inauth",
			},
			none: []string{"lib/libstdc++.so.6"},
		},
		{
			os: platform.FreeBSD,
			want: map[string]string{
				"inauth_cli":         "/usr/local/bin/inauth_cli",
				"auth.json":          "/usr/local/etc/intecture/auth.json",
				"lib/libzmq.so":      "/usr/local/lib/libzmq.so.5",
				"lib/libstdc++.so.6": "/usr/local/lib/libstdc++.so.6",
				"init/inauth":        "/usr/local/etc/rc.d/inauth",
			},
			none: []string{"systemd/inauth.service"},
		},
		{
			os: platform.Darwin,
			want: map[string]string{
				"lib/libzmq.dylib":  "/usr/local/lib/libzmq.5.dylib",
				"lib/libczmq.dylib": "/usr/local/lib/libczmq.3.dylib",
			},
			none: []string{"systemd/inauth.service", "init/inauth"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.os), func(t *testing.T) {
			got := map[string]string{}
			for _, d := range destinations(mustProfile(t, tt.os), s, s.Binaries) {
				got[d.bundle] = d.target
			}
			for bundle, target := range tt.want {
				assert.Equal(t, target, got[bundle], bundle)
			}
			for _, bundle := range tt.none {
				assert.NotContains(t, got, bundle)
			}
		})
	}
}

func TestCheckCommandWithOS(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTestConfig(t, dir)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"check", "--quiet", "--config", cfg, "--os", "debian"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
		checkOS = ""
		configFile = ""
	})

	require.NoError(t, RootCmd.Execute())
	assert.Contains(t, out.String(), "Platform: debian")
	assert.Contains(t, out.String(), "/usr/lib/libzmq.so.5")
}

func TestCheckCommandRejectsUnsafeConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfigFile(t, dir, `product: "inauth; rm -rf /"
dependencies: []
`)

	RootCmd.SetArgs([]string{"check", "--quiet", "--config", cfg, "--os", "debian"})
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		checkOS = ""
		configFile = ""
	})

	require.Error(t, RootCmd.Execute())
}
