package asset

import (
	"testing"

	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceURL(t *testing.T) {
	tests := []struct {
		name    string
		dep     spec.Dependency
		want    string
		wantErr bool
	}{
		{
			name: "version and tag",
			dep: spec.Dependency{
				Name:    "zeromq",
				Version: "4.1.4",
				URL:     "https://github.com/zeromq/zeromq4-1/releases/download/${TAG}/zeromq-${VERSION}.tar.gz",
			},
			want: "https://github.com/zeromq/zeromq4-1/releases/download/v4.1.4/zeromq-4.1.4.tar.gz",
		},
		{
			name: "name variable",
			dep: spec.Dependency{
				Name:    "czmq",
				Version: "3.0.2",
				URL:     "https://github.com/zeromq/${NAME}/releases/download/v${VERSION}/${NAME}-${VERSION}.tar.gz",
			},
			want: "https://github.com/zeromq/czmq/releases/download/v3.0.2/czmq-3.0.2.tar.gz",
		},
		{
			name: "leading v in version is not doubled",
			dep:  spec.Dependency{Name: "x", Version: "v1.0.0", URL: "https://example.com/${TAG}/${VERSION}"},
			want: "https://example.com/v1.0.0/1.0.0",
		},
		{
			name: "unknown variable expands empty",
			dep:  spec.Dependency{Name: "x", Version: "1.0.0", URL: "https://example.com/${NOPE}x.tar.gz"},
			want: "https://example.com/x.tar.gz",
		},
		{
			name:    "command substitution",
			dep:     spec.Dependency{Name: "x", Version: "1.0.0", URL: "https://example.com/$(id)"},
			wantErr: true,
		},
		{
			name:    "not http",
			dep:     spec.Dependency{Name: "x", Version: "1.0.0", URL: "file:///tmp/x.tar.gz"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SourceURL(tt.dep)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceFilename(t *testing.T) {
	for _, d := range spec.Default().Dependencies {
		name, err := SourceFilename(d)
		require.NoError(t, err)
		assert.Equal(t, d.Name+"-"+d.Version+".tar.gz", name)
	}

	_, err := SourceFilename(spec.Dependency{Name: "x", Version: "1.0.0", URL: "https://example.com/"})
	assert.Error(t, err)
}

func TestLibraryNames(t *testing.T) {
	tests := []struct {
		os            platform.OSID
		wantFile      string
		wantVersioned string
	}{
		{platform.Debian, "libzmq.so", "libzmq.so.5"},
		{platform.CentOS, "libzmq.so", "libzmq.so.5"},
		{platform.FreeBSD, "libzmq.so", "libzmq.so.5"},
		{platform.Darwin, "libzmq.dylib", "libzmq.5.dylib"},
	}
	for _, tt := range tests {
		t.Run(string(tt.os), func(t *testing.T) {
			p, err := platform.ProfileFor(tt.os)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, LibFileName(p, "libzmq"))
			assert.Equal(t, tt.wantVersioned, VersionedLibName(p, "libzmq", "5"))
		})
	}
}
