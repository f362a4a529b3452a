package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageTree(t *testing.T, dir string) {
	t.Helper()
	files := map[string]os.FileMode{
		"inauth":             0755,
		"inauth_cli":         0755,
		"installer.sh":       0755,
		"include/zmq.h":      0644,
		"lib/libzmq.so":      0644,
		"lib/pkgconfig/a.pc": 0644,
	}
	for name, mode := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(name), mode))
		require.NoError(t, os.Chmod(p, mode))
	}
}

func listTarGz(t *testing.T, path string) []*tar.Header {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	var hdrs []*tar.Header
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return hdrs
		}
		require.NoError(t, err)
		hdrs = append(hdrs, hdr)
	}
}

func TestCreateIsDeterministic(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "a")
	second := filepath.Join(tmpDir, "b")
	stageTree(t, first)
	stageTree(t, second)

	// Different mtimes must not leak into the archive.
	later := time.Now().Add(48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(second, "inauth"), later, later))

	for _, format := range []Format{FormatTarGz, FormatTarXz} {
		t.Run(string(format), func(t *testing.T) {
			out1 := filepath.Join(tmpDir, "out1", "inauth-0.1.0."+string(format))
			out2 := filepath.Join(tmpDir, "out2", "inauth-0.1.0."+string(format))
			require.NoError(t, Create(first, "inauth-0.1.0", out1, format))
			require.NoError(t, Create(second, "inauth-0.1.0", out2, format))

			b1, err := os.ReadFile(out1)
			require.NoError(t, err)
			b2, err := os.ReadFile(out2)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(b1, b2), "archives differ")
		})
	}
}

func TestCreateEntries(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "stage")
	stageTree(t, src)
	out := filepath.Join(tmpDir, "dist", "inauth-0.1.0.tar.gz")
	require.NoError(t, Create(src, "inauth-0.1.0", out, FormatTarGz))

	hdrs := listTarGz(t, out)
	var names []string
	for _, h := range hdrs {
		names = append(names, h.Name)
		assert.Equal(t, 0, h.Uid)
		assert.Equal(t, 0, h.Gid)
		assert.True(t, h.ModTime.Equal(Epoch), "%s has mtime %s", h.Name, h.ModTime)
	}
	want := []string{
		"inauth-0.1.0/",
		"inauth-0.1.0/inauth",
		"inauth-0.1.0/inauth_cli",
		"inauth-0.1.0/include/",
		"inauth-0.1.0/include/zmq.h",
		"inauth-0.1.0/installer.sh",
		"inauth-0.1.0/lib/",
		"inauth-0.1.0/lib/libzmq.so",
		"inauth-0.1.0/lib/pkgconfig/",
		"inauth-0.1.0/lib/pkgconfig/a.pc",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(0755), hdrs[1].Mode)
	assert.Equal(t, int64(0644), hdrs[4].Mode)
}

func TestCreateRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "stage")
	stageTree(t, src)
	out := filepath.Join(tmpDir, "inauth-0.1.0.tar.xz")
	require.NoError(t, Create(src, "inauth-0.1.0", out, FormatTarXz))

	dest := filepath.Join(tmpDir, "unpacked")
	require.NoError(t, NewExtractor(1).Extract(out, dest))
	content, err := os.ReadFile(filepath.Join(dest, "lib", "pkgconfig", "a.pc"))
	require.NoError(t, err)
	assert.Equal(t, "lib/pkgconfig/a.pc", string(content))
}

func TestCreateUnsupportedFormat(t *testing.T) {
	err := Create(t.TempDir(), "x", filepath.Join(t.TempDir(), "x.zip"), FormatZip)
	require.Error(t, err)
}
