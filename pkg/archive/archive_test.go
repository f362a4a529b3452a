package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// sourceTree mirrors the layout of a release tarball such as zeromq-4.1.4.tar.gz.
var sourceTree = []tarEntry{
	{name: "zeromq-4.1.4/", dir: true},
	{name: "zeromq-4.1.4/configure", body: "#!/bin/sh\n", mode: 0755},
	{name: "zeromq-4.1.4/include/zmq.h", body: "/* zmq */\n"},
	{name: "zeromq-4.1.4/include/zmq_utils.h", body: "/* utils */\n"},
}

type tarEntry struct {
	name     string
	body     string
	mode     int64
	dir      bool
	linkname string
}

func writeTarball(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	var w io.WriteCloser = nopCloser{file}
	switch DetectFormat(path) {
	case FormatTarGz:
		w = gzip.NewWriter(file)
	case FormatTarXz:
		w, err = xz.NewWriter(file)
		require.NoError(t, err)
	}

	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: e.mode, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if hdr.Mode == 0 {
			hdr.Mode = 0644
		}
		switch {
		case e.dir:
			hdr.Typeflag, hdr.Size, hdr.Mode = tar.TypeDir, 0, 0755
		case e.linkname != "":
			hdr.Typeflag, hdr.Size, hdr.Linkname = tar.TypeSymlink, 0, e.linkname
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, w.Close())
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"zeromq-4.1.4.tar.gz": FormatTarGz,
		"czmq-3.0.2.tgz":      FormatTarGz,
		"inauth-0.1.0.tar.xz": FormatTarXz,
		"source.TXZ":          FormatTarXz,
		"source.tar":          FormatTar,
		"source.zip":          FormatZip,
		"auth.json.gz":        FormatUnknown,
		"inauth":              FormatUnknown,
	}
	for name, want := range tests {
		assert.Equal(t, want, DetectFormat(name), name)
	}
}

func TestExtractTarballs(t *testing.T) {
	for _, name := range []string{"zeromq-4.1.4.tar.gz", "zeromq-4.1.4.tar.xz", "zeromq-4.1.4.tar"} {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			src := filepath.Join(tmpDir, name)
			writeTarball(t, src, sourceTree)

			destDir := filepath.Join(tmpDir, "src")
			require.NoError(t, NewExtractor(1).Extract(src, destDir))

			content, err := os.ReadFile(filepath.Join(destDir, "include", "zmq.h"))
			require.NoError(t, err)
			assert.Equal(t, "/* zmq */\n", string(content))

			info, err := os.Stat(filepath.Join(destDir, "configure"))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

			assert.NoDirExists(t, filepath.Join(destDir, "zeromq-4.1.4"))
		})
	}
}

func TestExtractWithoutStrip(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "czmq-3.0.2.tar.gz")
	writeTarball(t, src, sourceTree)

	destDir := filepath.Join(tmpDir, "out")
	require.NoError(t, Extract(src, destDir, 0))
	assert.FileExists(t, filepath.Join(destDir, "zeromq-4.1.4", "include", "zmq_utils.h"))
}

func TestExtractSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "links.tar.gz")
	writeTarball(t, src, []tarEntry{
		{name: "pkg/lib/libzmq.so.5", body: "elf"},
		{name: "pkg/lib/libzmq.so", linkname: "libzmq.so.5"},
	})

	destDir := filepath.Join(tmpDir, "out")
	require.NoError(t, NewExtractor(1).Extract(src, destDir))

	target, err := os.Readlink(filepath.Join(destDir, "lib", "libzmq.so"))
	require.NoError(t, err)
	assert.Equal(t, "libzmq.so.5", target)
}

func TestExtractRejectsTraversal(t *testing.T) {
	tests := []struct {
		name    string
		entries []tarEntry
	}{
		{name: "dotdot path", entries: []tarEntry{{name: "../evil", body: "x"}}},
		{name: "escaping symlink", entries: []tarEntry{{name: "link", linkname: "../../etc/passwd"}}},
		{name: "absolute symlink", entries: []tarEntry{{name: "link", linkname: "/etc/passwd"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			src := filepath.Join(tmpDir, "evil.tar.gz")
			writeTarball(t, src, tt.entries)

			err := NewExtractor(0).Extract(src, filepath.Join(tmpDir, "out"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid")
		})
	}
}

func TestExtractZip(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "source.zip")

	file, err := os.Create(src)
	require.NoError(t, err)
	zw := zip.NewWriter(file)
	for name, body := range map[string]string{"root/configure": "#!/bin/sh\n", "root/src/zmq.cpp": "int main;"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	destDir := filepath.Join(tmpDir, "out")
	require.NoError(t, NewExtractor(1).Extract(src, destDir))
	assert.FileExists(t, filepath.Join(destDir, "configure"))
	assert.FileExists(t, filepath.Join(destDir, "src", "zmq.cpp"))
}

func TestExtractUnknownFormat(t *testing.T) {
	src := filepath.Join(t.TempDir(), "zeromq-4.1.4.rar")
	require.NoError(t, os.WriteFile(src, []byte("rar"), 0644))

	err := Extract(src, t.TempDir(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported archive format")
}

func TestStripPath(t *testing.T) {
	tests := []struct {
		name            string
		path            string
		stripComponents int
		expected        string
	}{
		{name: "no strip", path: "dir1/dir2/file.txt", expected: "dir1/dir2/file.txt"},
		{name: "leading dot slash", path: "./dir1/file.txt", stripComponents: 1, expected: "file.txt"},
		{name: "strip 1", path: "dir1/dir2/file.txt", stripComponents: 1, expected: "dir2/file.txt"},
		{name: "strip 2", path: "dir1/dir2/file.txt", stripComponents: 2, expected: "file.txt"},
		{name: "strip all", path: "dir1/dir2/file.txt", stripComponents: 3, expected: ""},
		{name: "top directory entry", path: "zeromq-4.1.4/", stripComponents: 1, expected: ""},
		{name: "strip more than available", path: "dir1/file.txt", stripComponents: 5, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &Extractor{stripComponents: tt.stripComponents}
			assert.Equal(t, tt.expected, extractor.stripPath(tt.path))
		})
	}
}
