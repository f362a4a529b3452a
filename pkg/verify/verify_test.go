package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256 of "hello world"
const helloSum = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestSum(t *testing.T) {
	dir := t.TempDir()
	sum, err := Sum(writeFile(t, dir, "a", "hello world"))
	require.NoError(t, err)
	assert.Equal(t, helloSum, sum)

	_, err = Sum(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	p := writeFile(t, t.TempDir(), "inauth-0.1.0.tar.gz", "hello world")

	assert.NoError(t, Check(p, helloSum))
	assert.NoError(t, Check(p, strings.ToUpper(helloSum)))

	err := Check(p, strings.Repeat("0", 64))
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "inauth-0.1.0.tar.gz", mismatch.File)
	assert.Equal(t, helloSum, mismatch.Got)
}

func TestSidecar(t *testing.T) {
	dir := t.TempDir()
	archive := writeFile(t, dir, "inauth-0.1.0.tar.gz", "hello world")

	sum, err := WriteSidecar(archive)
	require.NoError(t, err)
	assert.Equal(t, helloSum, sum)

	content, err := os.ReadFile(archive + SidecarExt)
	require.NoError(t, err)
	assert.Equal(t, helloSum+"  inauth-0.1.0.tar.gz\n", string(content))

	require.NoError(t, VerifySidecar(archive))

	require.NoError(t, os.WriteFile(archive, []byte("tampered"), 0644))
	var mismatch *MismatchError
	assert.ErrorAs(t, VerifySidecar(archive), &mismatch)
}

func TestVerifySidecarMissing(t *testing.T) {
	archive := writeFile(t, t.TempDir(), "inauth-0.1.0.tar.gz", "x")
	err := VerifySidecar(archive)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open checksum file")
}

func TestLookup(t *testing.T) {
	listing := strings.Join([]string{
		"# release checksums",
		"",
		"1111  czmq-3.0.2.tar.gz",
		"2222 *zeromq-4.1.4.tar.gz",
		"  3333\tinauth-0.1.0.tar.xz  ",
		"4444",
	}, "\n")

	tests := []struct {
		file    string
		want    string
		wantErr bool
	}{
		{file: "czmq-3.0.2.tar.gz", want: "1111"},
		{file: "zeromq-4.1.4.tar.gz", want: "2222"},
		{file: "inauth-0.1.0.tar.xz", want: "3333"},
		{file: "release", wantErr: true},
		{file: "other.tar.gz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := Lookup(strings.NewReader(listing), tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
