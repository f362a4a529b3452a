// Package verify writes and checks the sha256 files published next to
// bundle archives.
package verify

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SidecarExt is appended to an archive path to name its checksum file.
const SidecarExt = ".sha256"

// MismatchError reports a file whose digest differs from the recorded one.
type MismatchError struct {
	File string
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.File, e.Want, e.Got)
}

// Sum returns the hex sha256 digest of the file at path.
func Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "failed to hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Check compares the digest of path with want, ignoring case.
func Check(path, want string) error {
	got, err := Sum(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, want) {
		return &MismatchError{File: filepath.Base(path), Want: want, Got: got}
	}
	return nil
}

// WriteSidecar writes "<digest>  <name>" to path+SidecarExt, the format
// sha256sum -c reads, and returns the digest.
func WriteSidecar(path string) (string, error) {
	sum, err := Sum(path)
	if err != nil {
		return "", err
	}
	line := sum + "  " + filepath.Base(path) + "\n"
	if err := os.WriteFile(path+SidecarExt, []byte(line), 0644); err != nil {
		return "", errors.Wrap(err, "failed to write checksum file")
	}
	return sum, nil
}

// VerifySidecar checks path against path+SidecarExt.
func VerifySidecar(path string) error {
	f, err := os.Open(path + SidecarExt)
	if err != nil {
		return errors.Wrap(err, "failed to open checksum file")
	}
	defer f.Close()

	want, err := Lookup(f, filepath.Base(path))
	if err != nil {
		return err
	}
	return Check(path, want)
}

// Lookup scans a sha256sum-style listing for name. Blank lines and
// comments are skipped; a "*" binary-mode marker before the name is
// accepted.
func Lookup(r io.Reader, name string) (string, error) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if strings.TrimPrefix(fields[1], "*") == name {
			return fields[0], nil
		}
	}
	if err := s.Err(); err != nil {
		return "", errors.Wrap(err, "failed to read checksum file")
	}
	return "", fmt.Errorf("checksum not found for %s", name)
}
