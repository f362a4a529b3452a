// Package archive unpacks dependency source archives and bundle tarballs,
// and writes reproducible bundle tarballs.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Format names an archive container and its compression.
type Format string

const (
	FormatTarGz   Format = "tar.gz"
	FormatTarXz   Format = "tar.xz"
	FormatTar     Format = "tar"
	FormatZip     Format = "zip"
	FormatUnknown Format = ""
)

var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGz},
	{".tgz", FormatTarGz},
	{".tar.xz", FormatTarXz},
	{".txz", FormatTarXz},
	{".tar", FormatTar},
	{".zip", FormatZip},
}

// DetectFormat maps a file name to its Format by suffix, ignoring case.
func DetectFormat(filename string) Format {
	lower := strings.ToLower(filename)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format
		}
	}
	return FormatUnknown
}

// Extractor unpacks archives below a destination directory.
type Extractor struct {
	stripComponents int
}

// NewExtractor returns an Extractor dropping the given number of leading
// path components from every entry.
func NewExtractor(stripComponents int) *Extractor {
	return &Extractor{stripComponents: stripComponents}
}

// Extract unpacks archivePath into destDir. Entries that would land
// outside destDir are rejected.
func (e *Extractor) Extract(archivePath, destDir string) error {
	format := DetectFormat(archivePath)
	if format == FormatUnknown {
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}
	destDir, err := filepath.Abs(destDir)
	if err != nil {
		return errors.Wrap(err, "failed to resolve destination directory")
	}

	if format == FormatZip {
		return e.extractZip(archivePath, destDir)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer f.Close()

	r, err := decompress(f, format)
	if err != nil {
		return err
	}
	return e.extractTar(r, destDir)
}

// Extract is shorthand for NewExtractor(stripComponents).Extract.
func Extract(archivePath, destDir string, stripComponents int) error {
	return NewExtractor(stripComponents).Extract(archivePath, destDir)
}

func decompress(r io.Reader, format Format) (io.Reader, error) {
	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(r)
		return gz, errors.Wrap(err, "failed to create gzip reader")
	case FormatTarXz:
		xr, err := xz.NewReader(r)
		return xr, errors.Wrap(err, "failed to create xz reader")
	}
	return r, nil
}

func (e *Extractor) extractTar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to read tar header")
		}

		rel := e.stripPath(hdr.Name)
		if rel == "" {
			continue
		}
		target, err := safeJoin(destDir, rel)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(target, 0755)
		case tar.TypeReg:
			err = writeFile(target, tr, os.FileMode(hdr.Mode).Perm())
		case tar.TypeSymlink:
			err = symlink(destDir, rel, target, hdr.Linkname)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to extract %s", hdr.Name)
		}
	}
}

func (e *Extractor) extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open zip archive")
	}
	defer zr.Close()

	for _, f := range zr.File {
		rel := e.stripPath(f.Name)
		if rel == "" {
			continue
		}
		target, err := safeJoin(destDir, rel)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return errors.Wrapf(err, "failed to open %s in archive", f.Name)
		}
		err = writeFile(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to extract %s", f.Name)
		}
	}
	return nil
}

// stripPath drops the leading path components. An empty result means the
// entry is skipped.
func (e *Extractor) stripPath(name string) string {
	name = strings.TrimPrefix(name, "./")
	if e.stripComponents == 0 {
		return name
	}
	parts := strings.Split(strings.TrimSuffix(name, "/"), "/")
	if len(parts) <= e.stripComponents {
		return ""
	}
	return strings.Join(parts[e.stripComponents:], "/")
}

// safeJoin rejects entries escaping destDir.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	return target, nil
}

// symlink recreates a relative link. Absolute targets and targets
// resolving outside destDir are rejected.
func symlink(destDir, rel, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("invalid symlink in archive: %s -> %s", rel, linkname)
	}
	if _, err := safeJoin(destDir, filepath.Join(filepath.Dir(rel), linkname)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	_ = os.Remove(target)
	return os.Symlink(linkname, target)
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
