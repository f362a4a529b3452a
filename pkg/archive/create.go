package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Epoch is the modification time recorded for every created entry.
var Epoch = time.Unix(0, 0).UTC()

// Create writes srcDir as a tarball to destPath with every entry placed
// below prefix. Entries are sorted and carry Epoch, uid 0 and gid 0, so
// identical trees produce identical bytes.
func Create(srcDir, prefix, destPath string, format Format) (err error) {
	if format != FormatTarGz && format != FormatTarXz {
		return errors.Errorf("unsupported output format: %s", format)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".archive-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	var compressor io.WriteCloser
	switch format {
	case FormatTarGz:
		// The zero gzip header has no name and no mtime.
		compressor = gzip.NewWriter(tmp)
	case FormatTarXz:
		if compressor, err = xz.NewWriter(tmp); err != nil {
			return errors.Wrap(err, "failed to create xz writer")
		}
	}

	tw := tar.NewWriter(compressor)
	if err := writeTree(tw, srcDir, prefix); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "failed to finish tar stream")
	}
	if err := compressor.Close(); err != nil {
		return errors.Wrap(err, "failed to finish compression")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close archive")
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return errors.Wrap(err, "failed to set archive mode")
	}
	return errors.Wrap(os.Rename(tmpPath, destPath), "failed to move archive into place")
}

// writeTree relies on WalkDir visiting entries in lexical order.
func writeTree(tw *tar.Writer, srcDir, prefix string) error {
	return filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		name := path.Join(prefix, filepath.ToSlash(rel))
		if rel == "." && prefix == "" {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name:    name,
			Mode:    int64(info.Mode().Perm()),
			ModTime: Epoch,
		}

		switch {
		case d.IsDir():
			hdr.Typeflag = tar.TypeDir
			hdr.Name += "/"
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return errors.Wrapf(err, "failed to read link %s", p)
			}
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = target
			hdr.Mode = 0777
		case d.Type().IsRegular():
			hdr.Typeflag = tar.TypeReg
			hdr.Size = info.Size()
		default:
			return errors.Errorf("cannot archive special file %s", p)
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Wrapf(err, "failed to write header for %s", name)
		}
		if hdr.Typeflag != tar.TypeReg {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", p)
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return errors.Wrapf(err, "failed to archive %s", p)
		}
		return nil
	})
}
