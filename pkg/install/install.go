// Package install places files on a target host.
package install

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
)

// Rebase joins an absolute target path below root. An empty root or "/"
// leaves path unchanged.
func Rebase(root, path string) string {
	if root == "" || root == "/" {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// File copies sourcePath to targetPath with mode. The target is replaced
// atomically, so running binaries and libraries stay intact. Symlinks in
// sourcePath are followed.
func File(sourcePath, targetPath string, mode os.FileMode) error {
	targetDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create install directory")
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return errors.Wrap(err, "failed to open source file")
	}
	defer source.Close()

	// Create temporary file in target directory for atomic replacement
	tmpFile, err := os.CreateTemp(targetDir, "."+filepath.Base(targetPath)+"-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, source); err != nil {
		tmpFile.Close()
		return errors.Wrapf(err, "failed to copy %s", sourcePath)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		return errors.Wrap(err, "failed to set permissions")
	}
	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary file")
	}

	if err := atomicInstall(tmpPath, targetPath); err != nil {
		return err
	}

	success = true
	return nil
}

// Symlink points linkPath at target, replacing whatever linkPath was.
func Symlink(target, linkPath string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create link directory")
	}
	tmp := linkPath + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return errors.Wrapf(err, "failed to link %s", linkPath)
	}
	if err := atomicInstall(tmp, linkPath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Remove deletes path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove %s", path)
	}
	return nil
}

// RemoveDirIfEmpty deletes dir when it has no entries and reports whether
// it did. Missing and non-empty directories are left alone.
func RemoveDirIfEmpty(dir string) (bool, error) {
	err := os.Remove(dir)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err), errors.Is(err, syscall.ENOTEMPTY), errors.Is(err, syscall.EEXIST):
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to remove %s", dir)
}

func atomicInstall(sourcePath, targetPath string) error {
	// On Unix, rename is atomic
	if err := os.Rename(sourcePath, targetPath); err != nil {
		if os.IsExist(err) {
			if err := os.Remove(targetPath); err != nil && !os.IsNotExist(err) {
				return errors.Wrap(err, "failed to remove existing file")
			}
			if err := os.Rename(sourcePath, targetPath); err != nil {
				return errors.Wrapf(err, "failed to install %s", targetPath)
			}
			return nil
		}
		return errors.Wrapf(err, "failed to install %s", targetPath)
	}
	return nil
}

// DryRunOutput returns the message to display for a dry run
func DryRunOutput(sourcePath, targetPath string) string {
	return fmt.Sprintf("Would install %s to %s", sourcePath, targetPath)
}
