package installer

import (
	"os"

	"github.com/apex/log"
	"github.com/intecture/inpack/pkg/archive"
	"github.com/intecture/inpack/pkg/verify"
	"github.com/pkg/errors"
)

// Unpack extracts a bundle archive below destDir, dropping the top-level
// <product>-<version> directory. When a .sha256 file sits next to the
// archive it must match.
func Unpack(archivePath, destDir string) error {
	sidecar := archivePath + verify.SidecarExt
	if _, err := os.Stat(sidecar); err == nil {
		if err := verify.VerifySidecar(archivePath); err != nil {
			return err
		}
		log.WithField("archive", archivePath).Debug("checksum verified")
	}
	if err := archive.NewExtractor(1).Extract(archivePath, destDir); err != nil {
		return errors.Wrapf(err, "failed to unpack %s", archivePath)
	}
	return nil
}
