package asset

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/buildkite/interpolate"
	"github.com/intecture/inpack/pkg/platform"
	"github.com/intecture/inpack/pkg/spec"
)

// SourceURL expands the URL template of d. Supported variables are
// ${NAME}, ${VERSION}, ${TAG} (VERSION with a "v" prefix), ${LIBRARY}
// and ${SOVERSION}.
func SourceURL(d spec.Dependency) (string, error) {
	if err := spec.ValidateURLTemplate(d.URL); err != nil {
		return "", err
	}
	version := strings.TrimPrefix(d.Version, "v")
	env := interpolate.NewMapEnv(map[string]string{
		"NAME":      d.Name,
		"VERSION":   version,
		"TAG":       "v" + version,
		"LIBRARY":   d.Library,
		"SOVERSION": d.SOVersion,
	})
	expanded, err := interpolate.Interpolate(env, d.URL)
	if err != nil {
		return "", fmt.Errorf("failed to interpolate url template: %w", err)
	}
	if _, err := url.Parse(expanded); err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", expanded, err)
	}
	return expanded, nil
}

// SourceFilename is the last path element of the expanded source URL.
func SourceFilename(d spec.Dependency) (string, error) {
	raw, err := SourceURL(d)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return "", fmt.Errorf("source url %q has no file name", raw)
	}
	return name, nil
}

// LibFileName is the unversioned shared object name, e.g. libzmq.so.
func LibFileName(p platform.Profile, library string) string {
	return library + "." + p.LibExt
}

// VersionedLibName is the name the dynamic linker resolves at run time:
// libzmq.5.dylib on Darwin and libzmq.so.5 everywhere else.
func VersionedLibName(p platform.Profile, library, soversion string) string {
	if p.OS == platform.Darwin {
		return library + "." + soversion + "." + p.LibExt
	}
	return library + "." + p.LibExt + "." + soversion
}
