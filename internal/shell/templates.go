package shell

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/intecture/inpack/pkg/platform"
	"github.com/pkg/errors"
)

// Templates looks up template text, preferring an override directory over
// the embedded set.
type Templates struct {
	dir string
}

// NewTemplates returns Templates reading overrides from dir. An empty dir
// uses only the embedded templates.
func NewTemplates(dir string) *Templates {
	return &Templates{dir: dir}
}

// Read returns the template called name.
func (t *Templates) Read(name string) (string, error) {
	if t != nil && t.dir != "" {
		data, err := os.ReadFile(filepath.Join(t.dir, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "failed to read template %s", name)
		}
	}
	data, err := fs.ReadFile(embedded, "templates/"+name)
	if err != nil {
		return "", errors.Wrapf(err, "no template named %s", name)
	}
	return string(data), nil
}

// ServiceSet names the service templates shipped for one OS. Empty fields
// mean the OS gets no such file.
type ServiceSet struct {
	Systemd string
	Init    string
}

var serviceTemplates = map[platform.OSID]ServiceSet{
	platform.Debian:  {Systemd: SystemdTemplate, Init: SysVDebianTemplate},
	platform.Ubuntu:  {Systemd: SystemdTemplate, Init: SysVDebianTemplate},
	platform.CentOS:  {Systemd: SystemdTemplate, Init: SysVRedhatTemplate},
	platform.Fedora:  {Systemd: SystemdTemplate, Init: SysVRedhatTemplate},
	platform.FreeBSD: {Init: RCFreeBSDTemplate},
	platform.Darwin:  {},
}

// ServiceTemplates returns the service templates for os.
func ServiceTemplates(os platform.OSID) ServiceSet {
	return serviceTemplates[os]
}
