package shell

import "embed"

// embedded holds the built-in installer, config and service templates.
//
//go:embed templates
var embedded embed.FS

// Template file names.
const (
	InstallerTemplate  = "installer.sh"
	ConfigTemplate     = "auth.json"
	SystemdTemplate    = "systemd.service"
	SysVDebianTemplate = "sysv-debian.sh"
	SysVRedhatTemplate = "sysv-redhat.sh"
	RCFreeBSDTemplate  = "rc-freebsd.sh"
	shlibTemplate      = "shlib.sh"
)
