//go:build linux || darwin || freebsd

package platform

import "golang.org/x/sys/unix"

// Kernel returns the sysname field of uname(2).
func (LocalHost) Kernel() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Sysname[:])
}
