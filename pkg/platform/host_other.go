//go:build !(linux || darwin || freebsd)

package platform

import "runtime"

// Kernel reports the Go target OS; none of these kernels has a profile.
func (LocalHost) Kernel() string {
	return runtime.GOOS
}
