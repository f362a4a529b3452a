package platform

import "os"

// LocalHost reads identification signals from the running machine.
type LocalHost struct{}

func (LocalHost) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Detect resolves the profile of the running machine.
func Detect() (Profile, error) {
	return Resolve(LocalHost{})
}
