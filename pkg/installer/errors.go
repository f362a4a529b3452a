package installer

import "fmt"

// UnknownSubcommandError is returned by Dispatch for anything other than
// install or uninstall.
type UnknownSubcommandError struct {
	Name string
}

func (e *UnknownSubcommandError) Error() string {
	return fmt.Sprintf("unknown subcommand: %s", e.Name)
}

// MissingCommandError is returned when a program the installer needs is not
// available on the host.
type MissingCommandError struct {
	Name string
}

func (e *MissingCommandError) Error() string {
	return fmt.Sprintf("%s is required", e.Name)
}
