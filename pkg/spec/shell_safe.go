package spec

import (
	"fmt"
	"strings"
	"unicode"
)

// shellHazard is a sequence the installer templates must never receive.
type shellHazard struct {
	seq  string
	what string
}

// Multi-character sequences come first so that "&&" is reported as such and
// not as a lone "&".
var shellHazards = []shellHazard{
	{"$(", "command substitution '$('"},
	{"`", "command substitution backtick '`'"},
	{">>", "append redirection"},
	{"<<", "here document"},
	{"||", "logical OR"},
	{"&&", "logical AND"},
	{";", "semicolon"},
	{"|", "pipe"},
	{"&", "ampersand"},
	{">", "output redirection"},
	{"<", "input redirection"},
	{"\n", "newline"},
	{"\r", "carriage return"},
}

// plainWordBreakers split or expand an unquoted shell word.
const plainWordBreakers = " \t'\"$*?[]{}"

// ShellSafeString reports an error when value could inject commands into
// a rendered installer or service file. Empty values are accepted.
func ShellSafeString(value, field string) error {
	for _, h := range shellHazards {
		if strings.Contains(value, h.seq) {
			return fmt.Errorf("%s contains dangerous %s: %q", field, h.what, value)
		}
	}
	if i := strings.IndexFunc(value, func(r rune) bool { return unicode.IsControl(r) && r != '\t' }); i >= 0 {
		return fmt.Errorf("%s contains control character (code %d)", field, value[i])
	}
	return nil
}

// ValidateShellFields checks every value that is substituted into the
// generated installer script or service files.
func (s *ProjectSpec) ValidateShellFields() error {
	for _, f := range s.shellFields() {
		if err := ShellSafeString(f[1], f[0]); err != nil {
			return err
		}
		if strings.ContainsAny(f[1], plainWordBreakers) {
			return fmt.Errorf("%s must be a single plain word: %s", f[0], f[1])
		}
	}
	return nil
}

// shellFields lists name/value pairs in the order they are reported.
func (s *ProjectSpec) shellFields() [][2]string {
	fields := [][2]string{
		{"product", s.Product},
		{"config_dir", s.ConfigDir},
		{"config_name", s.ConfigName},
	}
	for i, b := range s.Binaries {
		fields = append(fields, [2]string{fmt.Sprintf("binaries[%d]", i), b})
	}
	for i, d := range s.Dependencies {
		p := fmt.Sprintf("dependencies[%d]", i)
		fields = append(fields,
			[2]string{p + ".name", d.Name},
			[2]string{p + ".pkgconfig", d.PkgConfig},
			[2]string{p + ".version", d.Version},
			[2]string{p + ".library", d.Library},
			[2]string{p + ".soversion", d.SOVersion},
		)
		for j, h := range d.Headers {
			fields = append(fields, [2]string{fmt.Sprintf("%s.headers[%d]", p, j), h})
		}
		for j, e := range d.ExtraLibs {
			fields = append(fields, [2]string{fmt.Sprintf("%s.extra_libs[%d].path", p, j), e.Path})
		}
	}
	return fields
}
