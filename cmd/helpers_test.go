package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, "inpack.yml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// writeTestConfig writes the default config to dir.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	data, err := renderDefaultConfig()
	require.NoError(t, err)
	return writeConfigFile(t, dir, string(data))
}
