package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weni/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testProjectUUID = "5f2b6c0e-8f5e-4d4a-9a55-6a1d1c3f2e10"

// useTestStore points every command at a config file holding cfg and
// returns the path of that file.
func useTestStore(t *testing.T, cfg config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data, err := yaml.Marshal(&cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	original := openStore
	t.Cleanup(func() { openStore = original })
	openStore = func() (*config.Store, error) { return config.OpenStoreAt(path) }
	return path
}

func execute(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func readStore(t *testing.T, path string) config.Config {
	t.Helper()
	store, err := config.OpenStoreAt(path)
	require.NoError(t, err)
	return store.Config()
}
