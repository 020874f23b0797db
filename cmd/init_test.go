package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"weni/internal/definition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_CreatesLoadableSample(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(newInitCmd(), "", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Sample agent definition file created in")

	for _, folder := range []string{"order_status", "order_details"} {
		assert.FileExists(t, filepath.Join(dir, "tools", folder, "main.py"))
		assert.FileExists(t, filepath.Join(dir, "tools", folder, "test_definition.yaml"))
	}

	def, err := definition.Load(filepath.Join(dir, sampleDefinitionFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"sample_agent"}, def.AgentKeys())

	_, tool, err := def.Tool("sample_agent", "get_order_status")
	require.NoError(t, err)
	assert.Equal(t, "tools/order_status", tool.Source.Path)

	tests, err := definition.LoadTestDefinition(filepath.Join(dir, "tools", "order_status", "test_definition.yaml"))
	require.NoError(t, err)
	assert.Contains(t, tests, "tests")
}

func TestInit_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, sampleDefinitionFile)
	require.NoError(t, os.WriteFile(path, []byte("mine"), 0644))

	_, err := execute(newInitCmd(), "", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))
}
