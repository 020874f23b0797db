package definition

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDefinition = `agents:
  orders:
    name: "Órders Agent"
    description: "Answers order questions"
    instructions:
      - "Always be polite"
    tools:
      - get_order:
          name: "Get Order Status"
          description: "Gets the order status"
          source:
            path: "tools/get_order"
            entrypoint: "main.GetOrder"
            path_test: "tests.yaml"
          parameters:
            - order_id:
                description: "Order ID"
                type: "string"
                required: true
                contact_field: true
      - list_orders:
          name: "List Orders"
          description: "Lists orders"
          source:
            path: "tools/list_orders"
            entrypoint: "main.ListOrders"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "agent_definition.yaml", sampleDefinition)

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, def.AgentKeys())

	agent, tool, err := def.Tool("orders", "get_order")
	require.NoError(t, err)
	assert.Equal(t, "Órders Agent", agent.Name)
	assert.Equal(t, "tools/get_order", tool.Source.Path)
	assert.Equal(t, filepath.Join("tools/get_order", "tests.yaml"), tool.TestDefinitionPath())

	_, other, err := def.Tool("orders", "list_orders")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("tools/list_orders", DefaultTestDefinitionFile), other.TestDefinitionPath())
}

func TestTool_NotFound(t *testing.T) {
	path := writeFile(t, t.TempDir(), "agent_definition.yaml", sampleDefinition)
	def, err := Load(path)
	require.NoError(t, err)

	_, _, err = def.Tool("missing", "get_order")
	assert.EqualError(t, err, "Agent missing not found in definition")

	_, _, err = def.Tool("orders", "missing")
	assert.EqualError(t, err, "Tool missing not found in agent orders")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing agents",
			content: "other: 1\n",
			wantErr: "Missing required root key 'agents' in the agent definition file",
		},
		{
			name:    "empty agents",
			content: "agents: {}\n",
			wantErr: "No agents defined in the agent definition file",
		},
		{
			name:    "agent without name",
			content: "agents:\n  a:\n    description: d\n",
			wantErr: "Agent 'a' is missing required field 'name' in the agent definition file",
		},
		{
			name:    "agent without tools",
			content: "agents:\n  a:\n    name: n\n    description: d\n",
			wantErr: "Agent 'a' is missing required field 'tools' in the agent definition file",
		},
		{
			name: "tool without entrypoint",
			content: `agents:
  a:
    name: n
    description: d
    tools:
      - t:
          name: T
          description: D
          source:
            path: p
`,
			wantErr: "Agent 'a': tool 't': 'source' is missing required field 'entrypoint' in the agent definition file",
		},
		{
			name: "bad parameter type",
			content: `agents:
  a:
    name: n
    description: d
    tools:
      - t:
          name: T
          description: D
          source: {path: p, entrypoint: e}
          parameters:
            - x:
                description: X
                type: object
`,
			wantErr: "Agent 'a': tool 't': parameter 'x' type must be one of: string, number, integer, boolean, array",
		},
		{
			name: "invalid contact field name",
			content: `agents:
  a:
    name: n
    description: d
    tools:
      - t:
          name: T
          description: D
          source: {path: p, entrypoint: e}
          parameters:
            - Order-ID:
                description: X
                type: string
                contact_field: true
`,
			wantErr: "Agent 'a': tool 't': parameter 'Order-ID' name must match the regex of a valid contact field: ^[a-z][a-z0-9_]*$",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "def.yaml", tt.content)
			_, err := Load(path)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "get-order-status", Slugify("Get Order Status!"))
	assert.Equal(t, "orders-agent", Slugify("Órders   Agent"))
	assert.Equal(t, "acao-rapida-2", Slugify("  Ação_rápida 2 "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "agent_definition.yaml", sampleDefinition)
	def, err := Load(path)
	require.NoError(t, err)

	encoded, err := json.Marshal(def.Format())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(encoded, &doc))
	agent := doc["agents"].(map[string]any)["orders"].(map[string]any)
	assert.Equal(t, "orders-agent", agent["slug"])

	tools := agent["tools"].([]any)
	require.Len(t, tools, 2)
	first := tools[0].(map[string]any)
	assert.Equal(t, "get_order", first["key"])
	assert.Equal(t, "get-order-status", first["slug"])
	assert.Equal(t, "tools/get_order", first["source"].(map[string]any)["path"])
}

func TestLoadTestDefinition(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test_definition.yaml", "tests:\n  test_1:\n    parameters:\n      order_id: \"123\"\n")

	test, err := LoadTestDefinition(path)
	require.NoError(t, err)
	tests := test["tests"].(map[string]any)
	assert.Contains(t, tests, "test_1")

	_, err = LoadTestDefinition(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadToolEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CredentialsFile, "API_KEY=secret\n# comment\nREGION=\"us-east-1\"\n")

	values, err := LoadToolEnv(dir, CredentialsFile)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"API_KEY": "secret", "REGION": "us-east-1"}, values)

	missing, err := LoadToolEnv(dir, GlobalsFile)
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.NotNil(t, missing)
}
