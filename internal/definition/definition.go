// Package definition loads and validates agent definition files and the
// per-tool files that accompany them.
package definition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultTestDefinitionFile is looked up in a tool folder when no test
// file is given.
const DefaultTestDefinitionFile = "test_definition.yaml"

var contactFieldName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var parameterTypes = []string{"string", "number", "integer", "boolean", "array"}

// Definition is the content of an agent definition file.
type Definition struct {
	Agents map[string]*Agent `yaml:"agents"`
}

// Agent is one agent of a definition, keyed by its agent key.
type Agent struct {
	Name         string                `yaml:"name"`
	Description  string                `yaml:"description"`
	Instructions []string              `yaml:"instructions,omitempty"`
	Guardrails   []string              `yaml:"guardrails,omitempty"`
	Tools        []map[string]ToolSpec `yaml:"tools"`
}

// ToolSpec is the body of a tool entry.
type ToolSpec struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Source      Source                 `yaml:"source"`
	Parameters  []map[string]Parameter `yaml:"parameters,omitempty"`
}

// Source locates a tool's code.
type Source struct {
	Path       string `yaml:"path" json:"path"`
	Entrypoint string `yaml:"entrypoint" json:"entrypoint"`
	PathTest   string `yaml:"path_test,omitempty" json:"path_test,omitempty"`
}

// Parameter is one tool input.
type Parameter struct {
	Description  string `yaml:"description" json:"description"`
	Type         string `yaml:"type" json:"type"`
	Required     *bool  `yaml:"required,omitempty" json:"required,omitempty"`
	ContactField *bool  `yaml:"contact_field,omitempty" json:"contact_field,omitempty"`
}

// Tool is a tool entry resolved to its key.
type Tool struct {
	Key string
	ToolSpec
}

// Load reads and validates an agent definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// AgentKeys returns the agent keys in sorted order.
func (d *Definition) AgentKeys() []string {
	keys := make([]string, 0, len(d.Agents))
	for key := range d.Agents {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ToolList returns the tools of an agent in definition order.
func (a *Agent) ToolList() []Tool {
	var tools []Tool
	for _, entry := range a.Tools {
		for key, spec := range entry {
			tools = append(tools, Tool{Key: key, ToolSpec: spec})
		}
	}
	return tools
}

// Tool finds a tool by agent and tool key.
func (d *Definition) Tool(agentKey, toolKey string) (*Agent, Tool, error) {
	agent, ok := d.Agents[agentKey]
	if !ok || agent == nil {
		return nil, Tool{}, fmt.Errorf("Agent %s not found in definition", agentKey)
	}
	for _, tool := range agent.ToolList() {
		if tool.Key == toolKey {
			return agent, tool, nil
		}
	}
	return nil, Tool{}, fmt.Errorf("Tool %s not found in agent %s", toolKey, agentKey)
}

// TestDefinitionPath returns the test file declared by the tool, or the
// default file in the tool folder.
func (t Tool) TestDefinitionPath() string {
	if t.Source.PathTest != "" {
		return filepath.Join(t.Source.Path, t.Source.PathTest)
	}
	return filepath.Join(t.Source.Path, DefaultTestDefinitionFile)
}

// Validate checks the fields the server requires.
func (d *Definition) Validate() error {
	if d.Agents == nil {
		return errors.New("Missing required root key 'agents' in the agent definition file")
	}
	if len(d.Agents) == 0 {
		return errors.New("No agents defined in the agent definition file")
	}

	for _, agentKey := range d.AgentKeys() {
		agent := d.Agents[agentKey]
		if agent == nil {
			return fmt.Errorf("Agent '%s' must be an object in the agent definition file", agentKey)
		}
		if agent.Name == "" {
			return fmt.Errorf("Agent '%s' is missing required field 'name' in the agent definition file", agentKey)
		}
		if agent.Description == "" {
			return fmt.Errorf("Agent '%s' is missing required field 'description' in the agent definition file", agentKey)
		}
		if len(agent.Tools) == 0 {
			return fmt.Errorf("Agent '%s' is missing required field 'tools' in the agent definition file", agentKey)
		}
		for i, entry := range agent.Tools {
			if len(entry) != 1 {
				return fmt.Errorf("Agent '%s': tool at index %d must have exactly one key in the agent definition file", agentKey, i)
			}
		}
		for _, tool := range agent.ToolList() {
			if err := validateTool(agentKey, tool); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTool(agentKey string, tool Tool) error {
	prefix := fmt.Sprintf("Agent '%s': tool '%s'", agentKey, tool.Key)
	switch {
	case tool.Name == "":
		return fmt.Errorf("%s is missing required field 'name' in the agent definition file", prefix)
	case tool.Description == "":
		return fmt.Errorf("%s is missing required field 'description' in the agent definition file", prefix)
	case tool.Source.Path == "":
		return fmt.Errorf("%s: 'source' is missing required field 'path' in the agent definition file", prefix)
	case tool.Source.Entrypoint == "":
		return fmt.Errorf("%s: 'source' is missing required field 'entrypoint' in the agent definition file", prefix)
	}

	for i, entry := range tool.Parameters {
		if len(entry) != 1 {
			return fmt.Errorf("%s: parameter at index %d must have exactly one key in the agent definition file", prefix, i)
		}
		for name, param := range entry {
			if err := validateParameter(name, param); err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
		}
	}
	return nil
}

func validateParameter(name string, param Parameter) error {
	if param.Description == "" {
		return fmt.Errorf("parameter '%s' is missing required field 'description'", name)
	}
	if param.Type == "" {
		return fmt.Errorf("parameter '%s' is missing required field 'type'", name)
	}
	valid := false
	for _, t := range parameterTypes {
		if param.Type == t {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("parameter '%s' type must be one of: string, number, integer, boolean, array", name)
	}
	if param.ContactField != nil && *param.ContactField && !contactFieldName.MatchString(name) {
		return fmt.Errorf("parameter '%s' name must match the regex of a valid contact field: %s", name, contactFieldName.String())
	}
	return nil
}
