package definition

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, folds accents and joins alphanumeric runs with
// hyphens: "Get Order Status!" becomes "get-order-status".
func Slugify(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// PushedDefinition is the JSON document sent to the server.
type PushedDefinition struct {
	Agents map[string]PushedAgent `json:"agents"`
}

// PushedAgent is an agent with its slug and a flat list of tools.
type PushedAgent struct {
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Description  string       `json:"description"`
	Instructions []string     `json:"instructions,omitempty"`
	Guardrails   []string     `json:"guardrails,omitempty"`
	Tools        []PushedTool `json:"tools"`
}

// PushedTool is a tool entry keyed and slugged.
type PushedTool struct {
	Key         string                 `json:"key"`
	Slug        string                 `json:"slug"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Source      Source                 `json:"source"`
	Parameters  []map[string]Parameter `json:"parameters,omitempty"`
}

// Format converts the definition to the document the server expects.
func (d *Definition) Format() PushedDefinition {
	pushed := PushedDefinition{Agents: make(map[string]PushedAgent, len(d.Agents))}
	for key, agent := range d.Agents {
		tools := []PushedTool{}
		for _, tool := range agent.ToolList() {
			tools = append(tools, PushedTool{
				Key:         tool.Key,
				Slug:        Slugify(tool.Name),
				Name:        tool.Name,
				Description: tool.Description,
				Source:      tool.Source,
				Parameters:  tool.Parameters,
			})
		}
		pushed.Agents[key] = PushedAgent{
			Name:         agent.Name,
			Slug:         Slugify(agent.Name),
			Description:  agent.Description,
			Instructions: agent.Instructions,
			Guardrails:   agent.Guardrails,
			Tools:        tools,
		}
	}
	return pushed
}
