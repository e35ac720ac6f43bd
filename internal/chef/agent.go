package chef

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultModel = "llama-3.3-70b-versatile"

// Agent binds a model to a fixed persona and an ordered instruction list.
type Agent struct {
	Name         string   `yaml:"name"`
	Role         string   `yaml:"role"`
	Model        string   `yaml:"model"`
	Instructions []string `yaml:"instructions"`
	// Markdown asks the model to format its answer as Markdown.
	Markdown bool `yaml:"markdown"`
}

// DefaultAgent returns the built-in chef persona.
func DefaultAgent() *Agent {
	return &Agent{
		Name:  "Chef Ramsay",
		Role:  "Professional Chef",
		Model: DefaultModel,
		Instructions: []string{
			"You are a creative chef.",
			"Given a list of ingredients, generate 2 distinct recipes.",
			"Use your internal culinary knowledge. Do NOT search the internet.",
			"If the user is missing a critical item (like salt or oil), assume they have basic pantry staples.",
			"Format the output nicely with Markdown: ## Recipe Name, *Ingredients*, **Instructions**.",
			"Do not provide fake URLs. Instead, provide a 'Chef's Tip' for each dish.",
		},
		Markdown: true,
	}
}

// LoadAgent reads an agent definition from a YAML file. Fields the file
// leaves empty keep the default agent's values.
func LoadAgent(path string) (*Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent file: %w", err)
	}

	var fromFile struct {
		Name         string   `yaml:"name"`
		Role         string   `yaml:"role"`
		Model        string   `yaml:"model"`
		Instructions []string `yaml:"instructions"`
		Markdown     *bool    `yaml:"markdown"`
	}
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse agent file %s: %w", path, err)
	}

	agent := DefaultAgent()
	if fromFile.Name != "" {
		agent.Name = fromFile.Name
	}
	if fromFile.Role != "" {
		agent.Role = fromFile.Role
	}
	if fromFile.Model != "" {
		agent.Model = fromFile.Model
	}
	if len(fromFile.Instructions) > 0 {
		agent.Instructions = fromFile.Instructions
	}
	if fromFile.Markdown != nil {
		agent.Markdown = *fromFile.Markdown
	}
	return agent, nil
}

// SystemPrompt renders the persona and instructions as a system message.
func (a *Agent) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your name is %s.\n", a.Name)
	if a.Role != "" {
		fmt.Fprintf(&b, "Your role is: %s\n", a.Role)
	}
	if len(a.Instructions) > 0 {
		b.WriteString("\n<instructions>\n")
		for _, inst := range a.Instructions {
			fmt.Fprintf(&b, "- %s\n", inst)
		}
		b.WriteString("</instructions>\n")
	}
	if a.Markdown {
		b.WriteString("\nUse markdown to format your answers.\n")
	}
	return b.String()
}
