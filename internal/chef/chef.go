package chef

import (
	"context"
	"fmt"

	"github.com/mvdan/xurls"

	"github.com/vbonduro/fridgechef/internal/llm"
)

// Prompt embeds the extractor's text, unmodified, in the user turn.
func Prompt(ingredients string) string {
	return fmt.Sprintf("I have these ingredients: %s. Find me recipes.", ingredients)
}

// Response is one generated answer. Content is Markdown.
type Response struct {
	Content string
	Agent   string
	Model   string
}

// Chef runs an Agent against a text-generation model.
type Chef struct {
	agent *Agent
	model llm.Model
}

func New(agent *Agent, model llm.Model) *Chef {
	if agent == nil {
		agent = DefaultAgent()
	}
	return &Chef{agent: agent, model: model}
}

func (c *Chef) Agent() *Agent {
	return c.agent
}

// Generate asks for recipes using the raw ingredient text, whatever its shape.
func (c *Chef) Generate(ctx context.Context, ingredients string) (*Response, error) {
	out, err := c.model.Complete(ctx, &llm.Request{
		Model:  c.agent.Model,
		System: c.agent.SystemPrompt(),
		Prompt: Prompt(ingredients),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate recipes: %w", err)
	}
	return &Response{Content: out, Agent: c.agent.Name, Model: c.agent.Model}, nil
}

// FindURLs lists the URLs in generated content. The agent is told not to
// invent links, so any hit is worth a warning.
func FindURLs(content string) []string {
	return xurls.Strict.FindAllString(content, -1)
}
