package claude

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/fridgechef/internal/llm"
)

// defaultMaxTokens is used when a request leaves MaxTokens unset; the
// Messages API requires a value.
const defaultMaxTokens = 2048

type Client struct {
	apiKey string
	client *anthropic.Client
}

// NewClient returns a Messages API client. baseURL may be empty to use the
// public endpoint.
func NewClient(apiKey, baseURL string) *Client {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &Client{
		apiKey: apiKey,
		client: anthropic.NewClient(apiKey, opts...),
	}
}

// buildMessage puts the image block, when present, ahead of the text block.
func buildMessage(req *llm.Request) (anthropic.Message, error) {
	content := make([]anthropic.MessageContent, 0, 2)
	if req.ImageDataURI != "" {
		mediaType, data, err := llm.SplitDataURI(req.ImageDataURI)
		if err != nil {
			return anthropic.Message{}, fmt.Errorf("invalid image: %w", err)
		}
		content = append(content, anthropic.NewImageMessageContent(anthropic.MessageContentSource{
			Type:      "base64",
			MediaType: mediaType,
			Data:      data,
		}))
	}
	content = append(content, anthropic.NewTextMessageContent(req.Prompt))
	return anthropic.Message{Role: anthropic.RoleUser, Content: content}, nil
}

func (c *Client) Complete(ctx context.Context, req *llm.Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("claude: %w", llm.ErrMissingAPIKey)
	}

	msg, err := buildMessage(req)
	if err != nil {
		return "", err
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	mreq := anthropic.MessagesRequest{
		Model:     anthropic.Model(req.Model),
		System:    req.System,
		Messages:  []anthropic.Message{msg},
		MaxTokens: maxTokens,
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		mreq.Temperature = &t
	}

	resp, err := c.client.CreateMessages(ctx, mreq)
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText && blk.Text != nil {
			return *blk.Text, nil
		}
	}
	return "", llm.ErrNoChoices
}
