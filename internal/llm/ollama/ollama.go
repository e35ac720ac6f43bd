package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vbonduro/fridgechef/internal/llm"
)

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// Client talks to a local Ollama server. It needs no credential.
type Client struct {
	host   string
	client *http.Client
}

func NewClient(host string) *Client {
	return &Client{
		host:   strings.TrimRight(host, "/"),
		client: &http.Client{},
	}
}

func (c *Client) Complete(ctx context.Context, req *llm.Request) (string, error) {
	var msgs []chatMessage
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	user := chatMessage{Role: "user", Content: req.Prompt}
	if req.ImageDataURI != "" {
		// Ollama takes bare base64 payloads, not data URIs.
		_, data, err := llm.SplitDataURI(req.ImageDataURI)
		if err != nil {
			return "", fmt.Errorf("invalid image: %w", err)
		}
		user.Images = []string{data}
	}
	msgs = append(msgs, user)

	body := chatRequest{Model: req.Model, Messages: msgs}
	if req.Temperature != nil || req.MaxTokens > 0 {
		body.Options = &options{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", &llm.APIError{Provider: "ollama", StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	var respBody struct {
		Message chatMessage `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return respBody.Message.Content, nil
}
