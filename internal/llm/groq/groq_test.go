package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fridgechef/internal/llm"
)

func TestGroqCompleteWithImage(t *testing.T) {
	var got struct {
		Model       string   `json:"model"`
		Temperature *float64 `json:"temperature"`
		MaxTokens   int      `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "eggs, milk, cheese"}},
				{"message": map[string]any{"role": "assistant", "content": "ignored"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient("gsk-test", server.URL)
	out, err := client.Complete(context.Background(), &llm.Request{
		Model:        "meta-llama/llama-4-scout-17b-16e-instruct",
		Prompt:       "list ingredients",
		ImageDataURI: "data:image/jpeg;base64,QUJD",
		Temperature:  llm.Temperature(0.1),
		MaxTokens:    1024,
	})

	require.NoError(t, err)
	assert.Equal(t, "eggs, milk, cheese", out)

	assert.Equal(t, "meta-llama/llama-4-scout-17b-16e-instruct", got.Model)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.1, *got.Temperature, 1e-9)
	assert.Equal(t, 1024, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "text", got.Messages[0].Content[0].Type)
	assert.Equal(t, "list ingredients", got.Messages[0].Content[0].Text)
	assert.Equal(t, "image_url", got.Messages[0].Content[1].Type)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", got.Messages[0].Content[1].ImageURL.URL)
}

func TestGroqCompleteTextWithSystem(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"## Omelette"}}]}`))
	}))
	defer server.Close()

	out, err := NewClient("gsk-test", server.URL+"/").Complete(context.Background(), &llm.Request{
		Model:  "llama-3.3-70b-versatile",
		System: "You are a chef.",
		Prompt: "I have eggs.",
	})

	require.NoError(t, err)
	assert.Equal(t, "## Omelette", out)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a chef.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "I have eggs.", got.Messages[1].Content)
}

func TestGroqCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient("gsk-test", server.URL).Complete(context.Background(), &llm.Request{Model: "m"})

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rate limited")
}

func TestGroqCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := NewClient("gsk-test", server.URL).Complete(context.Background(), &llm.Request{Model: "m"})
	assert.ErrorIs(t, err, llm.ErrNoChoices)
}

func TestGroqCompleteMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewClient("gsk-test", server.URL).Complete(context.Background(), &llm.Request{Model: "m"})
	assert.Error(t, err)
}

func TestGroqCompleteMissingKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	_, err := NewClient("", server.URL).Complete(context.Background(), &llm.Request{Model: "m"})

	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	assert.Zero(t, hits.Load())
}

func TestGroqCompleteNetworkError(t *testing.T) {
	_, err := NewClient("gsk-test", "http://localhost:99999").Complete(context.Background(), &llm.Request{Model: "m"})
	assert.Error(t, err)
}
