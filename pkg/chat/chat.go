package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
)

var ErrNotConfigured = errors.New("API key not configured")

// Endpoint is the hosted chat-completion service the client talks to.
type Endpoint struct {
	BaseURL string
	Model   string
}

// EndpointFromEnv reads LLM_ENDPOINT and LLM_MODEL, falling back to Groq.
func EndpointFromEnv() Endpoint {
	endpoint := Endpoint{
		BaseURL: os.Getenv("LLM_ENDPOINT"),
		Model:   os.Getenv("LLM_MODEL"),
	}
	if endpoint.BaseURL == "" {
		endpoint.BaseURL = DefaultBaseURL
	}
	if endpoint.Model == "" {
		endpoint.Model = DefaultModel
	}
	return endpoint
}

// Client sends a single user message per call and returns the first choice.
// The API key can be swapped at runtime with UpdateKey.
type Client struct {
	mu       sync.RWMutex
	endpoint Endpoint
	apiKey   string
	client   *openai.Client
}

func New(apiKey string, endpoint Endpoint) *Client {
	c := &Client{endpoint: endpoint}
	c.UpdateKey(apiKey)
	return c
}

// UpdateKey rebuilds the underlying client. An empty key leaves the client
// unconfigured.
func (c *Client) UpdateKey(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = apiKey
	if apiKey == "" {
		c.client = nil
		return
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if c.endpoint.BaseURL != "" {
		clientConfig.BaseURL = c.endpoint.BaseURL
	}
	c.client = openai.NewClientWithConfig(clientConfig)
}

func (c *Client) Model() string {
	return c.endpoint.Model
}

func (c *Client) Configured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client != nil
}

// Complete sends prompt verbatim as the only message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()

	if client == nil {
		return "", ErrNotConfigured
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.endpoint.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
