// Package gemini analyses publications and evidence summaries with Google
// Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Client wraps a Gemini model with request throttling.
type Client struct {
	client *genai.Client
	model  string
	delay  time.Duration
}

// NewClient creates a Gemini client. `rpm` caps request rate, zero disables
// throttling.
func NewClient(ctx context.Context, apiKey, model string, rpm int) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %s", err)
	}

	var delay time.Duration
	if rpm > 0 {
		delay = time.Minute / time.Duration(rpm)
	}

	return &Client{
		client: client,
		model:  model,
		delay:  delay,
	}, nil
}

// Model returns the model name used by this client.
func (c *Client) Model() string {
	return c.model
}

// Throttle waits out the configured request interval.
func (c *Client) Throttle() {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}

// generate sends one prompt and decodes the structured JSON answer into
// `out`.
func (c *Client) generate(ctx context.Context, prompt string, schema *genai.Schema, temperature float32, out any) error {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(temperature),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return fmt.Errorf("content generation failed: %s", err)
	}

	err = json.Unmarshal([]byte(result.Text()), out)
	if err != nil {
		return fmt.Errorf("failed to decode model answer: %s", err)
	}

	return nil
}
