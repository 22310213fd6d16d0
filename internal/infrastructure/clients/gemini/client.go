package gemini

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/ericyum/tour-agent-backend/internal/infrastructure/clients/llm"
	"github.com/ericyum/tour-agent-backend/pkg/config"
)

const defaultModel = "gemini-2.5-flash"

// Client is an llm.Completer backed by the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

var _ llm.Completer = (*Client)(nil)

// NewClient creates a Gemini client from the LLM config.
func NewClient(ctx context.Context, cfg *config.LLMConfig) (*Client, error) {
	if cfg == nil || cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.GeminiModel
	if model == "" {
		model = defaultModel
	}
	return &Client{client: client, model: model, limiter: newLimiter(cfg.RateLimitRPM, cfg.RateLimitBurst)}, nil
}

func newLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60), burst)
}

func (c *Client) Name() string { return "gemini" }

// Complete sends one prompt and returns the concatenated response text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	temperature := req.Temperature
	genCfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}
