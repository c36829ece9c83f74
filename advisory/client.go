package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/daytrader/market"
)

// Client asks a chat-completion endpoint for a setup confidence. The model
// is instructed to answer with a single number 0-100; anything else is
// treated as unavailable rather than an error worth halting a cycle over.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Confidence(ctx context.Context, snap market.Snapshot) (float64, error) {
	prompt := fmt.Sprintf(
		"Rate the intraday trade setup for %s from 0 to 100.\n"+
			"Price %.2f, VWAP %.2f, relative volume %.2f, spread %.4f, support %.2f, resistance %.2f.\n"+
			"Reply with a single integer only.",
		snap.Symbol, snap.LastPrice, snap.VWAP, snap.RelVolume(), snap.SpreadPct, snap.Support, snap.Resistance)

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return 0, fmt.Errorf("advisory: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("advisory: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(out.Choices) == 0 {
		return 0, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	conf, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric reply %q", ErrUnavailable, text)
	}
	if conf < 0 || conf > 100 {
		return 0, fmt.Errorf("%w: confidence %.1f out of range", ErrUnavailable, conf)
	}
	return conf, nil
}
