package openai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// defaultTimeout bounds a single completion call when the caller supplies
// no override.
const defaultTimeout = 60 * time.Second

// CompleteRequest is one text-completion unit of work. Zero values fall back
// to the gateway defaults.
type CompleteRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONObject  bool
	Timeout     time.Duration
}

// Gateway wraps a Client with the transport-level policy shared by every
// pipeline: one call, a per-call timeout, and first-choice text extraction.
// Retries are a caller concern.
type Gateway struct {
	client  Client
	model   string
	timeout time.Duration
}

// NewGateway builds a Gateway. timeout <= 0 selects the default.
func NewGateway(client Client, model string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{client: client, model: model, timeout: timeout}
}

// Complete issues one chat completion and returns the first choice's message
// content, or "{}" when the upstream omitted it. Deadline expiry surfaces as
// an error satisfying IsTimeout; non-2xx as *UpstreamError.
func (g *Gateway) Complete(ctx context.Context, req CompleteRequest) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = g.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ccReq := ChatCompletionRequest{
		Model:    g.model,
		Messages: req.Messages,
	}
	if req.Temperature > 0 {
		t := req.Temperature
		ccReq.Temperature = &t
	}
	if req.MaxTokens > 0 {
		m := req.MaxTokens
		ccReq.MaxTokens = &m
	}
	if req.JSONObject {
		ccReq.ResponseFormat = JSONObject()
	}

	resp, err := g.client.ChatCompletion(ctx, ccReq)
	if err != nil {
		// The transport reports a context error through the url.Error chain;
		// prefer the ctx cause so callers can classify it.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "{}", nil
	}
	content := resp.Choices[0].Message.Content
	zap.L().Debug("upstream content", zap.String("head", head(content, 200)))
	return content, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
