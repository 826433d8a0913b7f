package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Completer sends one system+user prompt to a text-generation backend and returns the reply text.
// main wraps a go-kit llm client in a Completer so model options stay next to the client.
type Completer func(ctx context.Context, system, prompt string) (string, error)

// Classifier is a pass-through to one text-generation backend. It has no retry or rate limit.
type Classifier struct {
	name     string
	complete Completer
	timeout  time.Duration
}

// NewClassifier wraps complete. timeout <= 0 leaves the caller's deadline in charge.
func NewClassifier(name string, complete Completer, timeout time.Duration) *Classifier {
	return &Classifier{name: name, complete: complete, timeout: timeout}
}

// Name identifies the backend in logs and history entries.
func (c *Classifier) Name() string { return c.name }

// Reply sends a system and user message and returns the raw reply.
// Failures and empty replies are ClassifierInvocationFailure errors.
func (c *Classifier) Reply(ctx context.Context, system, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	metrics.LLMCalls.Add(1)
	start := time.Now()
	raw, err := c.complete(ctx, system, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", ClassifierFailure(c.name+" call failed", err)
	}
	raw = stripFences(raw)
	if strings.TrimSpace(raw) == "" {
		metrics.LLMErrors.Add(1)
		return "", ClassifierFailure(c.name+" returned no content", nil)
	}
	slog.Debug("llm: reply",
		slog.String("backend", c.name),
		slog.Int("prompt_chars", len(prompt)),
		slog.Int("reply_chars", len(raw)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return raw, nil
}

// stripFences removes markdown code fences from LLM output.
// Unfenced replies are returned byte for byte; label lookup is whitespace-sensitive.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```text")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
