// Package toolutil provides shared helpers for go_ytpulse MCP tools.
package toolutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// NormLimit clamps a caller-supplied limit: <= 0 gives def, anything above max is capped.
func NormLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Cached returns the cached value for key, or runs fn and caches its result on success.
// Failures are never cached.
func Cached[T any](ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	if out, ok := engine.CacheLoadJSON[T](ctx, key); ok {
		return out, nil
	}
	out, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	engine.CacheStoreJSON(ctx, key, out)
	return out, nil
}

// ToolError prefixes analysis errors with their kind so MCP clients can tell them apart.
// Errors without a kind pass through unchanged.
func ToolError(tool string, err error) error {
	if err == nil {
		return nil
	}
	var e *engine.Error
	if !errors.As(err, &e) {
		slog.Warn("tool failed", slog.String("tool", tool), slog.Any("error", err))
		return err
	}
	slog.Warn("tool failed",
		slog.String("tool", tool), slog.String("kind", string(e.Kind)), slog.Any("error", err))
	return fmt.Errorf("%s: %w", e.Kind, err)
}
