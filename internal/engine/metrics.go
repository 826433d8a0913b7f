package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	YouTubeRequests      atomic.Int64
	YouTubeErrors        atomic.Int64
	CommentsFetched      atomic.Int64
	LLMCalls             atomic.Int64
	LLMErrors            atomic.Int64
	MalformedReplies     atomic.Int64
	MisalignedReplies    atomic.Int64
	VideoSentimentRuns   atomic.Int64
	VideoInsightsRuns    atomic.Int64
	ChannelSentimentRuns atomic.Int64
	ChatTurns            atomic.Int64
	HistoryWriteErrors   atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"youtube_requests", "youtube_errors", "comments_fetched",
	"llm_calls", "llm_errors", "malformed_replies", "misaligned_replies",
	"video_sentiment_runs", "video_insights_runs", "channel_sentiment_runs", "chat_turns",
	"history_write_errors",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"youtube_requests":       metrics.YouTubeRequests.Load(),
		"youtube_errors":         metrics.YouTubeErrors.Load(),
		"comments_fetched":       metrics.CommentsFetched.Load(),
		"llm_calls":              metrics.LLMCalls.Load(),
		"llm_errors":             metrics.LLMErrors.Load(),
		"malformed_replies":      metrics.MalformedReplies.Load(),
		"misaligned_replies":     metrics.MisalignedReplies.Load(),
		"video_sentiment_runs":   metrics.VideoSentimentRuns.Load(),
		"video_insights_runs":    metrics.VideoInsightsRuns.Load(),
		"channel_sentiment_runs": metrics.ChannelSentimentRuns.Load(),
		"chat_turns":             metrics.ChatTurns.Load(),
		"history_write_errors":   metrics.HistoryWriteErrors.Load(),
		"cache_hits":             hits,
		"cache_misses":           misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrYouTubeRequest()          { metrics.YouTubeRequests.Add(1) }
func IncrYouTubeError()            { metrics.YouTubeErrors.Add(1) }
func AddCommentsFetched(n int)     { metrics.CommentsFetched.Add(int64(n)) }
func IncrMalformedReply()          { metrics.MalformedReplies.Add(1) }
func IncrMisalignedReply()         { metrics.MisalignedReplies.Add(1) }
func IncrVideoSentimentRun()       { metrics.VideoSentimentRuns.Add(1) }
func IncrVideoInsightsRun()        { metrics.VideoInsightsRuns.Add(1) }
func IncrChannelSentimentRun()     { metrics.ChannelSentimentRuns.Add(1) }
func IncrChatTurn()                { metrics.ChatTurns.Add(1) }
func IncrHistoryWriteError()       { metrics.HistoryWriteErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
