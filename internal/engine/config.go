package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, read once in main and passed to constructors.
type Config struct {
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	YouTubeQPS            float64
	YouTubeBurst          int
	FetchTimeout          time.Duration
	FetchRetries          int

	CommentCap         int
	ChunkMaxChars      int
	MaxChunks          int
	RollupVideos       int
	RollupConcurrency  int
	ChannelVideosLimit int
	StrictReplies      bool

	ChatLLMAPIBase     string
	ChatLLMAPIKey      string
	ChatLLMModel       string
	GenLLMAPIBase      string
	GenLLMAPIKey       string
	GenLLMModel        string
	LLMAPIKeyFallbacks []string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMTimeout         time.Duration

	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	RedisURL             string

	DatabaseURL   string
	HistoryDBPath string

	HTTPClient *http.Client
}

// Defaults for the analysis pipeline. Zero config values fall back to these.
const (
	DefaultCommentCap         = 100
	DefaultChunkMaxChars      = 10000
	DefaultMaxChunks          = 1
	DefaultRollupVideos       = 5
	DefaultRollupConcurrency  = 2
	DefaultChannelVideosLimit = 15
)

// OrDefault returns v when positive, otherwise def.
func OrDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
