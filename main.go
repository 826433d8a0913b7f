// go_ytpulse is a YouTube comment sentiment MCP server.
//
// Fetches a video's or channel's comments through the YouTube Data API, classifies them with
// two LLM backends and exposes the results as MCP tools. Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/history"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/sentiment"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/youtube"
	"github.com/anatolykoptev/go_ytpulse/internal/ytserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	cfg := loadConfig()

	slog.Info("starting go_ytpulse",
		slog.String("port", mcpPort),
		slog.String("chat_model", cfg.ChatLLMModel),
		slog.String("gen_model", cfg.GenLLMModel),
	)

	engine.InitCache(cfg.RedisURL, cfg.CacheTTL, cfg.CacheMaxEntries, cfg.CacheCleanupInterval)
	defer engine.CloseCache()

	yt := youtube.NewClient(youtube.Config{
		APIKey:      cfg.YouTubeAPIKey,
		FallbackKey: cfg.YouTubeAPIKeyFallback,
		HTTPClient:  cfg.HTTPClient,
		Timeout:     cfg.FetchTimeout,
		Retry:       engine.RetryConfigFor(cfg.FetchRetries),
		QPS:         cfg.YouTubeQPS,
		Burst:       cfg.YouTubeBurst,
		CommentCap:  cfg.CommentCap,
	})
	if cfg.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY is empty, Data API calls will fail")
	}

	chat := engine.NewClassifier("chat", newCompleter(cfg, cfg.ChatLLMAPIBase, cfg.ChatLLMAPIKey, cfg.ChatLLMModel), cfg.LLMTimeout)
	gen := engine.NewClassifier("gen", newCompleter(cfg, cfg.GenLLMAPIBase, cfg.GenLLMAPIKey, cfg.GenLLMModel), cfg.LLMTimeout)

	analyzer := sentiment.NewAnalyzer(yt, chat, gen, sentiment.Options{
		ChunkMaxChars:     cfg.ChunkMaxChars,
		MaxChunks:         cfg.MaxChunks,
		RollupVideos:      cfg.RollupVideos,
		RollupConcurrency: cfg.RollupConcurrency,
		StrictReplies:     cfg.StrictReplies,
	})

	// History is optional: analyses still run when the store cannot be opened.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := history.Open(ctx, cfg.DatabaseURL, cfg.HistoryDBPath)
	cancel()
	if err != nil {
		slog.Warn("history store init failed, history disabled", slog.Any("error", err))
	} else {
		defer store.Close()
		slog.Info("history store ready", slog.Bool("postgres", cfg.DatabaseURL != ""))
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytpulse",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, ytserver.Deps{
		Platform:           yt,
		Analyzer:           analyzer,
		History:            history.NewRecorder(store),
		ChannelVideosLimit: cfg.ChannelVideosLimit,
	})
	slog.Info("tools registered", slog.Int("count", ytserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytpulse",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	strict, err := strconv.ParseBool(env.Str("STRICT_REPLIES", "true"))
	if err != nil {
		slog.Warn("invalid STRICT_REPLIES, using true", slog.Any("error", err))
		strict = true
	}
	return engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		YouTubeQPS:            env.Float("YOUTUBE_QPS", 5),
		YouTubeBurst:          env.Int("YOUTUBE_BURST", 10),
		FetchTimeout:          env.Duration("FETCH_TIMEOUT", 15*time.Second),
		FetchRetries:          env.Int("FETCH_RETRIES", 0),

		CommentCap:         env.Int("COMMENT_CAP", engine.DefaultCommentCap),
		ChunkMaxChars:      env.Int("CHUNK_MAX_CHARS", engine.DefaultChunkMaxChars),
		MaxChunks:          env.Int("MAX_CHUNKS", engine.DefaultMaxChunks),
		RollupVideos:       env.Int("ROLLUP_VIDEOS", engine.DefaultRollupVideos),
		RollupConcurrency:  env.Int("ROLLUP_CONCURRENCY", engine.DefaultRollupConcurrency),
		ChannelVideosLimit: env.Int("CHANNEL_VIDEOS_LIMIT", engine.DefaultChannelVideosLimit),
		StrictReplies:      strict,

		ChatLLMAPIBase:     env.Str("CHAT_LLM_API_BASE", "https://api.groq.com/openai/v1"),
		ChatLLMAPIKey:      env.Str("CHAT_LLM_API_KEY", ""),
		ChatLLMModel:       env.Str("CHAT_LLM_MODEL", "llama-3.1-8b-instant"),
		GenLLMAPIBase:      env.Str("GEN_LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		GenLLMAPIKey:       env.Str("GEN_LLM_API_KEY", ""),
		GenLLMModel:        env.Str("GEN_LLM_MODEL", "gemini-2.0-flash"),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 1.0),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 8192),
		LLMTimeout:         env.Duration("LLM_TIMEOUT", 60*time.Second),

		CacheTTL:             env.Duration("CACHE_TTL", 30*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		RedisURL:             env.Str("REDIS_URL", ""),

		DatabaseURL:   env.Str("DATABASE_URL", ""),
		HistoryDBPath: env.Str("HISTORY_DB_PATH", "~/.go_ytpulse/history.db"),

		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

// newCompleter wraps an OpenAI-compatible go-kit client as an engine.Completer.
func newCompleter(cfg engine.Config, base, key, model string) engine.Completer {
	client := llm.NewClient(base, key, model,
		llm.WithFallbackKeys(cfg.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(cfg.LLMMaxTokens),
		llm.WithTemperature(cfg.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: cfg.LLMTimeout + 5*time.Second}),
	)
	return func(ctx context.Context, system, prompt string) (string, error) {
		return client.Complete(ctx, system, prompt)
	}
}
