// Package ytserver exposes the comment analysis pipeline as MCP tools.
package ytserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/history"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/sentiment"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/youtube"
)

// Platform is the YouTube side the tools need beyond what the analyzer uses.
type Platform interface {
	sentiment.Source
	ResolveRef(ctx context.Context, ref youtube.ChannelRef) (string, error)
}

// Deps are the collaborators shared by all tools.
type Deps struct {
	Platform           Platform
	Analyzer           *sentiment.Analyzer
	History            *history.Recorder
	ChannelVideosLimit int
}

type tools struct {
	Deps
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 8

// RegisterTools registers all analysis tools on the given MCP server.
func RegisterTools(server *mcp.Server, d Deps) {
	d.ChannelVideosLimit = engine.OrDefault(d.ChannelVideosLimit, engine.DefaultChannelVideosLimit)
	t := &tools{Deps: d}

	registerVideoSentiment(server, t)
	registerVideoInsights(server, t)
	registerChannelSentiment(server, t)
	registerChannelLookup(server, t)
	registerChannelVideos(server, t)
	registerVideoComments(server, t)
	registerCommentsChat(server, t)
	registerAnalysisHistory(server, t)

	slog.Debug("ytserver: tools registered", slog.Int("count", ToolCount))
}
