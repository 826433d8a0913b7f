package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/history"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/youtube"
	"github.com/anatolykoptev/go_ytpulse/internal/toolutil"
)

// VideoInput names one video.
type VideoInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL (watch, youtu.be, shorts, embed) or bare 11-char video ID"`
}

// ChannelInput names one channel.
type ChannelInput struct {
	URL string `json:"url" jsonschema:"YouTube channel URL with @handle (e.g. https://www.youtube.com/@handle), a /channel/UC... URL, or a UC... channel ID"`
}

func (t *tools) videoSentiment(ctx context.Context, in VideoInput) (engine.CommentRatings, error) {
	videoID, err := youtube.ParseVideoID(in.URL)
	if err != nil {
		return engine.CommentRatings{}, err
	}
	return toolutil.Cached(ctx, engine.CacheKey("video_sentiment", videoID), func(ctx context.Context) (engine.CommentRatings, error) {
		res, err := t.Analyzer.VideoSentiment(ctx, videoID)
		if err != nil {
			return engine.CommentRatings{}, err
		}
		t.History.Record(ctx, history.FromRatings(history.ModeVideoSentiment, videoID, res))
		return res, nil
	})
}

func (t *tools) videoInsights(ctx context.Context, in VideoInput) (engine.InsightsResult, error) {
	videoID, err := youtube.ParseVideoID(in.URL)
	if err != nil {
		return engine.InsightsResult{}, err
	}
	return toolutil.Cached(ctx, engine.CacheKey("video_insights", videoID), func(ctx context.Context) (engine.InsightsResult, error) {
		res, err := t.Analyzer.VideoInsights(ctx, videoID)
		if err != nil {
			return engine.InsightsResult{}, err
		}
		t.History.Record(ctx, history.FromRatings(history.ModeVideoInsights, videoID, res.Comments))
		return res, nil
	})
}

func (t *tools) channelSentiment(ctx context.Context, in ChannelInput) (engine.ChannelRollup, error) {
	channelID, err := t.resolveChannel(ctx, in.URL)
	if err != nil {
		return engine.ChannelRollup{}, err
	}
	return toolutil.Cached(ctx, engine.CacheKey("channel_sentiment", channelID), func(ctx context.Context) (engine.ChannelRollup, error) {
		res, err := t.Analyzer.ChannelSentiment(ctx, channelID)
		if err != nil {
			return engine.ChannelRollup{}, err
		}
		t.History.Record(ctx, history.FromRollup(channelID, res))
		return res, nil
	})
}

func (t *tools) resolveChannel(ctx context.Context, raw string) (string, error) {
	ref, err := youtube.ParseChannelRef(raw)
	if err != nil {
		return "", err
	}
	return t.Platform.ResolveRef(ctx, ref)
}

func registerVideoSentiment(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_sentiment",
		Description: "Classify the top comments of a YouTube video into five sentiment labels (very negative … very positive) with a chat-completion model. Returns a 1-5 rating histogram, each comment with its rating, and an alignment report comparing the number of ratings returned with the number of comments sent.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoInput) (*mcp.CallToolResult, engine.CommentRatings, error) {
		out, err := t.videoSentiment(ctx, input)
		return nil, out, toolutil.ToolError("video_sentiment", err)
	})
}

func registerVideoInsights(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_insights",
		Description: "Classify all fetched comments of a YouTube video in one call and return the rating histogram, per-comment ratings, a summary of audience feedback and suggestions for the creator.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoInput) (*mcp.CallToolResult, engine.InsightsResult, error) {
		out, err := t.videoInsights(ctx, input)
		return nil, out, toolutil.ToolError("video_insights", err)
	})
}

func registerChannelSentiment(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_sentiment",
		Description: "Roll up comment sentiment across a channel's most recent videos (up to 5). Returns one combined 1-5 rating histogram plus the videos analysed; there is no per-video breakdown.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChannelInput) (*mcp.CallToolResult, engine.ChannelRollup, error) {
		out, err := t.channelSentiment(ctx, input)
		return nil, out, toolutil.ToolError("channel_sentiment", err)
	})
}
