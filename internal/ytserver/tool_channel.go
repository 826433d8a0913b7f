package ytserver

import (
	"context"
	"errors"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
	"github.com/anatolykoptev/go_ytpulse/internal/toolutil"
)

// ChannelLookupOutput mirrors the classic {success, channel_id} lookup reply.
type ChannelLookupOutput struct {
	Success   bool   `json:"success"`
	ChannelID string `json:"channel_id"`
}

// ChannelVideosInput is the input for channel_videos.
type ChannelVideosInput struct {
	URL   string `json:"url" jsonschema:"YouTube channel URL with @handle, a /channel/UC... URL, or a UC... channel ID"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max videos to return (default 15, max 50)"`
}

// ChannelVideo is one entry of channel_videos.
type ChannelVideo struct {
	Title     string `json:"title"`
	VideoID   string `json:"videoId"`
	Thumbnail string `json:"thumbnail"`
	VideoURL  string `json:"videoUrl"`
}

// ChannelVideosOutput is the output for channel_videos.
type ChannelVideosOutput struct {
	ChannelID string         `json:"channel_id"`
	Videos    []ChannelVideo `json:"videos"`
}

const maxChannelVideos = 50

// channelLookup reports a missing channel as success=false rather than an error.
func (t *tools) channelLookup(ctx context.Context, in ChannelInput) (ChannelLookupOutput, error) {
	id, err := t.resolveChannel(ctx, in.URL)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidInput) {
			return ChannelLookupOutput{}, nil
		}
		return ChannelLookupOutput{}, err
	}
	return ChannelLookupOutput{Success: id != "", ChannelID: id}, nil
}

func (t *tools) channelVideos(ctx context.Context, in ChannelVideosInput) (ChannelVideosOutput, error) {
	channelID, err := t.resolveChannel(ctx, in.URL)
	if err != nil {
		return ChannelVideosOutput{}, err
	}
	limit := toolutil.NormLimit(in.Limit, t.ChannelVideosLimit, maxChannelVideos)
	key := engine.CacheKey("channel_videos", channelID, strconv.Itoa(limit))
	return toolutil.Cached(ctx, key, func(ctx context.Context) (ChannelVideosOutput, error) {
		videos, err := t.Platform.ChannelVideos(ctx, channelID, limit)
		if err != nil {
			return ChannelVideosOutput{}, err
		}
		out := ChannelVideosOutput{ChannelID: channelID, Videos: make([]ChannelVideo, 0, len(videos))}
		for _, v := range videos {
			out.Videos = append(out.Videos, ChannelVideo{
				Title:     v.Title,
				VideoID:   v.VideoID,
				Thumbnail: v.Thumbnail,
				VideoURL:  v.VideoURL,
			})
		}
		return out, nil
	})
}

func registerChannelLookup(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_lookup",
		Description: "Resolve a YouTube channel URL or @handle to its channel ID. Returns success=false when no channel matches.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChannelInput) (*mcp.CallToolResult, ChannelLookupOutput, error) {
		out, err := t.channelLookup(ctx, input)
		return nil, out, toolutil.ToolError("channel_lookup", err)
	})
}

func registerChannelVideos(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_videos",
		Description: "List a YouTube channel's most recent videos, newest first, with title, video ID, high-resolution thumbnail and watch URL.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ChannelVideosInput) (*mcp.CallToolResult, ChannelVideosOutput, error) {
		out, err := t.channelVideos(ctx, input)
		return nil, out, toolutil.ToolError("channel_videos", err)
	})
}
