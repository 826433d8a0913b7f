package ytserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/sentiment"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/youtube"
	"github.com/anatolykoptev/go_ytpulse/internal/toolutil"
)

// VideoCommentsInput is the input for video_comments.
type VideoCommentsInput struct {
	URL     string `json:"url,omitempty" jsonschema:"YouTube video URL"`
	VideoID string `json:"video_id,omitempty" jsonschema:"11-char video ID (alternative to url)"`
}

// VideoCommentsOutput is the numbered comment list as one text block.
type VideoCommentsOutput struct {
	VideoID  string `json:"video_id"`
	Count    int    `json:"count"`
	Comments string `json:"comments"`
}

// CommentsChatInput is one turn of a conversation about a video's comments.
type CommentsChatInput struct {
	URL     string                  `json:"url" jsonschema:"YouTube video URL whose comments seed the conversation"`
	History []sentiment.ChatMessage `json:"history,omitempty" jsonschema:"Previous turns as {role, parts:[{text}]} or {role, content}"`
	Message string                  `json:"message" jsonschema:"New user message"`
}

// CommentsChatOutput is the model's reply.
type CommentsChatOutput struct {
	Content string `json:"content"`
}

func (t *tools) videoComments(ctx context.Context, in VideoCommentsInput) (VideoCommentsOutput, error) {
	raw := in.VideoID
	if raw == "" {
		raw = in.URL
	}
	if strings.TrimSpace(raw) == "" {
		return VideoCommentsOutput{}, engine.InvalidInput("url or video_id is required")
	}
	videoID, err := youtube.ParseVideoID(raw)
	if err != nil {
		return VideoCommentsOutput{}, err
	}
	comments, err := t.Platform.FetchComments(ctx, videoID)
	if err != nil {
		return VideoCommentsOutput{}, err
	}
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = engine.PlainText(c.Text)
	}
	return VideoCommentsOutput{VideoID: videoID, Count: len(comments), Comments: sentiment.NumberedList(texts)}, nil
}

func (t *tools) commentsChat(ctx context.Context, in CommentsChatInput) (CommentsChatOutput, error) {
	videoID, err := youtube.ParseVideoID(in.URL)
	if err != nil {
		return CommentsChatOutput{}, err
	}
	reply, err := t.Analyzer.Chat(ctx, videoID, in.History, in.Message)
	if err != nil {
		return CommentsChatOutput{}, err
	}
	return CommentsChatOutput{Content: reply}, nil
}

func registerVideoComments(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_comments",
		Description: "Fetch the top comments of a YouTube video (about 100, deduplicated by text) as a numbered plain-text list.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoCommentsInput) (*mcp.CallToolResult, VideoCommentsOutput, error) {
		out, err := t.videoComments(ctx, input)
		return nil, out, toolutil.ToolError("video_comments", err)
	})
}

func registerCommentsChat(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "comments_chat",
		Description: "Ask free-form questions about a YouTube video's comments. The conversation is seeded with the numbered comments; pass earlier turns in history to continue it.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CommentsChatInput) (*mcp.CallToolResult, CommentsChatOutput, error) {
		out, err := t.commentsChat(ctx, input)
		return nil, out, toolutil.ToolError("comments_chat", err)
	})
}
