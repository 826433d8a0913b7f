package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytpulse/internal/engine/history"
	"github.com/anatolykoptev/go_ytpulse/internal/toolutil"
)

// AnalysisHistoryInput is the input for analysis_history.
type AnalysisHistoryInput struct {
	TargetID string `json:"target_id,omitempty" jsonschema:"Video ID or channel ID to filter by"`
	Mode     string `json:"mode,omitempty" jsonschema:"Filter by mode: video_sentiment, video_insights, channel_sentiment"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max entries (default 20, max 100)"`
}

// AnalysisHistoryOutput is the output for analysis_history.
type AnalysisHistoryOutput struct {
	Entries []history.Entry `json:"entries"`
	Total   int             `json:"total"`
}

func (t *tools) analysisHistory(ctx context.Context, in AnalysisHistoryInput) (AnalysisHistoryOutput, error) {
	entries, err := t.History.List(ctx, history.Filter{
		Mode:     history.Mode(in.Mode),
		TargetID: in.TargetID,
		Limit:    in.Limit,
	})
	if err != nil {
		return AnalysisHistoryOutput{}, err
	}
	return AnalysisHistoryOutput{Entries: entries, Total: len(entries)}, nil
}

func registerAnalysisHistory(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analysis_history",
		Description: "List past analyses (newest first) with their rating histograms. Filter by video/channel ID or mode.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AnalysisHistoryInput) (*mcp.CallToolResult, AnalysisHistoryOutput, error) {
		out, err := t.analysisHistory(ctx, input)
		return nil, out, toolutil.ToolError("analysis_history", err)
	})
}
