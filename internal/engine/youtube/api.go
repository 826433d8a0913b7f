package youtube

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// --- Data API v3 types ---

type listResp[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type commentThread struct {
	Snippet struct {
		TopLevelComment struct {
			Snippet commentSnippet `json:"snippet"`
		} `json:"topLevelComment"`
	} `json:"snippet"`
}

type commentSnippet struct {
	AuthorDisplayName string `json:"authorDisplayName"`
	TextDisplay       string `json:"textDisplay"`
	TextOriginal      string `json:"textOriginal"`
	PublishedAt       string `json:"publishedAt"`
}

type searchItem struct {
	ID struct {
		VideoID   string `json:"videoId"`
		ChannelID string `json:"channelId"`
	} `json:"id"`
	Snippet itemSnippet `json:"snippet"`
}

type videoItem struct {
	ID      string      `json:"id"`
	Snippet itemSnippet `json:"snippet"`
}

type itemSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   struct {
		High struct {
			URL string `json:"url"`
		} `json:"high"`
	} `json:"thumbnails"`
}

func (s itemSnippet) metadata(videoID string) engine.VideoMetadata {
	return engine.VideoMetadata{
		VideoID:      videoID,
		Title:        s.Title,
		ChannelID:    s.ChannelID,
		ChannelTitle: s.ChannelTitle,
		Description:  s.Description,
		PublishedAt:  s.PublishedAt,
		Thumbnail:    s.Thumbnails.High.URL,
		VideoURL:     WatchURL(videoID),
	}
}

// CommentPage is one page of top-level comments.
type CommentPage struct {
	Comments      []engine.Comment
	NextPageToken string
}

// ListComments fetches one commentThreads page (50 per page, relevance order).
func (c *Client) ListComments(ctx context.Context, videoID, pageToken string) (CommentPage, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)
	params.Set("maxResults", strconv.Itoa(maxPageSize))
	params.Set("order", "relevance")
	params.Set("textFormat", "html")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var resp listResp[commentThread]
	if err := c.get(ctx, "commentThreads", params, &resp); err != nil {
		return CommentPage{}, err
	}

	page := CommentPage{NextPageToken: resp.NextPageToken, Comments: make([]engine.Comment, 0, len(resp.Items))}
	for _, it := range resp.Items {
		s := it.Snippet.TopLevelComment.Snippet
		text := s.TextDisplay
		if text == "" {
			text = s.TextOriginal
		}
		page.Comments = append(page.Comments, engine.Comment{
			Author:      s.AuthorDisplayName,
			Text:        text,
			PublishedAt: s.PublishedAt,
		})
	}
	return page, nil
}

// FetchComments pages through a video's top-level comments until there are no more pages
// or the collected count exceeds the cap, then drops duplicate texts.
// The cap is checked before each page, so the result can overshoot by up to one page.
func (c *Client) FetchComments(ctx context.Context, videoID string) ([]engine.Comment, error) {
	var (
		all       []engine.Comment
		pageToken string
	)
	for {
		if len(all) > c.cfg.CommentCap {
			break
		}
		page, err := c.ListComments(ctx, videoID, pageToken)
		if err != nil {
			slog.Warn("youtube: comment fetch failed",
				slog.String("video_id", videoID), slog.Int("collected", len(all)), slog.Any("error", err))
			return nil, engine.UpstreamFetch("failed to fetch comments", err)
		}
		all = append(all, page.Comments...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	out := DedupByText(all)
	engine.AddCommentsFetched(len(out))
	slog.Debug("youtube: comments fetched",
		slog.String("video_id", videoID), slog.Int("raw", len(all)), slog.Int("unique", len(out)))
	return out, nil
}

// DedupByText keeps one comment per distinct text. A text keeps the position of its
// first occurrence but carries the author and timestamp of its last.
func DedupByText(comments []engine.Comment) []engine.Comment {
	index := make(map[string]int, len(comments))
	out := make([]engine.Comment, 0, len(comments))
	for _, cm := range comments {
		if i, ok := index[cm.Text]; ok {
			out[i] = cm
			continue
		}
		index[cm.Text] = len(out)
		out = append(out, cm)
	}
	return out
}

// VideoMetadata returns the snippet of a video. An unknown ID yields the zero value.
func (c *Client) VideoMetadata(ctx context.Context, videoID string) (engine.VideoMetadata, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)

	var resp listResp[videoItem]
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return engine.VideoMetadata{}, engine.UpstreamFetch("failed to fetch video metadata", err)
	}
	if len(resp.Items) == 0 {
		return engine.VideoMetadata{}, nil
	}
	it := resp.Items[0]
	return it.Snippet.metadata(it.ID), nil
}

// ResolveChannel returns the channel ID of the first channel search hit for query.
func (c *Client) ResolveChannel(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "channel")
	params.Set("maxResults", "1")

	var resp listResp[searchItem]
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return "", engine.UpstreamFetch("failed to resolve channel", err)
	}
	for _, it := range resp.Items {
		id := it.ID.ChannelID
		if id == "" {
			id = it.Snippet.ChannelID
		}
		if id != "" {
			return id, nil
		}
	}
	return "", engine.InvalidInput("channel not found: " + query)
}

// ChannelVideos lists up to limit of a channel's most recent videos, newest first.
func (c *Client) ChannelVideos(ctx context.Context, channelID string, limit int) ([]engine.VideoMetadata, error) {
	if channelID == "" {
		return nil, engine.InvalidInput("empty channel id")
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("type", "video")
	params.Set("order", "date")
	params.Set("maxResults", strconv.Itoa(limit))

	var resp listResp[searchItem]
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, engine.UpstreamFetch("failed to list channel videos", err)
	}
	videos := make([]engine.VideoMetadata, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.ID.VideoID == "" {
			continue
		}
		videos = append(videos, it.Snippet.metadata(it.ID.VideoID))
	}
	if len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// ResolveRef turns a parsed channel reference into a channel ID.
func (c *Client) ResolveRef(ctx context.Context, ref ChannelRef) (string, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}
	if ref.Handle == "" {
		return "", engine.InvalidInput("empty channel reference")
	}
	return c.ResolveChannel(ctx, ref.Handle)
}
