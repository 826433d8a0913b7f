package ytserver

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/history"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/sentiment"
	"github.com/anatolykoptev/go_ytpulse/internal/engine/youtube"
)

const testVideoID = "dQw4w9WgXcQ"

type fakePlatform struct {
	fetches  atomic.Int32
	comments []engine.Comment
	videos   []engine.VideoMetadata
	channels map[string]string
}

func (f *fakePlatform) FetchComments(context.Context, string) ([]engine.Comment, error) {
	f.fetches.Add(1)
	return f.comments, nil
}

func (f *fakePlatform) VideoMetadata(_ context.Context, id string) (engine.VideoMetadata, error) {
	return engine.VideoMetadata{VideoID: id, Title: "Vlog", ChannelTitle: "Bhuvan"}, nil
}

func (f *fakePlatform) ChannelVideos(_ context.Context, _ string, limit int) ([]engine.VideoMetadata, error) {
	if len(f.videos) > limit {
		return f.videos[:limit], nil
	}
	return f.videos, nil
}

func (f *fakePlatform) ResolveRef(_ context.Context, ref youtube.ChannelRef) (string, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}
	if id, ok := f.channels[ref.Handle]; ok {
		return id, nil
	}
	return "", engine.InvalidInput("channel not found: " + ref.Handle)
}

func completer(reply string) *engine.Classifier {
	return engine.NewClassifier("fake", func(context.Context, string, string) (string, error) {
		return reply, nil
	}, time.Second)
}

func newTestTools(t *testing.T) (*tools, *fakePlatform) {
	t.Helper()
	engine.InitCache("", time.Minute, 100, time.Minute)
	t.Cleanup(engine.CloseCache)

	store, err := history.OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	p := &fakePlatform{
		comments: []engine.Comment{{Text: "mast <b>video</b>"}, {Text: "bakwas"}},
		videos: []engine.VideoMetadata{
			{VideoID: "aaaaaaaaaaa", Title: "one", ChannelTitle: "Bhuvan", Thumbnail: "https://i.ytimg.com/a.jpg", VideoURL: youtube.WatchURL("aaaaaaaaaaa")},
			{VideoID: "bbbbbbbbbbb", Title: "two", ChannelTitle: "Bhuvan"},
		},
		channels: map[string]string{"bhuvan": "UC1234567890123456789012"},
	}
	an := sentiment.NewAnalyzer(p,
		completer("very positive,very negative"),
		completer("positive,negative\n\nSummary: mixed\nSuggestions: better audio"),
		sentiment.Options{StrictReplies: true},
	)
	return &tools{Deps: Deps{
		Platform:           p,
		Analyzer:           an,
		History:            history.NewRecorder(store),
		ChannelVideosLimit: 15,
	}}, p
}

func TestVideoSentimentToolCachesAndRecords(t *testing.T) {
	tl, p := newTestTools(t)
	ctx := context.Background()

	out, err := tl.videoSentiment(ctx, VideoInput{URL: "https://youtu.be/" + testVideoID})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Stats["5"])
	assert.Equal(t, 1, out.Stats["1"])
	assert.True(t, out.Alignment.Aligned)

	again, err := tl.videoSentiment(ctx, VideoInput{URL: "https://www.youtube.com/watch?v=" + testVideoID})
	require.NoError(t, err)
	assert.Equal(t, out.Stats, again.Stats)
	assert.Equal(t, int32(1), p.fetches.Load(), "second call served from cache")

	hist, err := tl.analysisHistory(ctx, AnalysisHistoryInput{TargetID: testVideoID})
	require.NoError(t, err)
	require.Equal(t, 1, hist.Total)
	assert.Equal(t, history.ModeVideoSentiment, hist.Entries[0].Mode)
	assert.Equal(t, "Vlog", hist.Entries[0].Title)
}

func TestVideoSentimentToolBadURL(t *testing.T) {
	tl, p := newTestTools(t)
	_, err := tl.videoSentiment(context.Background(), VideoInput{URL: "https://example.com/nope"})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
	assert.Zero(t, p.fetches.Load())
}

func TestVideoInsightsTool(t *testing.T) {
	tl, _ := newTestTools(t)
	out, err := tl.videoInsights(context.Background(), VideoInput{URL: testVideoID})
	require.NoError(t, err)
	assert.Equal(t, "mixed", out.Summary)
	assert.Equal(t, "better audio", out.Suggestions)
	assert.Equal(t, 2, out.Comments.Stats.Total())
}

func TestChannelTools(t *testing.T) {
	tl, _ := newTestTools(t)
	ctx := context.Background()

	lookup, err := tl.channelLookup(ctx, ChannelInput{URL: "https://www.youtube.com/@bhuvan/videos"})
	require.NoError(t, err)
	assert.Equal(t, ChannelLookupOutput{Success: true, ChannelID: "UC1234567890123456789012"}, lookup)

	missing, err := tl.channelLookup(ctx, ChannelInput{URL: "https://www.youtube.com/@ghost"})
	require.NoError(t, err)
	assert.False(t, missing.Success)

	videos, err := tl.channelVideos(ctx, ChannelVideosInput{URL: "@bhuvan", Limit: 1})
	require.NoError(t, err)
	require.Len(t, videos.Videos, 1)
	assert.Equal(t, ChannelVideo{Title: "one", VideoID: "aaaaaaaaaaa", Thumbnail: "https://i.ytimg.com/a.jpg", VideoURL: "https://www.youtube.com/watch?v=aaaaaaaaaaa"}, videos.Videos[0])

	rollup, err := tl.channelSentiment(ctx, ChannelInput{URL: "https://www.youtube.com/@bhuvan"})
	require.NoError(t, err)
	assert.Len(t, rollup.Videos, 2)
	// the single-shot reply carries one clean label; the rest is summary text
	assert.Equal(t, 1, rollup.Stats["4"])
	assert.Equal(t, 1, rollup.Stats.Total())

	_, err = tl.channelSentiment(ctx, ChannelInput{URL: "https://www.youtube.com/c/legacy"})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestVideoCommentsTool(t *testing.T) {
	tl, _ := newTestTools(t)

	out, err := tl.videoComments(context.Background(), VideoCommentsInput{VideoID: testVideoID})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "1. mast video\n2. bakwas", out.Comments)

	_, err = tl.videoComments(context.Background(), VideoCommentsInput{})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestCommentsChatTool(t *testing.T) {
	tl, _ := newTestTools(t)
	out, err := tl.commentsChat(context.Background(), CommentsChatInput{
		URL:     "https://www.youtube.com/watch?v=" + testVideoID,
		History: []sentiment.ChatMessage{{Role: "model", Content: "hello"}},
		Message: "what do they dislike?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Content)
}

func TestAnalysisHistoryBadMode(t *testing.T) {
	tl, _ := newTestTools(t)
	_, err := tl.analysisHistory(context.Background(), AnalysisHistoryInput{Mode: "bogus"})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, engine.ErrInvalidInput))
}
