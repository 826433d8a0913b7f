package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

type fakeSource struct {
	meta     map[string]engine.VideoMetadata
	comments map[string][]engine.Comment
	videos   []engine.VideoMetadata
	fetchErr map[string]error
	delay    map[string]time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeSource) FetchComments(ctx context.Context, videoID string) ([]engine.Comment, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if d := f.delay[videoID]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.fetchErr[videoID]; err != nil {
		return nil, err
	}
	return f.comments[videoID], nil
}

func (f *fakeSource) VideoMetadata(_ context.Context, videoID string) (engine.VideoMetadata, error) {
	return f.meta[videoID], nil
}

func (f *fakeSource) ChannelVideos(_ context.Context, _ string, limit int) ([]engine.VideoMetadata, error) {
	if len(f.videos) > limit {
		return f.videos[:limit], nil
	}
	return f.videos, nil
}

type fakeBackend struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Reply(_ context.Context, _, prompt string) (string, error) {
	b.mu.Lock()
	b.prompts = append(b.prompts, prompt)
	b.mu.Unlock()
	return b.reply(prompt)
}

func fixedReply(s string) *fakeBackend {
	return &fakeBackend{reply: func(string) (string, error) { return s, nil }}
}

func newSource(n int, textLen int) *fakeSource {
	cs := make([]engine.Comment, n)
	for i := range cs {
		cs[i] = engine.Comment{Author: "u", Text: fmt.Sprintf("%0*d", textLen, i)}
	}
	return &fakeSource{
		meta:     map[string]engine.VideoMetadata{"vid": testVideo},
		comments: map[string][]engine.Comment{"vid": cs},
	}
}

func TestVideoSentimentFirstChunkOnly(t *testing.T) {
	src := newSource(30, 10) // 300 chars
	chat := fixedReply(strings.TrimSuffix(strings.Repeat("positive,", 10), ","))
	a := NewAnalyzer(src, chat, fixedReply(""), Options{ChunkMaxChars: 100})

	res, err := a.VideoSentiment(context.Background(), "vid")
	require.NoError(t, err)
	require.Len(t, chat.prompts, 1)
	assert.Equal(t, testVideo, res.Video)
	assert.Len(t, res.Comments, 10, "comments re-sliced to the classified chunk")
	assert.Equal(t, 10, res.Stats["4"])
	assert.True(t, res.Alignment.Aligned)
	assert.Contains(t, chat.prompts[0], "10. "+src.comments["vid"][9].Text)
	assert.NotContains(t, chat.prompts[0], src.comments["vid"][10].Text)
}

func TestVideoSentimentMaxChunks(t *testing.T) {
	src := newSource(30, 10)
	chat := &fakeBackend{reply: func(p string) (string, error) {
		return strings.TrimSuffix(strings.Repeat("negative,", strings.Count(p, "\n")-2), ","), nil
	}}
	a := NewAnalyzer(src, chat, fixedReply(""), Options{ChunkMaxChars: 100, MaxChunks: 2})

	res, err := a.VideoSentiment(context.Background(), "vid")
	require.NoError(t, err)
	assert.Len(t, chat.prompts, 2)
	assert.Len(t, res.Comments, 20)
	assert.Equal(t, 20, res.Stats["2"])
	for _, c := range res.Comments {
		require.NotNil(t, c.Rating)
	}
}

func TestVideoSentimentNumberedLines(t *testing.T) {
	src := newSource(2, 3)
	a := NewAnalyzer(src, fixedReply("1. very positive\n2. neutral"), fixedReply(""), Options{Format: NumberedLines})

	res, err := a.VideoSentiment(context.Background(), "vid")
	require.NoError(t, err)
	assert.Equal(t, engine.RatingCode(5), *res.Comments[0].Rating)
	assert.Equal(t, engine.RatingCode(3), *res.Comments[1].Rating)
}

func TestVideoSentimentNoComments(t *testing.T) {
	src := &fakeSource{meta: map[string]engine.VideoMetadata{"vid": testVideo}}
	chat := fixedReply("positive")
	a := NewAnalyzer(src, chat, fixedReply(""), Options{})

	res, err := a.VideoSentiment(context.Background(), "vid")
	require.NoError(t, err)
	assert.Empty(t, chat.prompts)
	assert.Empty(t, res.Comments)
	assert.Equal(t, engine.NewRatingHistogram(), res.Stats)
}

func TestVideoSentimentErrorsAbort(t *testing.T) {
	src := newSource(3, 5)
	src.fetchErr = map[string]error{"vid": engine.UpstreamFetch("failed to fetch comments", errors.New("boom"))}
	a := NewAnalyzer(src, fixedReply("positive"), fixedReply(""), Options{})
	_, err := a.VideoSentiment(context.Background(), "vid")
	assert.ErrorIs(t, err, engine.ErrUpstreamFetch)

	src = newSource(3, 5)
	failing := &fakeBackend{reply: func(string) (string, error) {
		return "", engine.ClassifierFailure("chat call failed", errors.New("503"))
	}}
	a = NewAnalyzer(src, failing, fixedReply(""), Options{})
	_, err = a.VideoSentiment(context.Background(), "vid")
	assert.ErrorIs(t, err, engine.ErrClassifier)
}

func TestVideoInsights(t *testing.T) {
	src := newSource(3, 4)
	gen := fixedReply("positive,negative,neutral\n\nSummary: loved the edit\nSuggestions: upload weekly")
	a := NewAnalyzer(src, fixedReply(""), gen, Options{StrictReplies: true})

	res, err := a.VideoInsights(context.Background(), "vid")
	require.NoError(t, err)
	assert.Equal(t, "loved the edit", res.Summary)
	assert.Equal(t, "upload weekly", res.Suggestions)
	assert.Equal(t, testVideo.Title, res.Comments.Video.Title)
	assert.Equal(t, hist(0, 1, 1, 1), res.Comments.Stats)
	assert.Len(t, res.Comments.Comments, 3)
	assert.True(t, res.Comments.Alignment.Aligned)
	assert.Contains(t, gen.prompts[0], "3. "+src.comments["vid"][2].Text)
}

func TestVideoInsightsMissingMarkers(t *testing.T) {
	src := newSource(2, 4)

	strict := NewAnalyzer(src, fixedReply(""), fixedReply("positive,neutral"), Options{StrictReplies: true})
	_, err := strict.VideoInsights(context.Background(), "vid")
	assert.ErrorIs(t, err, engine.ErrMalformedReply)

	lenient := NewAnalyzer(src, fixedReply(""), fixedReply("positive,neutral"), Options{})
	res, err := lenient.VideoInsights(context.Background(), "vid")
	require.NoError(t, err)
	assert.Empty(t, res.Summary)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, 2, res.Comments.Stats.Total())
}

func TestChannelSentiment(t *testing.T) {
	src := &fakeSource{comments: map[string][]engine.Comment{}, delay: map[string]time.Duration{}}
	for i := range 7 {
		id := fmt.Sprintf("v%d", i)
		src.videos = append(src.videos, engine.VideoMetadata{VideoID: id, Title: "title " + id, ChannelTitle: "Bhuvan"})
		src.comments[id] = comments(fmt.Sprintf("%s-a", id), fmt.Sprintf("%s-b", id))
		// earlier videos finish last
		src.delay[id] = time.Duration(7-i) * 5 * time.Millisecond
	}
	gen := fixedReply(strings.TrimSuffix(strings.Repeat("very positive,", 10), ","))
	a := NewAnalyzer(src, fixedReply(""), gen, Options{RollupConcurrency: 2})

	res, err := a.ChannelSentiment(context.Background(), "UCchan")
	require.NoError(t, err)
	assert.Len(t, res.Videos, 5)
	assert.Equal(t, hist(0, 0, 0, 0, 10), res.Stats)
	assert.LessOrEqual(t, src.peak.Load(), int32(2))

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, `posted by "Bhuvan"`)
	assert.Contains(t, p, "1. v0-a\n2. v0-b")
	assert.Contains(t, p, "9. v4-a\n10. v4-b")
	assert.NotContains(t, p, "v5-a")
	assert.Less(t, strings.Index(p, "v0-a"), strings.Index(p, "v4-a"))
}

func TestChannelSentimentFetchFailureAborts(t *testing.T) {
	src := &fakeSource{
		videos:   []engine.VideoMetadata{{VideoID: "a"}, {VideoID: "b"}},
		comments: map[string][]engine.Comment{"a": comments("x")},
		fetchErr: map[string]error{"b": engine.UpstreamFetch("failed to fetch comments", nil)},
	}
	gen := fixedReply("positive")
	a := NewAnalyzer(src, fixedReply(""), gen, Options{})

	_, err := a.ChannelSentiment(context.Background(), "UCchan")
	assert.ErrorIs(t, err, engine.ErrUpstreamFetch)
	assert.Empty(t, gen.prompts)
}

func TestChat(t *testing.T) {
	src := newSource(2, 3)
	gen := fixedReply("most viewers are happy")
	a := NewAnalyzer(src, fixedReply(""), gen, Options{})

	history := []ChatMessage{
		{Role: "user", Content: "what do people think?"},
		{Role: "model", Parts: []ChatPart{{Text: "mostly positive"}}},
	}
	reply, err := a.Chat(context.Background(), "vid", history, "any complaints?")
	require.NoError(t, err)
	assert.Equal(t, "most viewers are happy", reply)

	p := gen.prompts[0]
	assert.True(t, strings.HasPrefix(p, "user: You are an assistant that helps analyze YouTube comments."))
	assert.Contains(t, p, "user: what do people think?\n\nmodel: mostly positive\n\n")
	assert.True(t, strings.HasSuffix(p, "user: any complaints?"))

	_, err = a.Chat(context.Background(), "vid", nil, "  ")
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestNormalizeHistory(t *testing.T) {
	got := NormalizeHistory("seed", []ChatMessage{{Role: "model", Content: "hi"}})
	require.Len(t, got, 2)
	assert.Equal(t, ChatMessage{Role: "user", Parts: []ChatPart{{Text: "seed"}}}, got[0])
	assert.Equal(t, ChatMessage{Role: "model", Parts: []ChatPart{{Text: "hi"}}}, got[1])
}
