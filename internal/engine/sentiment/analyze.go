// Package sentiment turns a video's comments into rating distributions: chunking, prompt
// rendering, classifier calls and reply decoding.
package sentiment

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// Source is the video platform as the analyzer needs it.
type Source interface {
	FetchComments(ctx context.Context, videoID string) ([]engine.Comment, error)
	VideoMetadata(ctx context.Context, videoID string) (engine.VideoMetadata, error)
	ChannelVideos(ctx context.Context, channelID string, limit int) ([]engine.VideoMetadata, error)
}

// Backend is one text-generation backend. *engine.Classifier implements it.
type Backend interface {
	Name() string
	Reply(ctx context.Context, system, prompt string) (string, error)
}

// Options bound the analysis. Zero values fall back to the engine defaults.
type Options struct {
	ChunkMaxChars     int
	MaxChunks         int
	RollupVideos      int
	RollupConcurrency int
	// StrictReplies fails insights when the Summary/Suggestions markers are missing.
	StrictReplies bool
	// Format is the reply shape requested in chat mode.
	Format Format
}

// Analyzer runs the three analysis modes and the comment chat. It keeps no per-request state.
type Analyzer struct {
	src  Source
	chat Backend
	gen  Backend
	opts Options
}

// NewAnalyzer wires a comment source to the chat-completion and single-shot backends.
func NewAnalyzer(src Source, chat, gen Backend, opts Options) *Analyzer {
	opts.ChunkMaxChars = engine.OrDefault(opts.ChunkMaxChars, engine.DefaultChunkMaxChars)
	opts.MaxChunks = engine.OrDefault(opts.MaxChunks, engine.DefaultMaxChunks)
	opts.RollupVideos = engine.OrDefault(opts.RollupVideos, engine.DefaultRollupVideos)
	opts.RollupConcurrency = engine.OrDefault(opts.RollupConcurrency, engine.DefaultRollupConcurrency)
	return &Analyzer{src: src, chat: chat, gen: gen, opts: opts}
}

// videoInput fetches metadata and comments; either failure aborts.
func (a *Analyzer) videoInput(ctx context.Context, videoID string) (engine.VideoMetadata, []engine.Comment, error) {
	md, err := a.src.VideoMetadata(ctx, videoID)
	if err != nil {
		return engine.VideoMetadata{}, nil, err
	}
	if !md.Exists() {
		slog.Warn("sentiment: no metadata for video, prompt has empty titles", slog.String("video_id", videoID))
	}
	comments, err := a.src.FetchComments(ctx, videoID)
	if err != nil {
		return engine.VideoMetadata{}, nil, err
	}
	return md, comments, nil
}

// VideoSentiment classifies up to MaxChunks chunks of a video's comments with the chat
// backend. Comments beyond the classified chunks are dropped from the result.
func (a *Analyzer) VideoSentiment(ctx context.Context, videoID string) (engine.CommentRatings, error) {
	var out engine.CommentRatings
	err := engine.TrackOperation(ctx, "video_sentiment", func(ctx context.Context) error {
		md, comments, err := a.videoInput(ctx, videoID)
		if err != nil {
			return err
		}

		batches := Chunk(Texts(comments), a.opts.ChunkMaxChars)
		n := min(a.opts.MaxChunks, len(batches))
		replies := make([]string, 0, n)
		covered := 0
		for _, batch := range batches[:n] {
			raw, err := a.chat.Reply(ctx, "", BuildPrompt(md, batch, a.opts.Format))
			if err != nil {
				return err
			}
			replies = append(replies, raw)
			covered += len(batch)
		}
		if len(batches) > n {
			slog.Info("sentiment: chunks skipped",
				slog.String("video_id", videoID), slog.Int("chunks", len(batches)), slog.Int("classified", n))
		}

		out = DecodeWithComments(comments[:covered], strings.Join(replies, a.opts.Format.separator()), a.opts.Format)
		out.Video = md
		a.checkAlignment(videoID, out.Alignment)
		return nil
	})
	if err != nil {
		return engine.CommentRatings{}, err
	}
	engine.IncrVideoSentimentRun()
	return out, nil
}

// VideoInsights classifies all comments in one single-shot call that also returns a summary
// and suggestions for the creator.
func (a *Analyzer) VideoInsights(ctx context.Context, videoID string) (engine.InsightsResult, error) {
	var out engine.InsightsResult
	err := engine.TrackOperation(ctx, "video_insights", func(ctx context.Context) error {
		md, comments, err := a.videoInput(ctx, videoID)
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			out.Comments = DecodeWithComments(nil, "", CommaList)
			out.Comments.Video = md
			return nil
		}

		raw, err := a.gen.Reply(ctx, "", BuildInsightsPrompt(md, Texts(comments)))
		if err != nil {
			return err
		}
		reply := SplitInsights(raw)
		if !reply.Complete {
			engine.IncrMalformedReply()
			slog.Warn("sentiment: reply without summary sections",
				slog.String("video_id", videoID), slog.String("backend", a.gen.Name()), slog.Int("reply_chars", len(raw)))
			if a.opts.StrictReplies {
				return engine.MalformedReply("reply has no Summary:/Suggestions: sections")
			}
		}

		out = engine.InsightsResult{
			Comments:    DecodeWithComments(comments, reply.Labels, CommaList),
			Summary:     reply.Summary,
			Suggestions: reply.Suggestions,
		}
		out.Comments.Video = md
		a.checkAlignment(videoID, out.Comments.Alignment)
		return nil
	})
	if err != nil {
		return engine.InsightsResult{}, err
	}
	engine.IncrVideoInsightsRun()
	return out, nil
}

// ChannelSentiment rolls up the comments of a channel's most recent videos into one
// histogram. Comment fetches fan out with bounded concurrency; sections keep video order.
func (a *Analyzer) ChannelSentiment(ctx context.Context, channelID string) (engine.ChannelRollup, error) {
	var out engine.ChannelRollup
	err := engine.TrackOperation(ctx, "channel_sentiment", func(ctx context.Context) error {
		videos, err := a.src.ChannelVideos(ctx, channelID, a.opts.RollupVideos)
		if err != nil {
			return err
		}
		if len(videos) > a.opts.RollupVideos {
			videos = videos[:a.opts.RollupVideos]
		}

		sections := make([]VideoSection, len(videos))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.opts.RollupConcurrency)
		for i, v := range videos {
			g.Go(func() error {
				comments, err := a.src.FetchComments(gctx, v.VideoID)
				if err != nil {
					return err
				}
				sections[i] = VideoSection{Title: v.Title, Texts: Texts(comments)}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out = engine.ChannelRollup{Stats: engine.NewRatingHistogram(), Videos: videos}
		total := 0
		for _, s := range sections {
			total += len(s.Texts)
		}
		if total == 0 {
			return nil
		}

		channelTitle := ""
		if len(videos) > 0 {
			channelTitle = videos[0].ChannelTitle
		}
		raw, err := a.gen.Reply(ctx, "", BuildRollupPrompt(channelTitle, sections))
		if err != nil {
			return err
		}
		out.Stats = DecodeHistogram(raw, CommaList)
		if got := out.Stats.Total(); got != total {
			slog.Info("sentiment: rollup count mismatch",
				slog.String("channel_id", channelID), slog.Int("comments", total), slog.Int("rated", got))
		}
		return nil
	})
	if err != nil {
		return engine.ChannelRollup{}, err
	}
	engine.IncrChannelSentimentRun()
	return out, nil
}

func (a *Analyzer) checkAlignment(videoID string, al engine.Alignment) {
	if al.Aligned {
		return
	}
	engine.IncrMisalignedReply()
	slog.Warn("sentiment: reply not aligned with comments",
		slog.String("video_id", videoID),
		slog.Int("comments", al.Comments),
		slog.Int("codes", al.Codes),
		slog.Int("invalid", al.Invalid),
	)
}
