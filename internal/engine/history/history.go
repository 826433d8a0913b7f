// Package history persists a summary of every finished analysis.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// Mode is the analysis that produced an entry.
type Mode string

const (
	ModeVideoSentiment   Mode = "video_sentiment"
	ModeVideoInsights    Mode = "video_insights"
	ModeChannelSentiment Mode = "channel_sentiment"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeVideoSentiment, ModeVideoInsights, ModeChannelSentiment:
		return true
	}
	return false
}

// Entry is one recorded analysis. TargetID is a video ID or a channel ID depending on Mode.
type Entry struct {
	ID        int64                  `json:"id"`
	Mode      Mode                   `json:"mode"`
	TargetID  string                 `json:"target_id"`
	Title     string                 `json:"title,omitempty"`
	Stats     engine.RatingHistogram `json:"stats"`
	Comments  int                    `json:"comments"`
	Aligned   bool                   `json:"aligned"`
	CreatedAt time.Time              `json:"created_at"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Mode     Mode
	TargetID string
	Limit    int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (f Filter) limit() int {
	if f.Limit <= 0 || f.Limit > maxListLimit {
		return defaultListLimit
	}
	return f.Limit
}

// Store records and lists analyses, newest first.
type Store interface {
	Record(ctx context.Context, e Entry) (int64, error)
	List(ctx context.Context, f Filter) ([]Entry, error)
	Close() error
}

func validate(e Entry) error {
	if !e.Mode.Valid() {
		return fmt.Errorf("history: invalid mode %q", e.Mode)
	}
	if e.TargetID == "" {
		return errors.New("history: target id is required")
	}
	return nil
}

// Open picks Postgres when databaseURL is set, otherwise SQLite at sqlitePath.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		pg, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	lite, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

// Recorder records finished analyses. Failures are logged and counted, never returned. A nil *Recorder or nil store drops everything.
type Recorder struct {
	store Store
}

// NewRecorder wraps store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record stores e with a short deadline of its own.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := r.store.Record(ctx, e); err != nil {
		engine.IncrHistoryWriteError()
		slog.Warn("history: record failed",
			slog.String("mode", string(e.Mode)), slog.String("target_id", e.TargetID), slog.Any("error", err))
	}
}

// List proxies to the store. It returns an empty list when history is disabled.
func (r *Recorder) List(ctx context.Context, f Filter) ([]Entry, error) {
	if r == nil || r.store == nil {
		return []Entry{}, nil
	}
	if f.Mode != "" && !f.Mode.Valid() {
		return nil, fmt.Errorf("history: invalid mode %q (want %s)", f.Mode, strings.Join(modeNames(), ", "))
	}
	return r.store.List(ctx, f)
}

func modeNames() []string {
	return []string{string(ModeVideoSentiment), string(ModeVideoInsights), string(ModeChannelSentiment)}
}

// FromRatings builds an entry for a per-comment result.
func FromRatings(mode Mode, videoID string, r engine.CommentRatings) Entry {
	return Entry{
		Mode:     mode,
		TargetID: videoID,
		Title:    r.Video.Title,
		Stats:    r.Stats,
		Comments: len(r.Comments),
		Aligned:  r.Alignment.Aligned,
	}
}

// FromRollup builds an entry for a channel rollup.
func FromRollup(channelID string, r engine.ChannelRollup) Entry {
	title := ""
	if len(r.Videos) > 0 {
		title = r.Videos[0].ChannelTitle
	}
	return Entry{
		Mode:     ModeChannelSentiment,
		TargetID: channelID,
		Title:    title,
		Stats:    r.Stats,
		Comments: r.Stats.Total(),
		Aligned:  true,
	}
}
