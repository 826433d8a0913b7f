package youtube

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

var (
	videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	bareIDRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	channelRE = regexp.MustCompile(`youtube\.com/channel/(UC[a-zA-Z0-9_-]{22})`)
)

// WatchURL is the canonical watch page of a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// ParseVideoID pulls the 11-char video ID from a watch, youtu.be, shorts or embed URL,
// or accepts a bare ID.
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if bareIDRE.MatchString(raw) {
		return raw, nil
	}
	if m := videoIDRE.FindStringSubmatch(raw); len(m) >= 2 {
		return m[1], nil
	}
	return "", engine.InvalidInput("cannot parse video id from " + quoteInput(raw))
}

// ParseHandle returns the channel handle after "@", up to the next "/", "?" or end.
func ParseHandle(raw string) (string, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(raw), "@")
	if !ok {
		return "", engine.InvalidInput("no @handle in " + quoteInput(raw))
	}
	if i := strings.IndexAny(after, "/?#"); i >= 0 {
		after = after[:i]
	}
	if after == "" {
		return "", engine.InvalidInput("empty @handle in " + quoteInput(raw))
	}
	return after, nil
}

// ChannelRef identifies a channel either directly by ID or by handle.
type ChannelRef struct {
	ID     string
	Handle string
}

// ParseChannelRef accepts a /channel/UC... URL, a bare UC... ID, or anything ParseHandle accepts.
func ParseChannelRef(raw string) (ChannelRef, error) {
	raw = strings.TrimSpace(raw)
	if m := channelRE.FindStringSubmatch(raw); len(m) >= 2 {
		return ChannelRef{ID: m[1]}, nil
	}
	if strings.HasPrefix(raw, "UC") && len(raw) == 24 && !strings.ContainsAny(raw, "/?@ ") {
		return ChannelRef{ID: raw}, nil
	}
	h, err := ParseHandle(raw)
	if err != nil {
		return ChannelRef{}, err
	}
	return ChannelRef{Handle: h}, nil
}

func quoteInput(s string) string {
	return `"` + engine.TruncateRunes(s, 120, "...") + `"`
}
