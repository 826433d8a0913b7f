package engine

import "strconv"

// --- Core domain types ---

// Comment is one top-level comment as returned by the Data API.
// Text is textDisplay verbatim and may contain markup and links.
type Comment struct {
	Author      string `json:"author"`
	Text        string `json:"text"`
	PublishedAt string `json:"publishedAt"`
}

// AnnotatedComment is a Comment plus its decoded rating.
// Rating is nil when the reply had no token for this position, 0 when the token was not a label.
type AnnotatedComment struct {
	Comment
	Rating *RatingCode `json:"rating"`
}

// RatingCode encodes one of the five ordered sentiment labels as 1..5; 0 is the invalid sentinel.
type RatingCode int

const RatingInvalid RatingCode = 0

// RatingLabels are ordered low to high; a label's code is its index + 1.
var RatingLabels = []string{"very negative", "negative", "neutral", "positive", "very positive"}

// Valid reports whether c is one of 1..5.
func (c RatingCode) Valid() bool {
	return c >= 1 && int(c) <= len(RatingLabels)
}

// RatingFromLabel performs an exact, case- and whitespace-sensitive lookup.
func RatingFromLabel(label string) RatingCode {
	for i, l := range RatingLabels {
		if l == label {
			return RatingCode(i + 1)
		}
	}
	return RatingInvalid
}

// RatingHistogram maps "1".."5" to counts. All five keys are always present.
type RatingHistogram map[string]int

// NewRatingHistogram returns a zero-filled histogram.
func NewRatingHistogram() RatingHistogram {
	h := make(RatingHistogram, len(RatingLabels))
	for i := range RatingLabels {
		h[strconv.Itoa(i+1)] = 0
	}
	return h
}

// Add counts c when it is valid; invalid codes are never keyed.
func (h RatingHistogram) Add(c RatingCode) {
	if c.Valid() {
		h[strconv.Itoa(int(c))]++
	}
}

// Total is the number of valid ratings counted.
func (h RatingHistogram) Total() int {
	n := 0
	for i := range RatingLabels {
		n += h[strconv.Itoa(i+1)]
	}
	return n
}

// VideoMetadata is the subset of a video snippet the analysis uses.
// The zero value stands for a video that does not exist.
type VideoMetadata struct {
	VideoID      string `json:"videoId,omitempty"`
	Title        string `json:"title,omitempty"`
	ChannelID    string `json:"channelId,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
	Description  string `json:"description,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	VideoURL     string `json:"videoUrl,omitempty"`
}

// Exists reports whether the metadata came from a real video.
func (m VideoMetadata) Exists() bool {
	return m.Title != "" || m.ChannelTitle != ""
}

// --- Analysis results ---

// Alignment describes how well decoded codes lined up with the comments sent.
type Alignment struct {
	Comments int  `json:"comments"`
	Codes    int  `json:"codes"`
	Invalid  int  `json:"invalid"`
	Aligned  bool `json:"aligned"`
}

// CommentRatings is the chat-mode result: histogram plus per-comment ratings.
// Video is the metadata the prompt was rendered with; it is zero for an unknown video.
type CommentRatings struct {
	Video     VideoMetadata      `json:"video"`
	Stats     RatingHistogram    `json:"stats"`
	Comments  []AnnotatedComment `json:"comments"`
	Alignment Alignment          `json:"alignment"`
}

// InsightsResult is the generative-mode result.
type InsightsResult struct {
	Comments    CommentRatings `json:"comments"`
	Summary     string         `json:"summary"`
	Suggestions string         `json:"suggestions"`
}

// ChannelRollup is the multi-video result; there is no per-comment association.
type ChannelRollup struct {
	Stats  RatingHistogram `json:"stats"`
	Videos []VideoMetadata `json:"videos"`
}
