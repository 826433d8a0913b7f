package sentiment

import (
	"strings"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// Literal section markers of a generative reply.
const (
	summaryMarker     = "Summary:"
	suggestionsMarker = "Suggestions:"
)

// Tokenize turns a raw classifier reply into rating codes, one per non-empty token.
// Label lookup is exact; a token that is not a label yields RatingInvalid but keeps its position.
func Tokenize(raw string, f Format) []engine.RatingCode {
	var parts []string
	switch f {
	case NumberedLines:
		parts = strings.Split(raw, "\n")
	default:
		parts = strings.Split(raw, ",")
	}
	codes := make([]engine.RatingCode, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if f == NumberedLines {
			p = numberedLabel(p)
		}
		codes = append(codes, engine.RatingFromLabel(p))
	}
	return codes
}

// numberedLabel returns the label of an "N. label" line: the text after the first ". "
// up to the next one. A line without ". " has no label.
func numberedLabel(line string) string {
	_, rest, ok := strings.Cut(line, ". ")
	if !ok {
		return ""
	}
	label, _, _ := strings.Cut(rest, ". ")
	return label
}

// histogram counts the valid codes; invalid codes never appear as keys.
func histogram(codes []engine.RatingCode) engine.RatingHistogram {
	h := engine.NewRatingHistogram()
	for _, c := range codes {
		h.Add(c)
	}
	return h
}

// DecodeWithComments zips decoded codes positionally against comments.
// Comments past the end of the code sequence get a nil rating; surplus codes still count
// in the histogram but are not attached to anything.
func DecodeWithComments(comments []engine.Comment, raw string, f Format) engine.CommentRatings {
	codes := Tokenize(raw, f)

	annotated := make([]engine.AnnotatedComment, len(comments))
	for i, c := range comments {
		annotated[i] = engine.AnnotatedComment{Comment: c}
		if i < len(codes) {
			code := codes[i]
			annotated[i].Rating = &code
		}
	}

	return engine.CommentRatings{
		Stats:     histogram(codes),
		Comments:  annotated,
		Alignment: align(len(comments), codes),
	}
}

// DecodeHistogram decodes a reply without any comment association.
func DecodeHistogram(raw string, f Format) engine.RatingHistogram {
	return histogram(Tokenize(raw, f))
}

func align(comments int, codes []engine.RatingCode) engine.Alignment {
	a := engine.Alignment{Comments: comments, Codes: len(codes)}
	for _, c := range codes {
		if !c.Valid() {
			a.Invalid++
		}
	}
	a.Aligned = a.Codes == a.Comments && a.Invalid == 0
	return a
}

// InsightsReply is a generative reply split at its literal markers.
type InsightsReply struct {
	Labels      string
	Summary     string
	Suggestions string
	// Complete is false when either marker was missing.
	Complete bool
}

// SplitInsights splits raw at "Summary:" and then "Suggestions:". It never fails:
// a missing marker leaves the later fields empty and Complete false.
// Labels is the text before "Summary:" minus its first blank line. Other whitespace
// is kept, so a stray newline makes the adjacent label invalid.
func SplitInsights(raw string) InsightsReply {
	head, rest, hasSummary := strings.Cut(raw, summaryMarker)
	r := InsightsReply{Labels: strings.Replace(head, "\n\n", "", 1)}
	if !hasSummary {
		return r
	}
	summary, suggestions, hasSuggestions := strings.Cut(rest, suggestionsMarker)
	r.Summary = strings.TrimSpace(summary)
	r.Suggestions = strings.TrimSpace(suggestions)
	r.Complete = hasSuggestions
	return r
}
