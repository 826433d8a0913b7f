package sentiment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// Format is the reply shape a prompt asks for. Each Format has exactly one tokenizer.
type Format int

const (
	// CommaList: "positive,neutral,very negative".
	CommaList Format = iota
	// NumberedLines: "1. positive\n2. neutral".
	NumberedLines
)

func (f Format) String() string {
	switch f {
	case CommaList:
		return "comma_list"
	case NumberedLines:
		return "numbered_lines"
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// separator joins the replies of several chunks into one decodable payload.
func (f Format) separator() string {
	if f == NumberedLines {
		return "\n"
	}
	return ","
}

func (f Format) instruction() string {
	if f == NumberedLines {
		return formatNumberedLines
	}
	return formatCommaList
}

// NumberedList renders texts as a 1-indexed, newline-joined list: "1. first\n2. second".
func NumberedList(texts []string) string {
	var sb strings.Builder
	writeNumbered(&sb, texts, 1)
	return sb.String()
}

func writeNumbered(sb *strings.Builder, texts []string, start int) {
	for i, t := range texts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strconv.Itoa(start + i))
		sb.WriteString(". ")
		sb.WriteString(t)
	}
}

// Texts extracts comment texts in order.
func Texts(comments []engine.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.Text
	}
	return out
}

func labels() string {
	return fmt.Sprintf(labelsLine, strings.Join(engine.RatingLabels, ", "))
}

// BuildPrompt renders the classification prompt for one batch of one video.
func BuildPrompt(md engine.VideoMetadata, batch []string, f Format) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, sentimentPromptHead, md.ChannelTitle, md.Title)
	sb.WriteString(" " + f.instruction() + " " + ignoreMarkup + "\n")
	sb.WriteString(labels() + "\n")
	sb.WriteString(commentsHeader + "\n")
	writeNumbered(&sb, batch, 1)
	return sb.String()
}

// BuildInsightsPrompt renders the single-shot prompt over all comments: a comma list of
// labels followed by a Summary/Suggestions block.
func BuildInsightsPrompt(md engine.VideoMetadata, texts []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, sentimentPromptHead, md.ChannelTitle, md.Title)
	sb.WriteString(" " + formatCommaList + " " + ignoreMarkup + " " + insightsRequest + "\n")
	sb.WriteString(labels() + "\n")
	sb.WriteString(commentsHeader + "\n")
	writeNumbered(&sb, texts, 1)
	return sb.String()
}

// VideoSection is one video's comments inside a rollup prompt.
type VideoSection struct {
	Title string
	Texts []string
}

// BuildRollupPrompt renders one prompt covering several videos. Numbering continues
// across sections so the reply is a single label sequence.
func BuildRollupPrompt(channelTitle string, sections []VideoSection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, rollupPromptHead, channelTitle, len(sections))
	sb.WriteString(" " + formatCommaList + " " + ignoreMarkup + "\n")
	sb.WriteString(labels() + "\n")
	next := 1
	for i, s := range sections {
		sb.WriteByte('\n')
		fmt.Fprintf(&sb, videoSectionHeader, i+1, s.Title)
		sb.WriteString("\n" + commentsHeader + "\n")
		writeNumbered(&sb, s.Texts, next)
		sb.WriteByte('\n')
		next += len(s.Texts)
	}
	return sb.String()
}

// ChatSeed is the opening user message of a comment conversation.
// Markup is stripped so the conversation reads as plain text.
func ChatSeed(comments []engine.Comment) string {
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = engine.PlainText(c.Text)
	}
	return fmt.Sprintf(chatSeedPrompt, NumberedList(texts))
}
