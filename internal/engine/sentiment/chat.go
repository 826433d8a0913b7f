package sentiment

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// ChatPart is one text part of a chat message.
type ChatPart struct {
	Text string `json:"text"`
}

// ChatMessage is a role-tagged conversation turn. Clients may send either Parts or a
// plain Content string.
type ChatMessage struct {
	Role    string     `json:"role"`
	Content string     `json:"content,omitempty"`
	Parts   []ChatPart `json:"parts,omitempty"`
}

// Text joins the message parts.
func (m ChatMessage) Text() string {
	texts := make([]string, len(m.Parts))
	for i, p := range m.Parts {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}

// NormalizeHistory prepends the user-role seed and converts every Content-only message to
// a single part. Roles are kept as sent.
func NormalizeHistory(seed string, history []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(history)+1)
	out = append(out, ChatMessage{Role: "user", Parts: []ChatPart{{Text: seed}}})
	for _, m := range history {
		parts := m.Parts
		if parts == nil {
			parts = []ChatPart{{Text: m.Content}}
		}
		out = append(out, ChatMessage{Role: m.Role, Parts: parts})
	}
	return out
}

// renderTranscript flattens a conversation plus the new input into one prompt.
func renderTranscript(history []ChatMessage, input string) string {
	var sb strings.Builder
	for _, m := range history {
		sb.WriteString(m.Role + ": " + m.Text() + "\n\n")
	}
	sb.WriteString("user: " + input)
	return sb.String()
}

// Chat answers input in a conversation seeded with the video's numbered comments.
// History management stays with the caller; each turn refetches comments.
func (a *Analyzer) Chat(ctx context.Context, videoID string, history []ChatMessage, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", engine.InvalidInput("empty chat message")
	}
	comments, err := a.src.FetchComments(ctx, videoID)
	if err != nil {
		return "", err
	}
	conv := NormalizeHistory(ChatSeed(comments), history)
	reply, err := a.gen.Reply(ctx, "", renderTranscript(conv, input))
	if err != nil {
		return "", err
	}
	engine.IncrChatTurn()
	return reply, nil
}
