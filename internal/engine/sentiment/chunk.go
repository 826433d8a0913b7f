package sentiment

import (
	"unicode/utf8"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

// Chunk partitions texts into order-preserving batches whose total length in runes stays
// within maxChars. A text longer than maxChars is never split; it gets a batch of its own.
// maxChars <= 0 uses the default budget.
func Chunk(texts []string, maxChars int) [][]string {
	if maxChars <= 0 {
		maxChars = engine.DefaultChunkMaxChars
	}
	var (
		batches [][]string
		current []string
		length  int
	)
	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		if len(current) > 0 && length+n > maxChars {
			batches = append(batches, current)
			current, length = nil, 0
		}
		current = append(current, t)
		length += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
