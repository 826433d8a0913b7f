package sentiment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		maxChars int
		want     [][]string
	}{
		{"empty", nil, 10, nil},
		{"one char budget", []string{"a", "b", "c"}, 1, [][]string{{"a"}, {"b"}, {"c"}}},
		{"fits in one", []string{"ab", "cd", "ef"}, 6, [][]string{{"ab", "cd", "ef"}}},
		{"greedy close", []string{"abc", "de", "fgh", "i"}, 5, [][]string{{"abc", "de"}, {"fgh", "i"}}},
		{"oversize alone", []string{"a", "toolongtext", "b"}, 4, [][]string{{"a"}, {"toolongtext"}, {"b"}}},
		{"oversize first", []string{"toolongtext", "b"}, 4, [][]string{{"toolongtext"}, {"b"}}},
		{"runes not bytes", []string{"नमस्ते", "ab"}, 8, [][]string{{"नमस्ते", "ab"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.texts, tt.maxChars))
		})
	}
}

func TestChunkPreservesOrderAndBudget(t *testing.T) {
	var texts []string
	for i := range 200 {
		texts = append(texts, strings.Repeat("x", i%37+1))
	}
	texts = append(texts, strings.Repeat("y", 500))

	const budget = 120
	batches := Chunk(texts, budget)

	var flat []string
	for _, b := range batches {
		assert.NotEmpty(t, b)
		total := 0
		for _, s := range b {
			total += utf8.RuneCountInString(s)
		}
		if len(b) > 1 {
			assert.LessOrEqual(t, total, budget)
		}
		flat = append(flat, b...)
	}
	assert.Equal(t, texts, flat)
}

func TestChunkDefaultBudget(t *testing.T) {
	texts := []string{strings.Repeat("a", 6000), strings.Repeat("b", 5000)}
	assert.Len(t, Chunk(texts, 0), 2)
}
