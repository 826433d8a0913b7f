package engine

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "bahut accha video", "bahut accha video"},
		{"link", `dekho <a href="https://www.youtube.com/watch?v=abc&amp;t=10">0:10</a> yaha`, "dekho 0:10 yaha"},
		{"line breaks", "first line<br>second<br/>third", "first line\nsecond\nthird"},
		{"entities", "bhai &quot;op&quot; &amp; best", `bhai "op" & best`},
		{"bold", "<b>mast</b>   hai", "mast hai"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
