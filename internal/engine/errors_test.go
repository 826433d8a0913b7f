package engine

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsByKind(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("video abc: %w", UpstreamFetch("failed to fetch comments", cause))

	if !errors.Is(err, ErrUpstreamFetch) {
		t.Error("expected errors.Is(err, ErrUpstreamFetch)")
	}
	if errors.Is(err, ErrClassifier) {
		t.Error("upstream error must not match ErrClassifier")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to unwrap")
	}
	if got := err.Error(); got != "video abc: failed to fetch comments: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{InvalidInput("no video id"), KindInvalidInput},
		{MalformedReply("missing Summary:"), KindMalformedReply},
		{ClassifierFailure("empty", nil), KindClassifier},
		{errors.New("plain"), ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
