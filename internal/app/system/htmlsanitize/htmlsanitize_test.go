package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/readinglog/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  plain words ", "plain words"},
		{"<p><strong>Bold</strong> move</p>", "Bold move"},
		{"<i>Tom &amp; Jerry</i>", "Tom & Jerry"},
		{"Tom &amp; Jerry", "Tom &amp; Jerry"},
		{"Tom & Jerry, pages 3<5", "Tom & Jerry, pages 3<5"},
		{`He said "great" & left`, `He said "great" & left`},
		{"<script>alert(1)</script>safe", "safe"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPlainText(t *testing.T) {
	if !htmlsanitize.IsPlainText("") {
		t.Error("expected empty string to be plain text")
	}
	if !htmlsanitize.IsPlainText("Hello, World!") {
		t.Error("expected string without tags to be plain text")
	}
	if htmlsanitize.IsPlainText("<p>Hello</p>") {
		t.Error("expected string with tags to NOT be plain text")
	}
}
