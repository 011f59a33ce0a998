package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Sales Q1", "Sales Q1"},
		{"empty", "", ""},
		{"bold", "<b>Summary</b>", "Summary"},
		{"paragraphs", "<p>First</p>\n<p>Second</p>", "First Second"},
		{"script dropped", "Hello<script>alert(1)</script>", "Hello"},
		{"entities decoded", "Fish &amp; Chips", "Fish & Chips"},
		{"whitespace collapsed", "  a \t\n b  ", "a b"},
		{"attributes", `<a href="https://example.org" onclick="x()">link</a>`, "link"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}
