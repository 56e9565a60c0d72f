package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"short stays intact", "Ship release", "Ship release"},
		{"exactly max stays intact", strings.Repeat("a", 28), strings.Repeat("a", 28)},
		{"long gets ellipsis", strings.Repeat("a", 40), strings.Repeat("a", 25) + "..."},
		{"multi-byte not split", strings.Repeat("ü", 40), strings.Repeat("ü", 25) + "..."},
		{"cjk not split", strings.Repeat("日", 40), strings.Repeat("日", 25) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateTitle(tc.title, 28)
			assert.Equal(t, tc.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
