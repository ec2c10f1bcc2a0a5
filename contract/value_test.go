package contract

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"short string", "abc", `"abc"`},
		{"number", json.Number("1.50"), "1.5"},
		{"ascii cut", strings.Repeat("a", 100), `"` + strings.Repeat("a", 79) + "..."},
		{"two byte runes", strings.Repeat("ä", 60), `"` + strings.Repeat("ä", 39) + "..."},
		{"three byte runes", strings.Repeat("€", 40), `"` + strings.Repeat("€", 26) + "..."},
		{"four byte runes", strings.Repeat("𝄞", 30), `"` + strings.Repeat("𝄞", 19) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preview(tt.value)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), maxPreview+len("..."))
		})
	}
}
