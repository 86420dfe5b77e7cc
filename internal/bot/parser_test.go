package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		cmd  string
		args []string
	}{
		{"bare command", "ping", "ping", nil},
		{"upper-cased name", "PING", "ping", nil},
		{"args keep case", "transfer Bob 400", "transfer", []string{"Bob", "400"}},
		{"extra whitespace", "  gamble   500  ", "gamble", []string{"500"}},
		{"tabs and newlines", "tts\thello\nworld", "tts", []string{"hello", "world"}},
		{"empty", "", "", nil},
		{"only whitespace", "   ", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := parseCommand(tt.text)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}
