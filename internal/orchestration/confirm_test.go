package orchestration

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		prompts int
		err     bool
	}{
		{name: "yes", input: "y\n", want: true, prompts: 1},
		{name: "upper yes", input: "Y\n", want: true, prompts: 1},
		{name: "no", input: "n\n", want: false, prompts: 1},
		{name: "reprompt then no", input: "maybe\n\nyes\nN\n", want: false, prompts: 4},
		{name: "no trailing newline", input: "y", want: true, prompts: 1},
		{name: "eof", input: "maybe\n", err: true, prompts: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := NewPromptConfirmer(strings.NewReader(tt.input), &out).Confirm(7)
			if tt.err {
				require.ErrorIs(t, err, io.ErrUnexpectedEOF)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, ok)
			require.Equal(t, tt.prompts, strings.Count(out.String(), "[y/n]: "))
			require.Contains(t, out.String(), "EACH BATCH IS 7.")
		})
	}
}

func TestAutoConfirmer(t *testing.T) {
	ok, err := AutoConfirmer{}.Confirm(1)
	require.NoError(t, err)
	require.True(t, ok)
}
