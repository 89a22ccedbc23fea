package collab

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := Prompt{In: strings.NewReader(tt.input), Out: &out}
			assert.Equal(t, tt.want, p.Confirm("Delete cookie \"sid\"?"))
			assert.Equal(t, "Delete cookie \"sid\"? [y/N]: ", out.String())
		})
	}
}

func TestAlwaysConfirm(t *testing.T) {
	assert.True(t, AlwaysConfirm{}.Confirm("anything"))
}

func TestClipboardFunc(t *testing.T) {
	var got string
	c := ClipboardFunc(func(text string) error {
		got = text
		return nil
	})
	require.NoError(t, c.WriteText("hello"))
	assert.Equal(t, "hello", got)

	failing := ClipboardFunc(func(string) error { return errors.New("denied") })
	assert.Error(t, failing.WriteText("x"))
}

func TestStaticTab_Hostname(t *testing.T) {
	t.Run("returns host", func(t *testing.T) {
		host, err := StaticTab{URL: "https://www.example.com/login"}.Hostname()
		require.NoError(t, err)
		assert.Equal(t, "www.example.com", host)
	})

	t.Run("empty url", func(t *testing.T) {
		_, err := StaticTab{}.Hostname()
		assert.ErrorIs(t, err, ErrNoTab)
	})

	t.Run("url without host", func(t *testing.T) {
		_, err := StaticTab{URL: "about:blank"}.Hostname()
		assert.ErrorIs(t, err, ErrNoTab)
	})
}
