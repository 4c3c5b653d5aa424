package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesFor(t *testing.T) {
	tests := []struct {
		length, width, want int
	}{
		{0, 80, 2},
		{10, 80, 2},
		{80, 80, 2},
		{81, 80, 3},
		{200, 0, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LinesFor(tt.length, tt.width), "length=%d width=%d", tt.length, tt.width)
	}
}

func TestClearLines(t *testing.T) {
	var buf bytes.Buffer
	clearLines(&buf, 2)
	assert.Equal(t, "\r\x1b[2K\x1b[1A\r\x1b[2K", buf.String())
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompterWith(strings.NewReader(" a@b.com \nsecret\n\n"), &out)

	email, err := p.Line("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	pw, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)

	_, err = p.Line("Again: ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, "Email: Password: Again: ", out.String())
	assert.False(t, p.Interactive())
}

func TestPrompterLastLineWithoutNewline(t *testing.T) {
	p := NewPrompterWith(strings.NewReader("last"), &bytes.Buffer{})
	s, err := p.Line("> ")
	require.NoError(t, err)
	assert.Equal(t, "last", s)
}
