package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketctl/cli/internal/terminal"
)

func TestPromptEmail(t *testing.T) {
	var out bytes.Buffer
	p := terminal.NewPrompterWith(strings.NewReader("a@b.com\n"), &out)

	got, err := promptEmail(p, "")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got)
	assert.Equal(t, "Email: ", out.String(), "piped input keeps the plain prompt")

	out.Reset()
	got, err = promptEmail(terminal.NewPrompterWith(strings.NewReader(""), &out), "preset@b.com")
	require.NoError(t, err)
	assert.Equal(t, "preset@b.com", got)
	assert.Empty(t, out.String(), "preset skips the prompt")

	_, err = promptEmail(terminal.NewPrompterWith(strings.NewReader("\n"), &out), "")
	assert.ErrorIs(t, err, terminal.ErrEmptyInput)
}
