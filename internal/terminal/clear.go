// Package terminal provides interactive prompts and line clearing for the CLI.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/term"
)

// Width returns the width of stdout, or 80 when it is not a terminal.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// LinesFor returns how many terminal rows textLength characters occupy at
// the given width, plus the row the cursor moved to after Enter.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := int(math.Ceil(float64(textLength) / float64(width)))
	if lines < 1 {
		lines = 1
	}
	return lines + 1
}

// ClearPreviousLines erases a prompt and its echoed answer from stdout.
// textLength is the prompt plus input in characters.
func ClearPreviousLines(textLength int) {
	clearLines(os.Stdout, LinesFor(textLength, Width()))
}

func clearLines(w io.Writer, n int) {
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
