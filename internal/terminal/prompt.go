package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned when the user submits an empty answer.
var ErrEmptyInput = errors.New("no input given")

// Prompter reads answers from in and writes prompts to out.
// Password input is hidden when in is a terminal.
type Prompter struct {
	out    io.Writer
	reader *bufio.Reader
	fd     int
	isTTY  bool
}

// NewPrompter returns a Prompter on stdin and stdout.
func NewPrompter() *Prompter {
	fd := int(os.Stdin.Fd())
	return &Prompter{
		out:    os.Stdout,
		reader: bufio.NewReader(os.Stdin),
		fd:     fd,
		isTTY:  term.IsTerminal(fd),
	}
}

// NewPrompterWith returns a Prompter that never treats in as a terminal.
func NewPrompterWith(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{out: out, reader: bufio.NewReader(in), fd: -1}
}

// Line prints label and returns the trimmed answer.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyInput
	}
	return s, nil
}

// Password prints label and reads an answer without echo when possible.
func (p *Prompter) Password(label string) (string, error) {
	if !p.isTTY {
		return p.Line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", ErrEmptyInput
	}
	return string(b), nil
}

// Interactive reports whether answers come from a terminal.
func (p *Prompter) Interactive() bool { return p.isTTY }
