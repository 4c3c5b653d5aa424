package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"pocketctl/cli/internal/terminal"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner animates frames followed by text on a single line of w
// until the returned function is called, which also clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// spin shows a spinner on stderr while fn runs, when stderr is a terminal.
func spin(text string, fn func() error) error {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return fn()
	}
	stop := startInlineSpinner(os.Stderr, text, spinnerFrames, 120*time.Millisecond)
	defer stop()
	return fn()
}

func loginGreeting(identifier string) string {
	greetings := []string{
		"🎉 Welcome back, %s!",
		"✨ Great to see you, %s!",
		"🚀 You're all set, %s!",
		"👋 Hello %s!",
		"🔓 Access granted! Welcome %s!",
	}
	return fmt.Sprintf(greetings[rand.Intn(len(greetings))], identifier)
}

// humanizeUntil renders d as "in 4m30s" or "2m ago".
func humanizeUntil(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		return (-d).String() + " ago"
	}
	return "in " + d.String()
}

// promptEmail returns preset, or asks for an email. On a terminal the echoed
// prompt is replaced by a one-line summary.
func promptEmail(p *terminal.Prompter, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	const label = "Email: "
	email, err := p.Line(label)
	if err != nil {
		return "", fmt.Errorf("read email: %w", err)
	}
	if p.Interactive() {
		terminal.ClearPreviousLines(len(label) + len(email))
		pterm.Printf("👤 %s\n", email)
	}
	return email, nil
}
