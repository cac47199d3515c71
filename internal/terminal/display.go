package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	// DefaultWidth is the fallback width when detection fails
	DefaultWidth = 80
	// MinWidth is the narrowest width we render for
	MinWidth = 40
)

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsInputTerminal checks if stdin is a terminal
func IsInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Width returns the current terminal width, or DefaultWidth when unknown.
func Width() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	if width < MinWidth {
		return MinWidth
	}
	return width
}

// Spinner animates a one-line progress indicator while a blocking call runs.
type Spinner struct {
	out    io.Writer
	mu     sync.Mutex
	active bool
	done   chan struct{}
	exited chan struct{}
}

// NewSpinner creates a spinner writing to out
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

// Start displays the spinner with a message
func (s *Spinner) Start(msg string) {
	s.Stop()

	s.mu.Lock()
	s.active = true
	s.done = make(chan struct{})
	s.exited = make(chan struct{})
	done, exited := s.done, s.exited
	s.mu.Unlock()

	go func() {
		defer close(exited)
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i = (i + 1) % len(frames) {
			fmt.Fprintf(s.out, "\r%s %s", frames[i], msg)
			select {
			case <-done:
				fmt.Fprint(s.out, "\r\033[2K\r")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and clears its line. Safe to call when idle.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.done)
	exited := s.exited
	s.mu.Unlock()
	<-exited
}
