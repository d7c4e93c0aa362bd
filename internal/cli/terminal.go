package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/mcoot/quizgame/internal/ui"
)

// Terminal is the interactive prompter. One goroutine owns the input so an
// abandoned prompt never races the next one for a line.
type Terminal struct {
	in        *bufio.Reader
	out       io.Writer
	fd        int
	assumeYes bool

	mu    sync.Mutex
	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// Ensure Terminal implements Prompter
var _ ui.Prompter = (*Terminal)(nil)

// NewTerminal creates a Terminal. Passwords are read without echo when in is a terminal.
func NewTerminal(in io.Reader, out io.Writer, assumeYes bool) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Terminal{
		in:        bufio.NewReader(in),
		out:       out,
		fd:        fd,
		assumeYes: assumeYes,
		lines:     make(chan lineResult),
	}
}

// Confirm asks a yes/no question. End of input and a cancelled ctx count as no.
func (t *Terminal) Confirm(ctx context.Context, message string) (bool, error) {
	if t.assumeYes {
		t.printf("%s [y/N]: y\n", message)
		return true, nil
	}

	line, err := t.ReadLine(ctx, message+" [y/N]: ")
	if err != nil {
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes", "o", "oui":
		return true, nil
	default:
		return false, nil
	}
}

// Alert prints a message that needs no answer
func (t *Terminal) Alert(message string) {
	t.printf("%s\n", message)
}

// ReadLine prints prompt and returns the next trimmed input line
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	t.once.Do(func() { go t.readLines() })
	t.printf("%s", prompt)

	select {
	case r, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(r.line), r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ReadPassword reads a secret without echo when attached to a terminal
func (t *Terminal) ReadPassword(ctx context.Context, prompt string) (string, error) {
	if t.fd < 0 {
		return t.ReadLine(ctx, prompt)
	}
	t.printf("%s", prompt)
	secret, err := term.ReadPassword(t.fd)
	t.printf("\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(secret), nil
}

func (t *Terminal) readLines() {
	defer close(t.lines)
	for {
		line, err := t.in.ReadString('\n')
		if line != "" {
			t.lines <- lineResult{line: line}
		}
		if err != nil {
			return
		}
	}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintf(t.out, format, args...)
}
