// Package clipboard hands copied values to the user's clipboard.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

var ErrUnavailable = errors.New("no clipboard available")

type Sink interface {
	Copy(ctx context.Context, value string) error
}

// Shell pipes the value into a shell command such as
// "xclip -selection clipboard" or "wl-copy".
type Shell struct {
	Command string
}

// outputDelay bounds how long Copy waits for the command's output pipes to
// close after the shell exits. Tools like xclip leave a child behind that
// owns the selection and keeps them open.
const outputDelay = 200 * time.Millisecond

// maxOutput caps the command output kept for an error message.
const maxOutput = 4 << 10

func (s Shell) Copy(ctx context.Context, value string) error {
	if strings.TrimSpace(s.Command) == "" {
		return ErrUnavailable
	}
	var out limitedBuffer
	cmd := exec.CommandContext(ctx, "sh", "-c", s.Command)
	cmd.Stdin = strings.NewReader(value)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = outputDelay

	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %s", s.Command, err, strings.TrimSpace(out.String()))
	}
	return nil
}

type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := maxOutput - b.buf.Len(); room > 0 {
		b.buf.Write(p[:min(len(p), room)])
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// System uses whatever clipboard tool the platform provides.
type System struct{}

func (System) Copy(_ context.Context, value string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(value)
}

// New picks the shell command when one is configured, otherwise the system
// clipboard.
func New(command string) Sink {
	if strings.TrimSpace(command) != "" {
		return Shell{Command: command}
	}
	return System{}
}
