// Package clipboard copies text to the system clipboard, falling back to
// the terminal's OSC 52 escape sequence when no clipboard tool is available.
package clipboard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	sysclip "github.com/atotto/clipboard"
)

// RevertDelay is how long a "copied" confirmation should stay visible.
const RevertDelay = 2500 * time.Millisecond

// ErrUnsupported is returned by a writer that cannot run on this host.
var ErrUnsupported = errors.New("clipboard: unsupported")

// Writer puts text on a clipboard.
type Writer interface {
	Write(ctx context.Context, text string) error
}

// System writes through the platform clipboard utilities (pbcopy, xclip,
// xsel, wl-copy or the Windows API).
type System struct{}

func (System) Write(_ context.Context, text string) error {
	if sysclip.Unsupported {
		return ErrUnsupported
	}
	if err := sysclip.WriteAll(text); err != nil {
		return fmt.Errorf("system clipboard: %w", err)
	}
	return nil
}

// OSC52 asks the terminal emulator to set its selection.
type OSC52 struct {
	Out io.Writer
}

func (o OSC52) Write(_ context.Context, text string) error {
	if o.Out == nil {
		return ErrUnsupported
	}
	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	if _, err := io.WriteString(o.Out, seq); err != nil {
		return fmt.Errorf("osc52: %w", err)
	}
	return nil
}

// Service tries its writers in order until one succeeds.
type Service struct {
	writers []Writer
	logger  *slog.Logger
}

// New creates a service over writers, preferred first.
func New(logger *slog.Logger, writers ...Writer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{writers: writers, logger: logger}
}

// NewDefault uses the system clipboard with an OSC 52 fallback on out.
func NewDefault(out io.Writer, logger *slog.Logger) *Service {
	return New(logger, System{}, OSC52{Out: out})
}

// Copy reports whether any writer accepted text. Failures are logged and
// otherwise swallowed.
func (s *Service) Copy(ctx context.Context, text string) bool {
	for i, w := range s.writers {
		if ctx.Err() != nil {
			return false
		}
		err := w.Write(ctx, text)
		if err == nil {
			return true
		}
		s.logger.Debug("clipboard writer failed", "writer", fmt.Sprintf("%d:%T", i, w), "err", err)
	}
	return false
}
