package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/xiaot623/gogo/remindchat/internal/chat"
)

// LineView implements chat.View by writing plain lines to an io.Writer.
// The terminal keeps the scrollback, so clearing and scrolling are no-ops.
type LineView struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLineView creates a line view writing to out.
func NewLineView(out io.Writer) *LineView {
	return &LineView{out: out}
}

func (v *LineView) AppendEntry(e chat.Entry) {
	v.printf("%s: %s\n", e.Label(), chat.Sanitize(e.Text))
}

func (v *LineView) ShowBanner(text string) {
	v.printf("*** %s ***\n", chat.Sanitize(text))
}

func (v *LineView) HideBanner()     {}
func (v *LineView) ClearInput()     {}
func (v *LineView) ScrollToLatest() {}

func (v *LineView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

var _ chat.View = (*LineView)(nil)

// RunPlain reads lines from in and submits each one until in is exhausted,
// the user types /quit, or ctx is cancelled. Send failures are printed and
// do not stop the loop.
func RunPlain(ctx context.Context, in io.Reader, view *LineView, submitter Submitter, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	view.printf("Type a message and press Enter to send.\nCommands: %s to exit\n\n", QuitCommand)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}

			if strings.TrimSpace(line) == QuitCommand {
				view.printf("Bye!\n")
				return nil
			}

			if err := submitter.Submit(ctx, line); err != nil {
				logger.Warn("submit failed", "error", err)
				view.printf("Send error: %s\n", chat.Sanitize(err.Error()))
			}
		}
	}
}
