package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var statusFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const statusInterval = 80 * time.Millisecond

// status is the one-line activity indicator shown while a plot is mapped and
// rendered. It animates only when out is a terminal; otherwise it stays
// silent so piped output and logs are not interleaved with frames.
type status struct {
	out  io.Writer
	tty  bool
	ctx  context.Context
	stop context.CancelFunc

	mu    sync.Mutex
	label string
	width int

	wg   sync.WaitGroup
	once sync.Once
}

// newStatus creates an indicator bound to ctx; cancelling ctx stops it.
func newStatus(ctx context.Context, out io.Writer, label string) *status {
	sctx, stop := context.WithCancel(ctx)
	return &status{out: out, tty: isTerminal(out), ctx: sctx, stop: stop, label: label}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// start begins animating. It is a no-op on a non-terminal.
func (s *status) start() {
	if !s.tty {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(statusFrames[i%len(statusFrames)])
			}
		}
	}()
}

func (s *status) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.label)
	if n := len(s.label) + 2; n > s.width {
		s.width = n
	}
	fmt.Fprintf(s.out, "\r%s", line)
}

// finish stops the animation and erases the line. Safe to call repeatedly.
func (s *status) finish() {
	s.once.Do(func() {
		s.stop()
		s.wg.Wait()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.tty && s.width > 0 {
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width+2))
		}
	})
}

// fail stops the indicator and prints msg as an error line.
func (s *status) fail(msg string) {
	s.finish()
	printError("%s", msg)
}
