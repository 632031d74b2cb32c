// Package progress renders a single-line terminal transfer indicator.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/canalgrab-cli/canalgrab/style"
	"github.com/canalgrab-cli/canalgrab/util"
)

const (
	// redraws are throttled to avoid flooding slow terminals
	minRedrawInterval = 100 * time.Millisecond

	fallbackWidth = 80
)

// Bar is a carriage-return terminal progress bar. It is safe for use as a
// download progress callback from a worker goroutine.
type Bar struct {
	mu          sync.Mutex
	out         io.Writer
	label       string
	width       int
	lastDraw    time.Time
	lastWritten int64
	done        bool
}

// NewBar returns a bar writing to out, prefixed with label. The bar sizes
// itself to the terminal at construction time.
func NewBar(out io.Writer, label string) *Bar {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		width = fallbackWidth
	}
	return &Bar{out: out, label: label, width: width - 1}
}

// Update redraws the bar for written bytes out of total. A negative total
// means the size is unknown and only the byte count is shown.
func (b *Bar) Update(written, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}

	now := time.Now()
	complete := total > 0 && written >= total
	// a byte count moving backwards means the transfer restarted
	restarted := written < b.lastWritten
	b.lastWritten = written
	if !complete && !restarted && now.Sub(b.lastDraw) < minRedrawInterval {
		return
	}
	b.lastDraw = now

	fmt.Fprint(b.out, "\r"+b.line(written, total))
}

// Finish terminates the bar's line. Further updates are dropped.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	b.done = true
	fmt.Fprintln(b.out)
}

func (b *Bar) line(written, total int64) string {
	counter := util.FormatBytes(written)
	if total <= 0 {
		return pad(fmt.Sprintf("%s %s", b.label, counter), b.width)
	}

	percent := util.Min(written*100/total, 100)

	head := fmt.Sprintf("%s [%3d%%] ", b.label, percent)
	tail := fmt.Sprintf(" %s", counter)
	gauge := b.width - len(head) - len(tail) - 2
	if gauge < 4 {
		return pad(head+tail, b.width)
	}

	filled := int(percent) * gauge / 100
	var cells string
	switch {
	case filled <= 0:
		cells = strings.Repeat(" ", gauge)
	case filled >= gauge:
		cells = strings.Repeat("=", gauge)
	default:
		cells = pad(strings.Repeat("=", filled-1)+">", gauge)
	}

	return head + "[" + style.Faint(cells) + "]" + tail
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
