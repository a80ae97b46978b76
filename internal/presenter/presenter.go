// Package presenter shows the deck in a terminal and drives it from the
// keyboard.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gogpu/gg/text"
	"github.com/lehigh-university-libraries/slideshow/internal/navigation"
	"github.com/lehigh-university-libraries/slideshow/internal/render"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by RunTerminal when input is not a terminal.
var ErrNotTerminal = errors.New("presenter needs an interactive terminal")

// Size is the terminal size in character cells.
type Size struct {
	Cols int
	Rows int
}

// Presenter renders one slide per screen. Scrolling moves through a virtual
// column of slides, each one screen tall.
type Presenter struct {
	title   string
	records []slides.Record
	export  func()

	// Steps and FrameDelay shape the smooth scroll animation.
	Steps      int
	FrameDelay time.Duration

	controller *navigation.Controller
	size       Size
	offset     float64
	out        io.Writer

	mu     sync.Mutex
	status string
	redraw chan struct{}
}

// New creates a presenter. export is called on the export key and must not
// block.
func New(title string, records []slides.Record, export func()) *Presenter {
	return &Presenter{
		title:      title,
		records:    records,
		export:     export,
		Steps:      6,
		FrameDelay: 16 * time.Millisecond,
		redraw:     make(chan struct{}, 1),
	}
}

// SetStatus replaces the status line. It is safe to call from any goroutine.
func (p *Presenter) SetStatus(status string) {
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	select {
	case p.redraw <- struct{}{}:
	default:
	}
}

// Current returns the slide index on screen.
func (p *Presenter) Current() int {
	if p.controller == nil {
		return 0
	}
	return navigation.Clamp(p.controller.CurrentIndex(), len(p.records))
}

// SmoothScrollTo animates the offset toward target, reporting every step as
// a scroll event.
func (p *Presenter) SmoothScrollTo(target float64) {
	steps := max(p.Steps, 1)
	start := p.offset
	for i := 1; i <= steps; i++ {
		p.offset = start + (target-start)*float64(i)/float64(steps)
		p.controller.OnScroll(p.offset)
		p.draw()
		if p.FrameDelay > 0 && i < steps {
			time.Sleep(p.FrameDelay)
		}
	}
}

// RunTerminal puts in into raw mode for the duration of Run.
func (p *Presenter) RunTerminal(ctx context.Context, in *os.File, out io.Writer) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}

	size := Size{Cols: 80, Rows: 24}
	if cols, rows, err := term.GetSize(fd); err == nil {
		size = Size{Cols: cols, Rows: rows}
	} else {
		slog.Debug("Could not read terminal size", "err", err)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			slog.Error("Failed to restore terminal", "err", err)
		}
	}()

	fmt.Fprint(out, "\x1b[?25l")
	defer fmt.Fprint(out, "\x1b[?25h\x1b[H\x1b[2J")

	return p.Run(ctx, in, out, size)
}

// Run reads keys from in until quit, end of input or ctx is done.
func (p *Presenter) Run(ctx context.Context, in io.Reader, out io.Writer, size Size) error {
	if len(p.records) == 0 {
		return errors.New("no slides to present")
	}
	if size.Rows <= 0 {
		return errors.New("terminal has no rows")
	}

	controller, err := navigation.NewController(float64(size.Rows), p)
	if err != nil {
		return err
	}
	p.controller = controller
	p.size = size
	p.out = out
	p.offset = 0
	shell := &navigation.Shell{Controller: controller, Count: len(p.records), Export: p.export}

	done := make(chan struct{})
	defer close(done)
	input := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case input <- append([]byte(nil), buf[:n]...):
				case <-done:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	p.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.redraw:
			p.draw()
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		case data := <-input:
			for _, ev := range ParseKeys(data) {
				action := shell.HandleKey(ev)
				slog.Debug("Key pressed", "key", ev.Key, "ctrl", ev.Ctrl, "action", action)
				if action == navigation.ActionQuit {
					return nil
				}
			}
		}
	}
}

func (p *Presenter) draw() {
	index := p.Current()
	rec := p.records[index]
	width := max(p.size.Cols, 20)

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\x1b[K\r\n")
	}

	b.WriteString("\x1b[H")
	line(p.title)
	line(navigation.Dots(index, len(p.records)))
	line("")
	line(fmt.Sprintf("[%s] %s", rec.Kind, rec.Title))
	if rec.Subtitle != "" {
		line(align(rec.Subtitle, width))
	}
	if len(rec.Bullets) > 0 {
		line("")
		for _, bullet := range rec.Bullets {
			line(align("• "+bullet, width))
		}
	}
	if rec.Coordinates != nil {
		line("")
		line("📍 " + rec.Coordinates.String())
	}
	if n := len(rec.GalleryImages); n > 0 {
		line(fmt.Sprintf("%d photos", n))
	}
	if rec.VideoURL != "" {
		line("▶ " + rec.VideoURL)
	}
	line("")
	line(progressBar(index, len(p.records), min(width-12, 40)))

	p.mu.Lock()
	status := p.status
	p.mu.Unlock()
	if status != "" {
		line(status)
	}
	line("↑/↓ navigate · Ctrl+E export · q quit")
	b.WriteString("\x1b[J")

	fmt.Fprint(p.out, b.String())
}

// align right-aligns right-to-left lines within width columns.
func align(s string, width int) string {
	if render.Direction(s) != text.DirectionRTL {
		return s
	}
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func progressBar(index, count, width int) string {
	frac := navigation.Progress(index, count)
	filled := int(frac * float64(width))
	return fmt.Sprintf("%s%s %d/%d",
		strings.Repeat("█", filled), strings.Repeat("░", width-filled), index+1, count)
}
