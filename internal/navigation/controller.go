// Package navigation tracks which slide is on screen in a vertically
// scrolled deck and maps keys to navigation actions.
package navigation

import (
	"errors"
	"math"
	"strings"
	"sync"
)

// Scroller performs a smooth scroll of the deck viewport to an offset.
type Scroller interface {
	SmoothScrollTo(offset float64)
}

// ScrollerFunc adapts a function to a Scroller.
type ScrollerFunc func(offset float64)

func (f ScrollerFunc) SmoothScrollTo(offset float64) { f(offset) }

// Controller derives the current slide from the scroll offset. Slides are
// one viewport tall. It never clamps; callers keep indexes in range.
type Controller struct {
	scroller Scroller

	mu             sync.Mutex
	viewportHeight float64
	current        int
}

// NewController creates a controller for a viewport of the given height.
func NewController(viewportHeight float64, s Scroller) (*Controller, error) {
	if viewportHeight <= 0 {
		return nil, errors.New("viewport height must be positive")
	}
	if s == nil {
		return nil, errors.New("scroller is required")
	}
	return &Controller{scroller: s, viewportHeight: viewportHeight}, nil
}

// OnScroll recomputes the current index from a scroll offset and returns it.
func (c *Controller) OnScroll(offset float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = int(math.Round(offset / c.viewportHeight))
	return c.current
}

// ScrollTo asks the scroller to bring the slide at index into view.
func (c *Controller) ScrollTo(index int) {
	c.mu.Lock()
	offset := float64(index) * c.viewportHeight
	c.mu.Unlock()
	c.scroller.SmoothScrollTo(offset)
}

// CurrentIndex returns the index computed by the last scroll event.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// ViewportHeight returns the height of one slide.
func (c *Controller) ViewportHeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewportHeight
}

// Resize changes the viewport height. The current index is kept until the
// next scroll event.
func (c *Controller) Resize(viewportHeight float64) error {
	if viewportHeight <= 0 {
		return errors.New("viewport height must be positive")
	}
	c.mu.Lock()
	c.viewportHeight = viewportHeight
	c.mu.Unlock()
	return nil
}

// Clamp limits index to [0, count-1]. It returns 0 when count is not positive.
func Clamp(index, count int) int {
	if count <= 0 || index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

// Progress is the fraction of the deck reached at index, for a progress bar.
func Progress(index, count int) float64 {
	if count <= 0 {
		return 0
	}
	return float64(Clamp(index, count)+1) / float64(count)
}

// Dots draws the section indicator, one dot per slide with the current one
// filled.
func Dots(index, count int) string {
	var b strings.Builder
	for i := range count {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == index {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}
