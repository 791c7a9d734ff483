package gallery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"k8s.io/klog/v2"
)

// DefaultInterval is how often a carousel advances on its own.
const DefaultInterval = 5 * time.Second

// Carousel is an auto-advancing slide cursor over a collection.
type Carousel struct {
	mu       sync.Mutex
	coll     *Collection
	interval time.Duration
	idx      int
	empty    bool
	paused   bool
	onClick  func(int)

	unobserve func()
	cancel    context.CancelFunc
	reset     chan struct{}
	done      chan struct{}
}

// NewCarousel returns an unmounted carousel over c.
func NewCarousel(c *Collection, interval time.Duration) *Carousel {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Carousel{
		coll:     c,
		interval: interval,
		empty:    c.Len() == 0,
	}
}

// OnClick sets the callback invoked with the visible slide when it is clicked.
func (c *Carousel) OnClick(fn func(int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClick = fn
}

// Mount starts the auto-advance timer. It runs until Unmount or ctx is done.
func (c *Carousel) Mount(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}

	c.idx = 0
	c.empty = c.coll.Len() == 0
	c.unobserve = c.coll.Observe(func(Change) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.sync()
	})

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.reset = make(chan struct{}, 1)
	c.done = make(chan struct{})
	go c.run(ctx, c.reset, c.done)
}

// Unmount stops the timer and waits for it to exit.
func (c *Carousel) Unmount() {
	c.mu.Lock()
	cancel, done, unobserve := c.cancel, c.done, c.unobserve
	c.cancel, c.done, c.unobserve, c.reset = nil, nil, nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	unobserve()
	cancel()
	<-done
}

// Mounted reports whether the timer is running.
func (c *Carousel) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Carousel) run(ctx context.Context, reset <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-reset:
			t.Reset(c.interval)
		case <-t.C:
			c.Tick()
		}
	}
}

// sync reconciles the cursor with the collection and returns its length.
// Callers hold c.mu.
func (c *Carousel) sync() int {
	n := c.coll.Len()
	switch {
	case n == 0:
		c.empty = true
		c.idx = 0
	case c.empty:
		c.empty = false
		c.idx = 0
	case c.idx >= n:
		c.idx = n - 1
	}
	return n
}

// Tick advances one slide unless paused. Collections of one or no image do not move.
func (c *Carousel) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	n := c.sync()
	if n <= 1 {
		return
	}
	c.idx = (c.idx + 1) % n
	klog.V(2).Infof("carousel advanced to %d/%d", c.idx+1, n)
}

// Next shows the following slide and restarts the timer phase.
func (c *Carousel) Next() {
	c.step(1)
}

// Prev shows the previous slide and restarts the timer phase.
func (c *Carousel) Prev() {
	c.step(-1)
}

func (c *Carousel) step(d int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.sync()
	if n == 0 {
		return
	}
	c.idx = (c.idx + d + n) % n
	c.kick()
}

// JumpTo shows slide i. Out of range indexes are ignored.
func (c *Carousel) JumpTo(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.sync()
	if i < 0 || i >= n {
		return false
	}
	c.idx = i
	c.kick()
	return true
}

// kick restarts the timer phase without blocking. Callers hold c.mu.
func (c *Carousel) kick() {
	if c.reset == nil {
		return
	}
	select {
	case c.reset <- struct{}{}:
	default:
	}
}

// Pause suspends auto-advance; manual navigation keeps working.
func (c *Carousel) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// Resume re-enables auto-advance.
func (c *Carousel) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
}

// Paused reports whether auto-advance is suspended.
func (c *Carousel) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Current returns the visible slide, or false when there is nothing to show.
func (c *Carousel) Current() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sync() == 0 {
		return 0, false
	}
	return c.idx, true
}

// Counter returns the "n / total" badge, or "" when empty.
func (c *Carousel) Counter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.sync()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", c.idx+1, n)
}

// Click reports a click on the visible slide to the OnClick callback.
func (c *Carousel) Click() {
	c.mu.Lock()
	fn := c.onClick
	n := c.sync()
	idx := c.idx
	c.mu.Unlock()

	if fn == nil || n == 0 {
		return
	}
	fn(idx)
}
