package gallery

import (
	"fmt"
	"sync"

	"k8s.io/klog/v2"
)

// Lightbox is a full-screen viewer over a collection: either closed or open at an index.
//
// While open it listens on the keyboard; the listener is detached on close.
// Mutations of the collection keep the displayed image in view, except that
// removing it (or emptying the collection) closes the lightbox.
type Lightbox struct {
	mu     sync.Mutex
	coll   *Collection
	keys   *Keyboard
	open   bool
	idx    int
	detach func()

	unobserve func()
}

// NewLightbox returns a closed lightbox over c that binds keys while open.
func NewLightbox(c *Collection, keys *Keyboard) *Lightbox {
	l := &Lightbox{coll: c, keys: keys}
	l.unobserve = c.Observe(l.observe)
	return l
}

// Open shows image i. It fails if i is not a valid position.
func (l *Lightbox) Open(i int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.unobserve == nil {
		return false
	}
	n := l.coll.Len()
	if i < 0 || i >= n {
		klog.V(1).Infof("lightbox: refusing to open %d of %d", i, n)
		return false
	}
	l.idx = i
	if !l.open {
		l.open = true
		if l.keys != nil {
			l.detach = l.keys.Attach(l.HandleKey)
		}
	}
	return true
}

// Close hides the lightbox.
func (l *Lightbox) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
}

func (l *Lightbox) closeLocked() {
	l.open = false
	l.idx = 0
	if l.detach != nil {
		l.detach()
		l.detach = nil
	}
}

// Next shows the following image, wrapping at the end.
func (l *Lightbox) Next() {
	l.step(1)
}

// Prev shows the previous image, wrapping at the start.
func (l *Lightbox) Prev() {
	l.step(-1)
}

func (l *Lightbox) step(d int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return
	}
	n := l.coll.Len()
	if n == 0 {
		l.closeLocked()
		return
	}
	l.idx = (l.idx + d + n) % n
}

// HandleKey maps Escape and the arrow keys onto Close, Next and Prev.
func (l *Lightbox) HandleKey(k Key) {
	if !l.IsOpen() {
		return
	}
	switch k {
	case KeyEscape:
		l.Close()
	case KeyArrowRight:
		l.Next()
	case KeyArrowLeft:
		l.Prev()
	}
}

// IsOpen reports whether an image is displayed.
func (l *Lightbox) IsOpen() bool {
	_, ok := l.Current()
	return ok
}

// Current returns the displayed index. An index the collection no longer
// has closes the lightbox.
func (l *Lightbox) Current() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return 0, false
	}
	if l.idx >= l.coll.Len() {
		l.closeLocked()
		return 0, false
	}
	return l.idx, true
}

// Image returns the displayed image.
func (l *Lightbox) Image() (ImageRef, bool) {
	i, ok := l.Current()
	if !ok {
		return "", false
	}
	return l.coll.At(i)
}

// Counter returns the 1-based "index / total" label, or "" when closed.
func (l *Lightbox) Counter() string {
	i, ok := l.Current()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d / %d", i+1, l.coll.Len())
}

// Unmount closes the lightbox and stops following the collection.
func (l *Lightbox) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
	if l.unobserve != nil {
		l.unobserve()
		l.unobserve = nil
	}
}

func (l *Lightbox) observe(ch Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return
	}

	switch ch.Op {
	case OpAdd:
		l.idx++
	case OpRemove:
		if ch.Index == l.idx {
			klog.V(1).Infof("lightbox: displayed image %d removed, closing", l.idx)
			l.closeLocked()
			return
		}
		if ch.Index < l.idx {
			l.idx--
		}
	case OpPromote:
		switch {
		case ch.Index == l.idx:
			l.idx = 0
		case ch.Index > l.idx:
			l.idx++
		}
	}

	if ch.Len == 0 || l.idx >= ch.Len {
		l.closeLocked()
	}
}
