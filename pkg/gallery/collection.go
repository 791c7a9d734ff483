// Package gallery holds the per-property photo collections and the carousel and lightbox views over them.
package gallery

import (
	"strings"
	"sync"
)

// DefaultCap is the maximum number of images a collection keeps.
const DefaultCap = 24

// ImageRef is an image payload: an inline data URL or a locator.
type ImageRef string

// Inline reports whether the reference carries its own bytes.
func (r ImageRef) Inline() bool {
	return strings.HasPrefix(string(r), "data:")
}

// Op identifies a collection mutation.
type Op int

const (
	OpAdd Op = iota
	OpRemove
	OpPromote
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpPromote:
		return "promote"
	}
	return "unknown"
}

// Change describes an applied mutation. Index is the position the operation
// was given (0 for adds) and Len the collection length afterwards.
type Change struct {
	Op    Op
	Index int
	Len   int
}

type observer struct {
	id int
	fn func(Change)
}

// Collection is an ordered, capped list of images. Position 0 is the cover.
type Collection struct {
	// seq is held across each mutation and its notification so observers
	// see changes in the order they were applied.
	seq sync.Mutex

	mu     sync.RWMutex
	max    int
	refs   []ImageRef
	obs    []observer
	nextID int
}

// NewCollection returns a collection holding at most max images, seeded with refs.
func NewCollection(max int, refs ...ImageRef) *Collection {
	if max <= 0 {
		max = DefaultCap
	}
	if len(refs) > max {
		refs = refs[:max]
	}
	return &Collection{
		max:  max,
		refs: append([]ImageRef{}, refs...),
	}
}

// Add prepends ref, evicting from the tail once the cap is exceeded.
func (c *Collection) Add(ref ImageRef) {
	c.seq.Lock()
	defer c.seq.Unlock()

	c.mu.Lock()
	refs := make([]ImageRef, 0, len(c.refs)+1)
	refs = append(refs, ref)
	refs = append(refs, c.refs...)
	if len(refs) > c.max {
		refs = refs[:c.max]
	}
	c.refs = refs
	ch := Change{Op: OpAdd, Len: len(refs)}
	c.mu.Unlock()

	c.notify(ch)
}

// RemoveAt deletes the image at i. Out of range indexes are ignored.
func (c *Collection) RemoveAt(i int) bool {
	c.seq.Lock()
	defer c.seq.Unlock()

	c.mu.Lock()
	if i < 0 || i >= len(c.refs) {
		c.mu.Unlock()
		return false
	}
	refs := make([]ImageRef, 0, len(c.refs)-1)
	refs = append(refs, c.refs[:i]...)
	refs = append(refs, c.refs[i+1:]...)
	c.refs = refs
	ch := Change{Op: OpRemove, Index: i, Len: len(refs)}
	c.mu.Unlock()

	c.notify(ch)
	return true
}

// PromoteToFront moves the image at i to the cover position.
func (c *Collection) PromoteToFront(i int) bool {
	c.seq.Lock()
	defer c.seq.Unlock()

	c.mu.Lock()
	if i <= 0 || i >= len(c.refs) {
		c.mu.Unlock()
		return false
	}
	refs := make([]ImageRef, 0, len(c.refs))
	refs = append(refs, c.refs[i])
	refs = append(refs, c.refs[:i]...)
	refs = append(refs, c.refs[i+1:]...)
	c.refs = refs
	ch := Change{Op: OpPromote, Index: i, Len: len(refs)}
	c.mu.Unlock()

	c.notify(ch)
	return true
}

// Len returns the number of images.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.refs)
}

// Cap returns the maximum number of images.
func (c *Collection) Cap() int {
	return c.max
}

// At returns the image at i.
func (c *Collection) At(i int) (ImageRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.refs) {
		return "", false
	}
	return c.refs[i], true
}

// Cover returns the image shown in previews.
func (c *Collection) Cover() (ImageRef, bool) {
	return c.At(0)
}

// Images returns a copy of the current images.
func (c *Collection) Images() []ImageRef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ImageRef{}, c.refs...)
}

// Observe registers fn to be called after every mutation, in the mutating
// goroutine. fn must not mutate the collection.
func (c *Collection) Observe(fn func(Change)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.obs = append(c.obs, observer{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, o := range c.obs {
				if o.id == id {
					c.obs = append(c.obs[:i:i], c.obs[i+1:]...)
					return
				}
			}
		})
	}
}

// notify must be called without c.mu held: observers read the collection.
func (c *Collection) notify(ch Change) {
	c.mu.RLock()
	obs := append([]observer{}, c.obs...)
	c.mu.RUnlock()

	for _, o := range obs {
		o.fn(ch)
	}
}
