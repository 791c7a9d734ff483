package gallery

import (
	"context"
	"io"
	"sync"
	"time"

	"k8s.io/klog/v2"
)

// Options configures a Manager.
type Options struct {
	Interval time.Duration
	Decode   Decoder
	// OnChange is called after every applied mutation.
	OnChange func(name string, op Op)
}

// Manager turns gallery actions for one property into collection updates
// and owns the carousel and lightbox while its view is mounted.
type Manager struct {
	name string
	coll *Collection
	keys *Keyboard
	opts Options
	gen  Generation

	mu       sync.Mutex
	carousel *Carousel
	lightbox *Lightbox
}

// NewManager returns an unmounted manager for the named property's collection.
func NewManager(name string, coll *Collection, keys *Keyboard, opts Options) *Manager {
	if opts.Decode == nil {
		opts.Decode = DecodeUpload
	}
	return &Manager{name: name, coll: coll, keys: keys, opts: opts}
}

// Name returns the property the manager serves.
func (m *Manager) Name() string {
	return m.name
}

// Collection returns the managed collection.
func (m *Manager) Collection() *Collection {
	return m.coll
}

// Mount creates the view's carousel and lightbox and starts the carousel timer.
func (m *Manager) Mount(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.carousel != nil {
		return
	}

	m.lightbox = NewLightbox(m.coll, m.keys)
	m.carousel = NewCarousel(m.coll, m.opts.Interval)
	lb := m.lightbox
	m.carousel.OnClick(func(i int) { lb.Open(i) })
	m.carousel.Mount(ctx)
	klog.V(1).Infof("%s: gallery mounted with %d images", m.name, m.coll.Len())
}

// Unmount stops the views and discards the results of pending uploads.
func (m *Manager) Unmount() {
	m.gen.Invalidate()

	m.mu.Lock()
	c, l := m.carousel, m.lightbox
	m.carousel, m.lightbox = nil, nil
	m.mu.Unlock()

	if c != nil {
		c.Unmount()
	}
	if l != nil {
		l.Unmount()
	}
	if c != nil {
		klog.V(1).Infof("%s: gallery unmounted", m.name)
	}
}

// Mounted reports whether the view is live.
func (m *Manager) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carousel != nil
}

// Carousel returns the mounted carousel, or nil.
func (m *Manager) Carousel() *Carousel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carousel
}

// Lightbox returns the mounted lightbox, or nil.
func (m *Manager) Lightbox() *Lightbox {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lightbox
}

// HandleUpload decodes r and prepends it. Unreadable files leave the
// collection alone, as do uploads finishing after the view was unmounted.
func (m *Manager) HandleUpload(ctx context.Context, r io.Reader) bool {
	tok := m.gen.Token()
	ref, err := m.opts.Decode(ctx, r)
	if err != nil {
		klog.V(1).Infof("%s: ignoring upload: %v", m.name, err)
		return false
	}
	if !tok.Valid() {
		klog.V(1).Infof("%s: view gone, discarding decoded upload", m.name)
		return false
	}
	m.coll.Add(ref)
	m.changed(OpAdd)
	return true
}

// HandleDelete removes image i.
func (m *Manager) HandleDelete(i int) bool {
	if !m.coll.RemoveAt(i) {
		return false
	}
	m.changed(OpRemove)
	return true
}

// HandlePromote makes image i the cover.
func (m *Manager) HandlePromote(i int) bool {
	if !m.coll.PromoteToFront(i) {
		return false
	}
	m.changed(OpPromote)
	return true
}

// HandleClickThumbnail opens the lightbox at i.
func (m *Manager) HandleClickThumbnail(i int) bool {
	l := m.Lightbox()
	if l == nil {
		return false
	}
	return l.Open(i)
}

func (m *Manager) changed(op Op) {
	klog.V(1).Infof("%s: %s -> %d images", m.name, op, m.coll.Len())
	if m.opts.OnChange != nil {
		m.opts.OnChange(m.name, op)
	}
}
